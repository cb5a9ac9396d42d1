// Package controller is the cooperative scheduler at the heart of the
// incubator: one Tick per poll interval, button poll first, then the
// interval-gated sense-control-actuate cycle. It owns no goroutines
// and reads no clocks; every Tick receives the current time from the
// caller, so the whole schedule is testable with fakes.
package controller

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/braingeneers/Opto-Incubator/internal/actuator"
	"github.com/braingeneers/Opto-Incubator/internal/control"
	"github.com/braingeneers/Opto-Incubator/internal/gpio"
	"github.com/braingeneers/Opto-Incubator/internal/sensor"
	"github.com/braingeneers/Opto-Incubator/internal/telemetry"
)

// Counts tracks controller activity since startup.
type Counts struct {
	Cycles            int
	SkippedCycles     int // sensor not ready or read failed
	Recalibrations    int
	CalibrationErrors int
	ActuationErrors   int
}

// Sample is the most recent completed cycle's readings and the pulse
// durations it produced.
type Sample struct {
	Time        time.Time
	TempC       float64
	HumidityPct float64
	CO2Pct      float64
	HeaterPulse time.Duration
	ValvePulse  time.Duration
}

// Controller runs the control cycle. Not safe for concurrent use: it
// is driven by a single tick loop, and the blocking actuation pulses
// rely on that.
type Controller struct {
	cfg Config

	tempLoop *control.Loop
	co2Loop  *control.Loop

	sens   sensor.Sensor
	heater gpio.Pin
	valve  gpio.Pin
	button gpio.Button
	pulser *actuator.Pulser
	sink   telemetry.Sink
	events telemetry.SystemPublisher

	sleep func(time.Duration)

	lastCycle  time.Time
	buttonDown bool

	counts Counts
	last   Sample
	hasRun bool
}

// New creates a Controller. start seeds the cycle gate, so the first
// cycle runs once MinInterval has elapsed from it.
func New(cfg Config, sens sensor.Sensor, heater, valve gpio.Pin, button gpio.Button,
	pulser *actuator.Pulser, sink telemetry.Sink, start time.Time) *Controller {
	return &Controller{
		cfg:       cfg,
		tempLoop:  control.NewLoop(cfg.TargetTempC, cfg.TempGains),
		co2Loop:   control.NewLoop(cfg.TargetCO2Pct, cfg.CO2Gains),
		sens:      sens,
		heater:    heater,
		valve:     valve,
		button:    button,
		pulser:    pulser,
		sink:      sink,
		sleep:     time.Sleep,
		lastCycle: start,
	}
}

// SetSleep replaces the settle sleep, for tests.
func (c *Controller) SetSleep(sleep func(time.Duration)) {
	c.sleep = sleep
}

// SetSystemPublisher attaches an optional lifecycle-event publisher.
// Recalibrations are announced through it.
func (c *Controller) SetSystemPublisher(events telemetry.SystemPublisher) {
	c.events = events
}

// Tick runs one scheduler step. The button is polled on every tick;
// the full cycle only runs when MinInterval has strictly elapsed since
// the last one AND the sensor has a fresh measurement. The returned
// error is fatal (shaper misconfiguration); every recoverable failure
// is logged and counted instead.
func (c *Controller) Tick(now time.Time) error {
	c.pollButton(now)

	if now.Sub(c.lastCycle) <= c.cfg.MinInterval {
		return nil
	}
	ready, err := c.sens.HasNewReading()
	if err != nil {
		// Back off a full interval before touching the bus again.
		log.Printf("controller: readiness check failed: %v", err)
		c.counts.SkippedCycles++
		c.lastCycle = now
		return nil
	}
	if !ready {
		return nil
	}
	return c.runCycle(now)
}

// pollButton handles the recalibration button. Edge-triggered by
// default: one recalibration per press. In level-triggered mode the
// recalibration re-fires on every tick the button reads low, matching
// the original firmware.
func (c *Controller) pollButton(now time.Time) {
	pressed, err := c.button.Pressed()
	if err != nil {
		log.Printf("controller: button read failed: %v", err)
		return
	}

	fire := pressed
	if !c.cfg.LevelTriggered {
		fire = pressed && !c.buttonDown
	}
	c.buttonDown = pressed

	if !fire {
		return
	}

	log.Printf("controller: recalibrating gas sensor to reference %.2f", c.cfg.RecalReference)
	if err := c.sens.ForceRecalibrate(c.cfg.RecalReference); err != nil {
		c.counts.CalibrationErrors++
		log.Printf("controller: recalibration failed: %v", err)
	} else {
		c.counts.Recalibrations++
		log.Printf("controller: recalibration done")
		c.announceRecalibration(now)
	}
	// Let the sensor settle before anything else touches it.
	c.sleep(c.cfg.RecalSettle)
}

// announceRecalibration mirrors a successful recalibration to the
// lifecycle-event publisher, when one is attached.
func (c *Controller) announceRecalibration(now time.Time) {
	if c.events == nil {
		return
	}
	event := telemetry.SystemEvent{
		Timestamp: now,
		Event:     "RECALIBRATE",
		Reason:    fmt.Sprintf("reference %.2f", c.cfg.RecalReference),
	}
	if err := c.events.PublishSystem(event); err != nil {
		log.Printf("controller: recalibration event publish failed: %v", err)
	}
}

// runCycle executes one full sense-control-actuate cycle.
func (c *Controller) runCycle(now time.Time) error {
	tempC, humidity, co2, ok := c.readSensors()
	if !ok {
		// Never actuate on a failed read, and retry only after a full
		// interval so the sensor is not hammered on every tick.
		c.counts.SkippedCycles++
		c.lastCycle = now
		return nil
	}

	heaterPulse, err := c.shape(c.tempLoop.Compute(tempC, now), c.cfg.HeaterScaleMs)
	if err != nil {
		return err
	}
	valvePulse, err := c.shape(c.co2Loop.Compute(co2, now), c.cfg.ValveScaleMs)
	if err != nil {
		return err
	}

	// Heater first, then valve. The gates share a supply rail and only
	// one may be high at a time, so the pulses are strictly serial.
	if err := c.pulser.Pulse(c.heater, heaterPulse); err != nil {
		c.counts.ActuationErrors++
		log.Printf("controller: heater pulse failed: %v", err)
	}
	if err := c.pulser.Pulse(c.valve, valvePulse); err != nil {
		c.counts.ActuationErrors++
		log.Printf("controller: valve pulse failed: %v", err)
	}

	if err := c.sink.Record(now, tempC, co2); err != nil {
		log.Printf("controller: telemetry record failed: %v", err)
	}

	c.lastCycle = now
	c.counts.Cycles++
	c.last = Sample{
		Time:        now,
		TempC:       tempC,
		HumidityPct: humidity,
		CO2Pct:      co2,
		HeaterPulse: heaterPulse,
		ValvePulse:  valvePulse,
	}
	c.hasRun = true
	return nil
}

// readSensors captures one SensorSample: temperature and humidity
// first, then CO2 compensated with both. ok is false when any read
// failed; a not-ready result is logged but is not a fault.
func (c *Controller) readSensors() (tempC, humidity, co2 float64, ok bool) {
	tempC, err := c.sens.ReadTemperatureC()
	if err != nil {
		c.logReadError("temperature", err)
		return 0, 0, 0, false
	}
	humidity, err = c.sens.ReadHumidityPct()
	if err != nil {
		c.logReadError("humidity", err)
		return 0, 0, 0, false
	}
	co2, err = c.sens.ReadCO2(tempC, humidity)
	if err != nil {
		c.logReadError("co2", err)
		return 0, 0, 0, false
	}
	return tempC, humidity, co2, true
}

func (c *Controller) logReadError(what string, err error) {
	if errors.Is(err, sensor.ErrNotReady) {
		log.Printf("controller: %s reading not ready, skipping cycle", what)
		return
	}
	log.Printf("controller: %s read failed, skipping cycle: %v", what, err)
}

// shape clamps and normalizes a raw loop output, then scales it to a
// pulse duration.
func (c *Controller) shape(raw, scaleMs float64) (time.Duration, error) {
	n, err := control.ClampNormalize(raw, c.cfg.OutputMin, c.cfg.OutputMax)
	if err != nil {
		return 0, err
	}
	return actuator.DurationMs(control.Scale(n, scaleMs)), nil
}

// Counts returns a snapshot of the activity counters.
func (c *Controller) Counts() Counts {
	return c.counts
}

// LastSample returns the most recent completed cycle, and whether any
// cycle has completed yet.
func (c *Controller) LastSample() (Sample, bool) {
	return c.last, c.hasRun
}
