// Command incubator is the closed-loop environmental controller for
// the incubation chamber: it samples temperature, humidity and CO2,
// runs one PID loop per controlled variable, and drives the heater and
// gas valve with time-proportioned gate pulses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/braingeneers/Opto-Incubator/internal/actuator"
	"github.com/braingeneers/Opto-Incubator/internal/controller"
	"github.com/braingeneers/Opto-Incubator/internal/gpio"
	"github.com/braingeneers/Opto-Incubator/internal/sensor"
	"github.com/braingeneers/Opto-Incubator/internal/status"
	"github.com/braingeneers/Opto-Incubator/internal/telemetry"
	"github.com/braingeneers/Opto-Incubator/internal/web"
)

func main() {
	// The button is only observable between ticks (and never during an
	// actuation pulse), so the poll interval is kept short.
	poll := flag.Duration("poll", 10*time.Millisecond, "scheduler tick interval")
	configPath := flag.String("config", "/etc/incubator.toml", "control tuning file (TOML)")
	serialDev := flag.String("serial", "", "serial device for telemetry (empty: stdout)")
	broker := flag.String("broker", "", "MQTT broker address (empty to disable)")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	i2cBus := flag.String("i2c", "", "I2C bus name (empty: first available)")
	pinHeater := flag.Int("pin-heater", gpio.DefaultPinHeater, "BCM pin number for the heater gate")
	pinValve := flag.Int("pin-valve", gpio.DefaultPinValve, "BCM pin number for the valve gate")
	pinButton := flag.Int("pin-button", gpio.DefaultPinButton, "BCM pin number for the recalibration button")
	printSample := flag.Bool("print-sample", false, "Read the sensors once, print, and exit")
	levelTrigger := flag.Bool("level-trigger", false, "Re-fire recalibration on every tick the button is held (historical behavior)")

	flag.Parse()

	if err := run(*poll, *configPath, *serialDev, *broker, *httpAddr, *i2cBus,
		*pinHeater, *pinValve, *pinButton, *printSample, *levelTrigger); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(poll time.Duration, configPath, serialDev, broker, httpAddr, i2cBus string,
	pinHeater, pinValve, pinButton int, printSample, levelTrigger bool) error {
	cfg, err := controller.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if levelTrigger {
		cfg.LevelTriggered = true
	}

	// Initialize the sensor pair. A startup fault is fail-stop: the
	// chamber must not run blind, so halt until a physical reset.
	sens, err := sensor.NewReal(i2cBus)
	if err != nil {
		haltForever(fmt.Errorf("sensor init: %w", err))
	}
	defer sens.Close()
	if err := sens.Begin(); err != nil {
		haltForever(err)
	}

	// Print sample mode
	if printSample {
		tempC, err := sens.ReadTemperatureC()
		if err != nil {
			return fmt.Errorf("read temperature: %w", err)
		}
		humidity, err := sens.ReadHumidityPct()
		if err != nil {
			return fmt.Errorf("read humidity: %w", err)
		}
		co2, err := sens.ReadCO2(tempC, humidity)
		if err != nil {
			return fmt.Errorf("read co2: %w", err)
		}
		fmt.Printf("temp: %.2f C, humidity: %.1f %%, co2: %.2f %%\n", tempC, humidity, co2)
		return nil
	}

	// Initialize GPIO
	hw, err := gpio.NewRealIO(pinHeater, pinValve, pinButton)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer hw.Close()

	// Telemetry: serial line protocol by default, MQTT mirror optional.
	var sinks []telemetry.Sink
	if serialDev != "" {
		serialSink, err := telemetry.NewSerialSink(serialDev)
		if err != nil {
			return err
		}
		sinks = append(sinks, serialSink)
	} else {
		sinks = append(sinks, telemetry.NewWriterSink(os.Stdout))
	}

	var mqttSink *telemetry.MQTTSink
	if broker != "" {
		mqttSink, err = telemetry.NewMQTTSink(broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		sinks = append(sinks, mqttSink)
	}
	sink := telemetry.NewMultiSink(sinks...)
	defer sink.Close()

	startTime := time.Now()
	tracker := status.NewTracker(startTime, status.Config{
		PollMs:        poll.Milliseconds(),
		MinIntervalMs: cfg.MinInterval.Milliseconds(),
		TargetTempC:   cfg.TargetTempC,
		TargetCO2Pct:  cfg.TargetCO2Pct,
		Broker:        broker,
		HTTPAddr:      httpAddr,
		SerialDevice:  serialDev,
		ConfigPath:    configPath,
	})

	if mqttSink != nil {
		event := telemetry.SystemEvent{
			Timestamp: startTime,
			Event:     "STARTUP",
			Retained:  true,
		}
		if err := mqttSink.PublishSystem(event); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	ctrl := controller.New(cfg, sens, hw.Heater(), hw.Valve(), hw.Button(), actuator.New(), sink, startTime)
	if mqttSink != nil {
		ctrl.SetSystemPublisher(mqttSink)
	}

	log.Printf("started: poll=%v interval=%v targets=%.1fC/%.1f%%CO2 serial=%q broker=%q",
		poll, cfg.MinInterval, cfg.TargetTempC, cfg.TargetCO2Pct, serialDev, broker)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, tracker, mqttSink, time.Now, ticker.C, sigCh)
}

func runLoop(ctrl *controller.Controller, tracker *status.Tracker, mqttSink *telemetry.MQTTSink,
	now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if mqttSink != nil {
				event := telemetry.SystemEvent{
					Timestamp: now(),
					Event:     "SHUTDOWN",
					Reason:    signalName,
					Retained:  true,
				}
				if err := mqttSink.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case <-tick:
			if err := ctrl.Tick(now()); err != nil {
				// Only a shaper misconfiguration lands here. It cannot
				// be actuated around, so stop.
				return fmt.Errorf("control cycle: %w", err)
			}

			last, hasSample := ctrl.LastSample()
			tracker.Update(last, hasSample, ctrl.Counts())
			if mqttSink != nil {
				tracker.SetMQTTConnected(mqttSink.IsConnected())
			}
		}
	}
}

// haltForever is the fail-stop path for a sensor fault at startup:
// keep telling the operator every 2 seconds until a physical reset.
func haltForever(err error) {
	for {
		log.Printf("FATAL: %v, chamber halted, reset required", err)
		time.Sleep(2 * time.Second)
	}
}
