package internal

import (
	"bytes"
	"testing"
	"time"

	"github.com/braingeneers/Opto-Incubator/internal/actuator"
	"github.com/braingeneers/Opto-Incubator/internal/controller"
	"github.com/braingeneers/Opto-Incubator/internal/gpio"
	"github.com/braingeneers/Opto-Incubator/internal/sensor"
	"github.com/braingeneers/Opto-Incubator/internal/telemetry"
)

// TestIntegrationColdChamber drives the full stack with fakes: a cold
// chamber at 30C demands a saturated heater pulse.
// Raw output = 500*(35-30) = 2500, clamped to [0,100] -> 100,
// normalized 1.0, scaled by 3000 -> 3000ms.
func TestIntegrationColdChamber(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sens := sensor.NewFake([]sensor.Reading{{TempC: 30, HumidityPct: 80, CO2Pct: 10}})
	heater := gpio.NewFakePin()
	valve := gpio.NewFakePin()
	button := gpio.NewFakeButton([]bool{false})
	sink := telemetry.NewFakeSink()

	var slept []time.Duration
	sleep := func(d time.Duration) { slept = append(slept, d) }
	ctrl := controller.New(controller.DefaultConfig(), sens, heater, valve, button,
		actuator.NewWithSleep(sleep), sink, start)
	ctrl.SetSleep(sleep)

	// Simulate the tick loop at a 10ms poll until past the gate.
	for i := 0; i <= 250; i++ {
		now := start.Add(time.Duration(i) * 10 * time.Millisecond)
		if err := ctrl.Tick(now); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	last, ok := ctrl.LastSample()
	if !ok {
		t.Fatal("expected a completed cycle")
	}
	if last.HeaterPulse != 3*time.Second {
		t.Errorf("heater pulse: expected 3000ms, got %v", last.HeaterPulse)
	}
	// CO2 at 10% over a 5% target: valve stays shut.
	if last.ValvePulse != 0 {
		t.Errorf("valve pulse: expected 0, got %v", last.ValvePulse)
	}
	if len(slept) != 1 || slept[0] != 3*time.Second {
		t.Errorf("expected a single 3s heater pulse, got %v", slept)
	}
	if len(valve.Ops) != 0 {
		t.Errorf("valve must stay untouched, got %v", valve.Ops)
	}
}

// TestIntegrationHotChamber is the opposite case: 40C over a 35C
// target. Raw output = 500*(35-40) = -2500, clamped to 0, pulse 0ms:
// the heater is never touched.
func TestIntegrationHotChamber(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sens := sensor.NewFake([]sensor.Reading{{TempC: 40, HumidityPct: 80, CO2Pct: 10}})
	heater := gpio.NewFakePin()
	valve := gpio.NewFakePin()
	button := gpio.NewFakeButton([]bool{false})
	sink := telemetry.NewFakeSink()

	var slept []time.Duration
	sleep := func(d time.Duration) { slept = append(slept, d) }
	ctrl := controller.New(controller.DefaultConfig(), sens, heater, valve, button,
		actuator.NewWithSleep(sleep), sink, start)
	ctrl.SetSleep(sleep)

	for i := 0; i <= 250; i++ {
		now := start.Add(time.Duration(i) * 10 * time.Millisecond)
		if err := ctrl.Tick(now); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	last, ok := ctrl.LastSample()
	if !ok {
		t.Fatal("expected a completed cycle")
	}
	if last.HeaterPulse != 0 {
		t.Errorf("heater pulse: expected 0ms, got %v", last.HeaterPulse)
	}
	if len(heater.Ops) != 0 {
		t.Errorf("heater must stay untouched, got %v", heater.Ops)
	}
	if len(slept) != 0 {
		t.Errorf("nothing should block, got sleeps %v", slept)
	}
}

// TestIntegrationTelemetryWireFormat runs cycles into a WriterSink and
// checks the serial line protocol end to end.
func TestIntegrationTelemetryWireFormat(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sens := sensor.NewFake([]sensor.Reading{
		{TempC: 34.5, HumidityPct: 80, CO2Pct: 4.25},
		{TempC: 35.13, HumidityPct: 80, CO2Pct: 5.5},
	})
	var buf bytes.Buffer

	var slept []time.Duration
	sleep := func(d time.Duration) { slept = append(slept, d) }
	ctrl := controller.New(controller.DefaultConfig(), sens,
		gpio.NewFakePin(), gpio.NewFakePin(), gpio.NewFakeButton([]bool{false}),
		actuator.NewWithSleep(sleep), telemetry.NewWriterSink(&buf), start)
	ctrl.SetSleep(sleep)

	// Two gated cycles.
	for _, offset := range []time.Duration{2001 * time.Millisecond, 4002 * time.Millisecond} {
		if err := ctrl.Tick(start.Add(offset)); err != nil {
			t.Fatalf("tick at +%v: %v", offset, err)
		}
	}

	want := "34.50,4.25\n35.13,5.50\n"
	if buf.String() != want {
		t.Errorf("wire format: got %q, want %q", buf.String(), want)
	}
}

// TestIntegrationRecalibrationFlow presses the button mid-run and
// checks the request reaches the sensor with the fixed reference.
func TestIntegrationRecalibrationFlow(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sens := sensor.NewFake([]sensor.Reading{{TempC: 35, HumidityPct: 80, CO2Pct: 5}})
	button := gpio.NewFakeButton([]bool{false, true, true, false})

	var slept []time.Duration
	sleep := func(d time.Duration) { slept = append(slept, d) }
	cfg := controller.DefaultConfig()
	ctrl := controller.New(cfg, sens,
		gpio.NewFakePin(), gpio.NewFakePin(), button,
		actuator.NewWithSleep(sleep), telemetry.NewFakeSink(), start)
	ctrl.SetSleep(sleep)

	for i := 0; i < 4; i++ {
		now := start.Add(time.Duration(i) * 10 * time.Millisecond)
		if err := ctrl.Tick(now); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	if len(sens.Recalibrations) != 1 {
		t.Fatalf("expected 1 recalibration, got %d", len(sens.Recalibrations))
	}
	if sens.Recalibrations[0] != 0.06 {
		t.Errorf("reference: expected 0.06, got %v", sens.Recalibrations[0])
	}
	// The settle sleep follows the request.
	if len(slept) != 1 || slept[0] != cfg.RecalSettle {
		t.Errorf("expected one settle sleep of %v, got %v", cfg.RecalSettle, slept)
	}
}
