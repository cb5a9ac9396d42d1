// Package sensor defines the incubator's combined gas and
// temperature/humidity sensor boundary. The controller only depends on
// the Sensor interface; the real I2C driver and the scripted fake both
// satisfy it.
package sensor

import (
	"errors"
	"fmt"
)

// ErrNotReady reports that the sensor has no fresh measurement yet.
// It is a transient condition, not a fault: the controller skips the
// cycle and retries on the next interval.
var ErrNotReady = errors.New("sensor: no new reading")

// Fault is a hard sensor failure: the device is unreachable or reports
// a non-nominal status. A Fault from Begin is fatal; mid-run faults
// skip the cycle's actuation.
type Fault struct {
	Op  string // the operation that failed, e.g. "begin", "read co2"
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("sensor %s: %v", f.Op, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Sensor is the combined CO2 + temperature/humidity sensor.
// The manufacturer requires at least 1000ms between gas measurements;
// the controller's 2000ms cycle gate satisfies that with margin.
type Sensor interface {
	// Begin initializes the device and verifies nominal status.
	Begin() error

	// HasNewReading reports whether a fresh gas measurement is
	// available to read.
	HasNewReading() (bool, error)

	// ReadTemperatureC returns the chamber temperature in Celsius.
	ReadTemperatureC() (float64, error)

	// ReadHumidityPct returns the relative humidity in percent.
	ReadHumidityPct() (float64, error)

	// ReadCO2 returns the CO2 concentration in percent, compensated
	// with the ambient temperature and humidity.
	ReadCO2(tempC, humidityPct float64) (float64, error)

	// ForceRecalibrate resets the gas offset calibration against a
	// known reference concentration expressed as a fraction
	// (0.06 = 6% CO2). The device persists the offset internally.
	ForceRecalibrate(reference float64) error

	// Close releases device resources.
	Close() error
}
