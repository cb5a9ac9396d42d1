// Package gpio provides digital I/O with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Pin drives one actuator gate. Each gate has an external pull-up
// resistor, so the line presents only two useful states: released
// (high-impedance input mode, pull-up takes the gate high, actuator on)
// and driven low (actuator off). There is no driven-high state; the
// pull-up is the only high source.
type Pin interface {
	// Release puts the line in high-impedance input mode so the
	// external pull-up drives the gate high.
	Release() error

	// DriveLow drives the line low.
	DriveLow() error

	// Close releases GPIO resources. The line is driven low first so
	// the actuator is off after shutdown.
	Close() error
}

// Button reads the recalibration push button. The input uses the
// internal pull-up and the button shorts the line to ground, so the
// button is active-low.
type Button interface {
	// Pressed reports whether the button is currently held down.
	Pressed() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinHeater = 26 // resistive heater gate
	DefaultPinValve  = 16 // pneumatic CO2 valve gate
	DefaultPinButton = 24 // recalibration push button
)
