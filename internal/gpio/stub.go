//go:build !linux

package gpio

import "errors"

// RealIO is not available on non-Linux platforms.
type RealIO struct{}

// NewRealIO returns an error on non-Linux platforms.
func NewRealIO(pinHeater, pinValve, pinButton int) (*RealIO, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Heater is not implemented on non-Linux platforms.
func (io *RealIO) Heater() Pin { return nil }

// Valve is not implemented on non-Linux platforms.
func (io *RealIO) Valve() Pin { return nil }

// Button is not implemented on non-Linux platforms.
func (io *RealIO) Button() Button { return nil }

// Close is not implemented on non-Linux platforms.
func (io *RealIO) Close() error { return nil }
