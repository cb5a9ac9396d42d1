//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealIO owns the GPIO lines on actual hardware using the Linux GPIO
// character device: both actuator gates and the recalibration button.
type RealIO struct {
	chip   *gpiocdev.Chip
	heater *realPin
	valve  *realPin
	button *realButton
}

// NewRealIO requests the actuator and button lines. Both actuator lines
// start driven low (actuators off); the button line is an input with
// the internal pull-up enabled.
func NewRealIO(pinHeater, pinValve, pinButton int) (*RealIO, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	heaterLine, err := chip.RequestLine(pinHeater, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request heater pin %d: %w", pinHeater, err)
	}

	valveLine, err := chip.RequestLine(pinValve, gpiocdev.AsOutput(0))
	if err != nil {
		heaterLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request valve pin %d: %w", pinValve, err)
	}

	buttonLine, err := chip.RequestLine(pinButton, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		valveLine.Close()
		heaterLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pinButton, err)
	}

	return &RealIO{
		chip:   chip,
		heater: &realPin{line: heaterLine},
		valve:  &realPin{line: valveLine},
		button: &realButton{line: buttonLine},
	}, nil
}

// Heater returns the heater gate pin.
func (io *RealIO) Heater() Pin { return io.heater }

// Valve returns the valve gate pin.
func (io *RealIO) Valve() Pin { return io.valve }

// Button returns the recalibration button input.
func (io *RealIO) Button() Button { return io.button }

// Close drives both gates low and releases all GPIO resources.
func (io *RealIO) Close() error {
	var errs []error
	if io.heater != nil {
		if err := io.heater.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close heater: %w", err))
		}
	}
	if io.valve != nil {
		if err := io.valve.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close valve: %w", err))
		}
	}
	if io.button != nil {
		if err := io.button.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button: %w", err))
		}
	}
	if io.chip != nil {
		if err := io.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// realPin is a single actuator gate line.
type realPin struct {
	line *gpiocdev.Line
}

// Release reconfigures the line as a high-impedance input so the
// external pull-up takes the gate high.
func (p *realPin) Release() error {
	if err := p.line.Reconfigure(gpiocdev.AsInput); err != nil {
		return fmt.Errorf("reconfigure as input: %w", err)
	}
	return nil
}

// DriveLow reconfigures the line as an output driven low.
func (p *realPin) DriveLow() error {
	if err := p.line.Reconfigure(gpiocdev.AsOutput(0)); err != nil {
		return fmt.Errorf("reconfigure as output low: %w", err)
	}
	return nil
}

// Close drives the gate low before releasing the line, so the actuator
// stays off across daemon restarts.
func (p *realPin) Close() error {
	if err := p.line.Reconfigure(gpiocdev.AsOutput(0)); err != nil {
		p.line.Close()
		return fmt.Errorf("drive low on close: %w", err)
	}
	return p.line.Close()
}

// realButton is the active-low button input line.
type realButton struct {
	line *gpiocdev.Line
}

// Pressed reads the line; a low level means the button is held down.
func (b *realButton) Pressed() (bool, error) {
	v, err := b.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button: %w", err)
	}
	return v == 0, nil
}

// Close releases the line.
func (b *realButton) Close() error {
	return b.line.Close()
}
