package control

import (
	"errors"
	"fmt"
)

// ErrInvalidRange reports a shaper misconfiguration where max <= min.
// This is a programmer error and should be unreachable with a correct
// configuration.
var ErrInvalidRange = errors.New("control: max must be greater than min")

// Default shaping ranges and scale factors. The heater is a slow
// resistive element and may be held on for up to 3 seconds per cycle;
// the pneumatic valve responds fast and is capped at half a second.
const (
	OutputMin = 0.0
	OutputMax = 100.0

	HeaterScaleMs = 3000.0
	ValveScaleMs  = 500.0
)

// ClampNormalize clamps raw into [min, max] and maps it linearly onto
// [0, 1]. Values outside the range saturate at 0 or 1; the function
// never extrapolates.
func ClampNormalize(raw, min, max float64) (float64, error) {
	if max <= min {
		return 0, fmt.Errorf("%w (min=%v, max=%v)", ErrInvalidRange, min, max)
	}
	if raw < min {
		raw = min
	} else if raw > max {
		raw = max
	}
	return (raw - min) / (max - min), nil
}

// Scale converts a normalized [0, 1] duty fraction into a pulse
// duration in milliseconds using the actuator's scale factor.
func Scale(normalized, scaleFactor float64) float64 {
	return normalized * scaleFactor
}
