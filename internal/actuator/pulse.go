// Package actuator converts duty fractions into timed gate pulses.
// A pulse deliberately blocks the calling goroutine: the controller is
// single-threaded by construction and only one gate may be high at a
// time.
package actuator

import (
	"fmt"
	"log"
	"time"

	"github.com/braingeneers/Opto-Incubator/internal/gpio"
)

// MaxPulse caps a single gate pulse. The whole control loop is blocked
// while a pulse runs, so an oversized duration would starve the button
// poll for that long.
const MaxPulse = 5 * time.Second

// Pulser emits timed pulses on actuator gates.
type Pulser struct {
	sleep func(time.Duration)
	max   time.Duration
}

// New returns a Pulser that blocks with time.Sleep and caps pulses at
// MaxPulse.
func New() *Pulser {
	return &Pulser{sleep: time.Sleep, max: MaxPulse}
}

// NewWithSleep returns a Pulser with an injectable sleep function, for
// tests.
func NewWithSleep(sleep func(time.Duration)) *Pulser {
	return &Pulser{sleep: sleep, max: MaxPulse}
}

// Pulse releases the pin so the pull-up drives the gate high, blocks
// for the given duration, then drives the pin low again. A non-positive
// duration returns immediately without touching the pin. Durations
// above the cap are clamped and logged.
func (p *Pulser) Pulse(pin gpio.Pin, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}
	if duration > p.max {
		log.Printf("actuator: clamping %v pulse to %v", duration, p.max)
		duration = p.max
	}

	if err := pin.Release(); err != nil {
		return fmt.Errorf("release gate: %w", err)
	}
	p.sleep(duration)
	if err := pin.DriveLow(); err != nil {
		return fmt.Errorf("drive gate low: %w", err)
	}
	return nil
}

// DurationMs converts a pulse length in milliseconds (the output
// shaper's domain) into a time.Duration.
func DurationMs(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
