// Package control contains the pure control math for the incubator:
// the PID loops driving the heater and CO2 valve, and the output
// shaping that turns a raw loop output into a pulse duration.
// This package has NO hardware dependencies (no GPIO, sensors, or
// time.Sleep). Time is always injectable via time.Time parameters.
package control

import "time"

// Gains holds the tuning constants for one control loop.
// A term is only computed when its gain is positive, so a loop can be
// run P-only, PI, PD, etc. by zeroing the unused gains.
type Gains struct {
	P float64
	I float64
	D float64

	// IntegralLimit bounds the magnitude of the integral accumulator
	// (anti-windup). Zero disables the bound, matching the original
	// tuning where the accumulator grows for the life of the process.
	IntegralLimit float64
}

// Loop is the persistent state of a single PID control loop. Each
// controlled variable (temperature, CO2) owns its own Loop; the
// derivative timebase and previous error are never shared between
// loops.
type Loop struct {
	Target float64
	Gains  Gains

	integral   float64
	prevError  float64
	lastSample time.Time
}

// NewLoop creates a control loop for the given setpoint.
func NewLoop(target float64, gains Gains) *Loop {
	return &Loop{Target: target, Gains: gains}
}

// Compute returns the raw control output for the current reading.
// The output is unclamped; ClampNormalize bounds it afterwards.
//
// The derivative term needs an elapsed interval, so it is skipped on
// the first call and whenever now is not after the previous derivative
// sample. A repeated timestamp therefore degrades to PI output instead
// of dividing by zero.
func (l *Loop) Compute(current float64, now time.Time) float64 {
	e := l.Target - current

	var out float64
	if l.Gains.P > 0 {
		out += l.Gains.P * e
	}
	if l.Gains.I > 0 {
		l.integral += e * l.Gains.I
		if lim := l.Gains.IntegralLimit; lim > 0 {
			if l.integral > lim {
				l.integral = lim
			} else if l.integral < -lim {
				l.integral = -lim
			}
		}
		out += l.integral
	}
	if l.Gains.D > 0 {
		if !l.lastSample.IsZero() {
			if dt := now.Sub(l.lastSample).Seconds(); dt > 0 {
				out += l.Gains.D * (e - l.prevError) / dt
			}
		}
		l.prevError = e
		l.lastSample = now
	}
	return out
}

// Integral returns the current integral accumulator value.
func (l *Loop) Integral() float64 {
	return l.integral
}
