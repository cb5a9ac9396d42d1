package control

import (
	"errors"
	"math"
	"testing"
)

func TestClampNormalizeInRange(t *testing.T) {
	// Round trip: normalized * (max-min) + min recovers the input.
	for _, val := range []float64{0, 12.5, 50, 99.9, 100} {
		n, err := ClampNormalize(val, 0, 100)
		if err != nil {
			t.Fatalf("val=%v: unexpected error: %v", val, err)
		}
		if n < 0 || n > 1 {
			t.Errorf("val=%v: normalized %v outside [0,1]", val, n)
		}
		if got := n * 100; math.Abs(got-val) > 1e-9 {
			t.Errorf("val=%v: round trip gave %v", val, got)
		}
	}
}

func TestClampNormalizeSaturates(t *testing.T) {
	cases := []struct {
		val  float64
		want float64
	}{
		{-2500, 0},
		{-0.001, 0},
		{100.001, 1},
		{2500, 1},
	}
	for _, c := range cases {
		n, err := ClampNormalize(c.val, 0, 100)
		if err != nil {
			t.Fatalf("val=%v: unexpected error: %v", c.val, err)
		}
		if n != c.want {
			t.Errorf("val=%v: expected %v, got %v", c.val, c.want, n)
		}
	}
}

func TestClampNormalizeNonZeroMin(t *testing.T) {
	n, err := ClampNormalize(15, 10, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0.5 {
		t.Errorf("expected 0.5, got %v", n)
	}
}

func TestClampNormalizeInvalidRange(t *testing.T) {
	if _, err := ClampNormalize(5, 10, 10); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("max == min: expected ErrInvalidRange, got %v", err)
	}
	if _, err := ClampNormalize(5, 10, 0); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("max < min: expected ErrInvalidRange, got %v", err)
	}
}

func TestScale(t *testing.T) {
	if got := Scale(1.0, HeaterScaleMs); got != 3000 {
		t.Errorf("full heater duty: expected 3000, got %v", got)
	}
	if got := Scale(0, HeaterScaleMs); got != 0 {
		t.Errorf("zero duty: expected 0, got %v", got)
	}
	if got := Scale(0.5, ValveScaleMs); got != 250 {
		t.Errorf("half valve duty: expected 250, got %v", got)
	}
}
