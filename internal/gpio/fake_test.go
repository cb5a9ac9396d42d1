package gpio

import (
	"errors"
	"testing"
)

func TestFakePinRecordsOps(t *testing.T) {
	p := NewFakePin()

	if err := p.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.DriveLow(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Release(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{OpRelease, OpDriveLow, OpRelease}
	if len(p.Ops) != len(want) {
		t.Fatalf("expected %v, got %v", want, p.Ops)
	}
	for i := range want {
		if p.Ops[i] != want[i] {
			t.Errorf("op %d: expected %s, got %s", i, want[i], p.Ops[i])
		}
	}
}

func TestFakePinErrors(t *testing.T) {
	p := NewFakePin()
	p.DriveLowError = errors.New("stuck line")

	if err := p.DriveLow(); err == nil {
		t.Error("expected DriveLow error")
	}
	if len(p.Ops) != 0 {
		t.Errorf("failed op must not be recorded, got %v", p.Ops)
	}
}

func TestFakeButtonLevels(t *testing.T) {
	b := NewFakeButton([]bool{true, false})

	pressed, err := b.Pressed()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pressed {
		t.Error("level 0: expected pressed")
	}

	pressed, _ = b.Pressed()
	if pressed {
		t.Error("level 1: expected released")
	}

	// Exhausted: last level repeats.
	pressed, _ = b.Pressed()
	if pressed {
		t.Error("exhausted: expected last level to repeat")
	}
}

func TestFakeButtonEmpty(t *testing.T) {
	b := NewFakeButton(nil)
	if _, err := b.Pressed(); err == nil {
		t.Error("expected error with no levels configured")
	}
}

func TestFakeClose(t *testing.T) {
	p := NewFakePin()
	b := NewFakeButton([]bool{false})

	if err := p.Close(); err != nil || !p.Closed {
		t.Errorf("pin close: err=%v closed=%v", err, p.Closed)
	}
	if err := b.Close(); err != nil || !b.Closed {
		t.Errorf("button close: err=%v closed=%v", err, b.Closed)
	}
}
