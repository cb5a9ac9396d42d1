package gpio

import "errors"

// Pin operation names recorded by FakePin.
const (
	OpRelease  = "release"
	OpDriveLow = "drive-low"
)

// FakePin is a test double that records gate operations in order.
type FakePin struct {
	// Ops contains every Release/DriveLow call in the order made.
	Ops []string

	// ReleaseError, if set, will be returned by Release()
	ReleaseError error

	// DriveLowError, if set, will be returned by DriveLow()
	DriveLowError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakePin creates an empty FakePin.
func NewFakePin() *FakePin {
	return &FakePin{}
}

// Release records the operation.
func (f *FakePin) Release() error {
	if f.ReleaseError != nil {
		return f.ReleaseError
	}
	f.Ops = append(f.Ops, OpRelease)
	return nil
}

// DriveLow records the operation.
func (f *FakePin) DriveLow() error {
	if f.DriveLowError != nil {
		return f.DriveLowError
	}
	f.Ops = append(f.Ops, OpDriveLow)
	return nil
}

// Close marks the pin as closed.
func (f *FakePin) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded operations.
func (f *FakePin) Reset() {
	f.Ops = nil
	f.Closed = false
}

// FakeButton is a test double that returns scripted button levels.
type FakeButton struct {
	// Levels contains scripted pressed states. Each call to Pressed()
	// consumes the next level; when exhausted the last level repeats.
	Levels []bool

	// index tracks current position in Levels
	index int

	// Closed tracks if Close was called
	Closed bool

	// PressedError, if set, will be returned by Pressed()
	PressedError error
}

// NewFakeButton creates a FakeButton with the given scripted levels.
func NewFakeButton(levels []bool) *FakeButton {
	return &FakeButton{Levels: levels}
}

// Pressed returns the next scripted level.
func (f *FakeButton) Pressed() (bool, error) {
	if f.PressedError != nil {
		return false, f.PressedError
	}
	if len(f.Levels) == 0 {
		return false, errors.New("no levels configured")
	}
	level := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}
	return level, nil
}

// Close marks the button as closed.
func (f *FakeButton) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the button to the beginning of the scripted levels.
func (f *FakeButton) Reset() {
	f.index = 0
	f.Closed = false
}
