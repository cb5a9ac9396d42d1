package telemetry

import "time"

// FakeSink records telemetry for test assertions.
type FakeSink struct {
	// Records contains every sample in order.
	Records []Sample

	// SystemEvents contains every system event in order.
	SystemEvents []SystemEvent

	// RecordError, if set, will be returned by Record.
	RecordError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// Sample is one recorded telemetry sample.
type Sample struct {
	Timestamp time.Time
	TempC     float64
	CO2Pct    float64
}

// NewFakeSink creates a FakeSink for testing.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// Record stores the sample.
func (f *FakeSink) Record(t time.Time, tempC, co2Pct float64) error {
	if f.RecordError != nil {
		return f.RecordError
	}
	f.Records = append(f.Records, Sample{Timestamp: t, TempC: tempC, CO2Pct: co2Pct})
	return nil
}

// PublishSystem stores the system event.
func (f *FakeSink) PublishSystem(event SystemEvent) error {
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// IsConnected reports whether the fake sink is "connected".
func (f *FakeSink) IsConnected() bool {
	return f.Connected
}

// Close marks the sink as closed.
func (f *FakeSink) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded telemetry.
func (f *FakeSink) Reset() {
	f.Records = nil
	f.SystemEvents = nil
	f.Closed = false
	f.RecordError = nil
	f.Connected = false
}
