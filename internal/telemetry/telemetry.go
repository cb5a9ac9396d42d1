// Package telemetry emits one record per completed control cycle.
// The primary sink is the line-oriented serial protocol consumed by the
// host-side logger; an MQTT sink can mirror the records for remote
// monitoring.
package telemetry

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"time"
)

// Sink consumes one telemetry record per completed control cycle.
type Sink interface {
	// Record emits one sample. Errors must not crash the controller;
	// they are logged and the cycle continues.
	Record(t time.Time, tempC, co2Pct float64) error

	// Close releases sink resources.
	Close() error
}

// FormatRecord renders the wire format consumed by downstream logging
// tools: "<temperature>,<co2>\n" with two decimal places and a
// locale-independent decimal point. Byte-for-byte compatibility
// matters here.
func FormatRecord(tempC, co2Pct float64) []byte {
	line := strconv.FormatFloat(tempC, 'f', 2, 64) + "," +
		strconv.FormatFloat(co2Pct, 'f', 2, 64) + "\n"
	return []byte(line)
}

// WriterSink writes the line protocol to any io.Writer. It backs both
// the serial port sink and the -stdout debugging mode.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink creates a sink over the given writer.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Record writes one line.
func (s *WriterSink) Record(t time.Time, tempC, co2Pct float64) error {
	if _, err := s.w.Write(FormatRecord(tempC, co2Pct)); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Close closes the underlying writer when it is closeable.
func (s *WriterSink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// MultiSink fans a record out to several sinks. Per-sink errors are
// logged and do not stop the others.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a fan-out over the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Record forwards the sample to every sink.
func (m *MultiSink) Record(t time.Time, tempC, co2Pct float64) error {
	for _, s := range m.sinks {
		if err := s.Record(t, tempC, co2Pct); err != nil {
			log.Printf("telemetry: %v", err)
		}
	}
	return nil
}

// Close closes every sink.
func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
