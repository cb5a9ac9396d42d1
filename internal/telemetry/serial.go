package telemetry

import (
	"fmt"

	"github.com/tarm/serial"
)

// BaudRate is the serial line rate; the host-side logger must match.
const BaudRate = 115200

// NewSerialSink opens the given serial device and returns a line
// protocol sink over it.
func NewSerialSink(device string) (*WriterSink, error) {
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: BaudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return NewWriterSink(port), nil
}
