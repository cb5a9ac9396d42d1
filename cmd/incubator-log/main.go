// Command incubator-log reads "<temperature>,<co2>" telemetry lines
// from the controller's serial port and appends timestamped rows to a
// CSV file, for offline inspection of the control loops.
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/braingeneers/Opto-Incubator/internal/telemetry"
	"github.com/tarm/serial"
)

func main() {
	device := flag.String("device", "/dev/ttyACM0", "serial device to read")
	baud := flag.Int("baud", telemetry.BaudRate, "baud rate (must match the controller)")
	out := flag.String("out", "", "CSV output path (empty: <timestamp>.csv)")
	quiet := flag.Bool("quiet", false, "Don't echo samples to stdout")

	flag.Parse()

	path := *out
	if path == "" {
		path = time.Now().Format("010206_150405") + ".csv"
	}

	if err := run(*device, *baud, path, *quiet); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(device string, baud int, path string, quiet bool) error {
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", device, err)
	}
	defer port.Close()
	log.Printf("reading %s at %d baud, logging to %s", device, baud, path)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	start := time.Now()
	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		tempC, co2, err := parseRecord(scanner.Text())
		if err != nil {
			// Partial first line or line noise; keep reading.
			log.Printf("skipping record: %v", err)
			continue
		}

		elapsed := strconv.FormatFloat(time.Since(start).Seconds(), 'f', 2, 64)
		if err := w.Write([]string{
			elapsed,
			strconv.FormatFloat(tempC, 'f', 2, 64),
			strconv.FormatFloat(co2, 'f', 2, 64),
		}); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("flush csv: %w", err)
		}

		if !quiet {
			fmt.Printf("%ss  temp=%.2fC  co2=%.2f%%\n", elapsed, tempC, co2)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read serial: %w", err)
	}
	return nil
}

// parseRecord parses one "<temperature>,<co2>" telemetry line.
func parseRecord(line string) (tempC, co2 float64, err error) {
	line = strings.TrimSpace(line)
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed record %q", line)
	}
	tempC, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad temperature in %q: %w", line, err)
	}
	co2, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad co2 in %q: %w", line, err)
	}
	return tempC, co2, nil
}
