package sensor

import (
	"fmt"
	"time"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

// I2C addresses of the chamber sensor pair: a SenseAir K30-style NDIR
// CO2 engine and an SHT31 temperature/humidity chip on the same bus.
const (
	co2Addr = 0x68
	shtAddr = 0x44
)

// The NDIR engine updates its filtered reading every measurement
// period; reads spaced closer than this return stale data.
const measurementPeriod = 1 * time.Second

// Real is the I2C driver for the chamber sensors.
type Real struct {
	bus     i2c.BusCloser
	co2     i2c.Dev
	sht     i2c.Dev
	lastCO2 time.Time
}

// NewReal initializes the host and opens the given I2C bus ("" selects
// the first available bus).
func NewReal(busName string) (*Real, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	return &Real{
		bus: bus,
		co2: i2c.Dev{Bus: bus, Addr: co2Addr},
		sht: i2c.Dev{Bus: bus, Addr: shtAddr},
	}, nil
}

// Begin probes both devices and verifies nominal status. A failure here
// is fatal for the controller: the chamber must not run blind.
func (r *Real) Begin() error {
	// SHT31 status register read doubles as a presence check.
	var status [3]byte
	if err := r.sht.Tx([]byte{0xf3, 0x2d}, status[:]); err != nil {
		return &Fault{Op: "begin", Err: fmt.Errorf("sht31 status: %w", err)}
	}
	if status[2] != crc8(status[:2]) {
		return &Fault{Op: "begin", Err: fmt.Errorf("sht31 status crc mismatch")}
	}
	// Bit 1 of the status word flags a failed internal checksum.
	if status[1]&0x02 != 0 {
		return &Fault{Op: "begin", Err: fmt.Errorf("sht31 reports non-nominal status %#x%02x", status[0], status[1])}
	}
	if _, err := r.readCO2Raw(); err != nil {
		return &Fault{Op: "begin", Err: fmt.Errorf("co2 engine probe: %w", err)}
	}
	return nil
}

// HasNewReading reports whether a full measurement period has elapsed
// since the previous CO2 read.
func (r *Real) HasNewReading() (bool, error) {
	if r.lastCO2.IsZero() {
		return true, nil
	}
	return time.Since(r.lastCO2) >= measurementPeriod, nil
}

// ReadTemperatureC runs a single-shot high-repeatability SHT31
// measurement and returns the temperature in Celsius.
func (r *Real) ReadTemperatureC() (float64, error) {
	raw, _, err := r.readSHT()
	if err != nil {
		return 0, err
	}
	return -45.0 + 175.0*float64(raw)/65535.0, nil
}

// ReadHumidityPct runs a single-shot SHT31 measurement and returns the
// relative humidity in percent.
func (r *Real) ReadHumidityPct() (float64, error) {
	_, raw, err := r.readSHT()
	if err != nil {
		return 0, err
	}
	return 100.0 * float64(raw) / 65535.0, nil
}

// ReadCO2 reads the NDIR engine and returns the CO2 concentration in
// percent, compensated for the water vapor and temperature dependence
// of the NDIR absorption path.
func (r *Real) ReadCO2(tempC, humidityPct float64) (float64, error) {
	raw, err := r.readCO2Raw()
	if err != nil {
		return 0, err
	}
	r.lastCO2 = time.Now()

	// ppm -> percent, then first-order compensation around the
	// factory reference point (25 C, 50 %RH).
	pct := float64(raw) / 10000.0
	pct *= 1.0 + 0.0014*(tempC-25.0) + 0.0002*(humidityPct-50.0)
	return pct, nil
}

// ForceRecalibrate issues a background calibration command against the
// given reference fraction. The engine persists the resulting offset in
// its own non-volatile memory.
func (r *Real) ForceRecalibrate(reference float64) error {
	ppm := uint16(reference * 1000000.0 / 100.0) // fraction -> ppm/100, engine works in ppm/100 units
	cmd := []byte{0x12, 0x00, 0x7c, byte(ppm >> 8), byte(ppm)}
	cmd = append(cmd, checksum(cmd))
	if err := r.co2.Tx(cmd, nil); err != nil {
		return &Fault{Op: "recalibrate", Err: err}
	}
	// The engine needs a moment to commit the offset before the next
	// command.
	time.Sleep(20 * time.Millisecond)
	var resp [2]byte
	if err := r.co2.Tx(nil, resp[:]); err != nil {
		return &Fault{Op: "recalibrate", Err: err}
	}
	if resp[0]&0x01 == 0 {
		return &Fault{Op: "recalibrate", Err: fmt.Errorf("engine rejected command, status %#02x", resp[0])}
	}
	return nil
}

// Close releases the I2C bus.
func (r *Real) Close() error {
	return r.bus.Close()
}

// readCO2Raw reads the filtered CO2 value (ppm) from engine RAM.
func (r *Real) readCO2Raw() (uint16, error) {
	if err := r.co2.Tx([]byte{0x22, 0x00, 0x08, 0x2a}, nil); err != nil {
		return 0, &Fault{Op: "read co2", Err: err}
	}
	time.Sleep(20 * time.Millisecond)
	var resp [4]byte
	if err := r.co2.Tx(nil, resp[:]); err != nil {
		return 0, &Fault{Op: "read co2", Err: err}
	}
	if resp[0]&0x01 == 0 {
		return 0, &Fault{Op: "read co2", Err: fmt.Errorf("engine not ready, status %#02x", resp[0])}
	}
	if checksum(resp[:3]) != resp[3] {
		return 0, &Fault{Op: "read co2", Err: fmt.Errorf("checksum mismatch")}
	}
	return uint16(resp[1])<<8 | uint16(resp[2]), nil
}

// readSHT runs one single-shot measurement and returns the raw
// temperature and humidity words.
func (r *Real) readSHT() (uint16, uint16, error) {
	if err := r.sht.Tx([]byte{0x24, 0x00}, nil); err != nil {
		return 0, 0, &Fault{Op: "read sht31", Err: err}
	}
	// High repeatability measurement takes up to 15ms.
	time.Sleep(16 * time.Millisecond)
	var resp [6]byte
	if err := r.sht.Tx(nil, resp[:]); err != nil {
		return 0, 0, &Fault{Op: "read sht31", Err: err}
	}
	if crc8(resp[0:2]) != resp[2] || crc8(resp[3:5]) != resp[5] {
		return 0, 0, &Fault{Op: "read sht31", Err: fmt.Errorf("crc mismatch")}
	}
	t := uint16(resp[0])<<8 | uint16(resp[1])
	h := uint16(resp[3])<<8 | uint16(resp[4])
	return t, h, nil
}

// crc8 is the Sensirion CRC-8 (poly 0x31, init 0xff) over data words.
func crc8(data []byte) byte {
	crc := byte(0xff)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// checksum is the engine's simple byte-sum check.
func checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}
