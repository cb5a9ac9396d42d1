package sensor

import "errors"

// Reading is a single scripted measurement for the fake sensor.
type Reading struct {
	TempC       float64
	HumidityPct float64
	CO2Pct      float64
}

// Fake is a test double that returns scripted readings and records
// recalibration requests.
type Fake struct {
	// Readings contains scripted measurements. Each completed cycle
	// (temperature + humidity + CO2 reads) consumes one reading; when
	// exhausted the last reading repeats.
	Readings []Reading

	// Ready controls HasNewReading. Defaults to true via NewFake.
	Ready bool

	// Recalibrations records every ForceRecalibrate reference value.
	Recalibrations []float64

	// BeginError, if set, will be returned by Begin()
	BeginError error

	// ReadyError, if set, will be returned by HasNewReading()
	ReadyError error

	// ReadError, if set, will be returned by every measurement read
	ReadError error

	// RecalibrateError, if set, will be returned by ForceRecalibrate()
	RecalibrateError error

	// Closed tracks if Close was called
	Closed bool

	index    int
	co2Reads int
}

// NewFake creates a ready Fake with the given scripted readings.
func NewFake(readings []Reading) *Fake {
	return &Fake{Readings: readings, Ready: true}
}

// Begin reports the scripted startup status.
func (f *Fake) Begin() error {
	return f.BeginError
}

// HasNewReading reports the scripted ready flag.
func (f *Fake) HasNewReading() (bool, error) {
	if f.ReadyError != nil {
		return false, f.ReadyError
	}
	return f.Ready, nil
}

// ReadTemperatureC returns the current scripted temperature.
func (f *Fake) ReadTemperatureC() (float64, error) {
	r, err := f.current()
	if err != nil {
		return 0, err
	}
	return r.TempC, nil
}

// ReadHumidityPct returns the current scripted humidity.
func (f *Fake) ReadHumidityPct() (float64, error) {
	r, err := f.current()
	if err != nil {
		return 0, err
	}
	return r.HumidityPct, nil
}

// ReadCO2 returns the current scripted CO2 value and advances to the
// next scripted reading. The CO2 read is last in the controller's
// sampling order, so it marks the end of a cycle.
func (f *Fake) ReadCO2(tempC, humidityPct float64) (float64, error) {
	r, err := f.current()
	if err != nil {
		return 0, err
	}
	f.co2Reads++
	if f.index < len(f.Readings)-1 {
		f.index++
	}
	return r.CO2Pct, nil
}

// ForceRecalibrate records the reference value.
func (f *Fake) ForceRecalibrate(reference float64) error {
	if f.RecalibrateError != nil {
		return f.RecalibrateError
	}
	f.Recalibrations = append(f.Recalibrations, reference)
	return nil
}

// Close marks the sensor as closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

// CO2Reads returns how many complete cycles were read.
func (f *Fake) CO2Reads() int {
	return f.co2Reads
}

func (f *Fake) current() (Reading, error) {
	if f.ReadError != nil {
		return Reading{}, f.ReadError
	}
	if len(f.Readings) == 0 {
		return Reading{}, errors.New("no readings configured")
	}
	return f.Readings[f.index], nil
}
