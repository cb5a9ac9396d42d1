package controller

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/braingeneers/Opto-Incubator/internal/control"
)

// Config holds the control tuning for the chamber. The defaults
// reproduce the deployed tuning; a TOML file can override any of it.
// There is no dynamic reload: the file is read once at startup.
type Config struct {
	TargetTempC  float64
	TargetCO2Pct float64

	TempGains control.Gains
	CO2Gains  control.Gains

	// MinInterval gates the sense-control-actuate cycle. The sensor
	// needs at least 1000ms between measurements; 2000ms leaves margin.
	MinInterval time.Duration

	OutputMin float64
	OutputMax float64

	HeaterScaleMs float64
	ValveScaleMs  float64

	// RecalReference is the CO2 fraction the chamber holds when the
	// recalibration button is pressed (0.06 = 6%).
	RecalReference float64

	// RecalSettle is how long the controller blocks after issuing a
	// recalibration, letting the sensor commit its offset.
	RecalSettle time.Duration

	// LevelTriggered restores the historical button behavior: the
	// recalibration re-fires on every tick the button reads low,
	// instead of once per press.
	LevelTriggered bool
}

// DefaultConfig returns the deployed chamber tuning: 35C, 5% CO2,
// proportional-only loops.
func DefaultConfig() Config {
	return Config{
		TargetTempC:    35.0,
		TargetCO2Pct:   5.0,
		TempGains:      control.Gains{P: 500.0},
		CO2Gains:       control.Gains{P: 10.0},
		MinInterval:    2000 * time.Millisecond,
		OutputMin:      control.OutputMin,
		OutputMax:      control.OutputMax,
		HeaterScaleMs:  control.HeaterScaleMs,
		ValveScaleMs:   control.ValveScaleMs,
		RecalReference: 0.06,
		RecalSettle:    1000 * time.Millisecond,
	}
}

// tomlConfig is the on-disk shape. Durations are plain milliseconds so
// the file stays readable next to the firmware constants it replaced.
type tomlConfig struct {
	TargetTempC  *float64 `toml:"target_temp_c"`
	TargetCO2Pct *float64 `toml:"target_co2_pct"`

	TempGains *tomlGains `toml:"temp_gains"`
	CO2Gains  *tomlGains `toml:"co2_gains"`

	MinIntervalMs *int64 `toml:"min_interval_ms"`

	OutputMin *float64 `toml:"output_min"`
	OutputMax *float64 `toml:"output_max"`

	HeaterScaleMs *float64 `toml:"heater_scale_ms"`
	ValveScaleMs  *float64 `toml:"valve_scale_ms"`

	RecalReference *float64 `toml:"recal_reference"`
	RecalSettleMs  *int64   `toml:"recal_settle_ms"`

	LevelTriggered *bool `toml:"level_triggered_button"`
}

type tomlGains struct {
	P             float64 `toml:"p"`
	I             float64 `toml:"i"`
	D             float64 `toml:"d"`
	IntegralLimit float64 `toml:"integral_limit"`
}

// LoadConfig reads a TOML tuning file over the defaults. A missing
// file is not an error: the defaults apply unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	var tc tomlConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}

	if tc.TargetTempC != nil {
		cfg.TargetTempC = *tc.TargetTempC
	}
	if tc.TargetCO2Pct != nil {
		cfg.TargetCO2Pct = *tc.TargetCO2Pct
	}
	if tc.TempGains != nil {
		cfg.TempGains = gainsFromTOML(*tc.TempGains)
	}
	if tc.CO2Gains != nil {
		cfg.CO2Gains = gainsFromTOML(*tc.CO2Gains)
	}
	if tc.MinIntervalMs != nil {
		cfg.MinInterval = time.Duration(*tc.MinIntervalMs) * time.Millisecond
	}
	if tc.OutputMin != nil {
		cfg.OutputMin = *tc.OutputMin
	}
	if tc.OutputMax != nil {
		cfg.OutputMax = *tc.OutputMax
	}
	if tc.HeaterScaleMs != nil {
		cfg.HeaterScaleMs = *tc.HeaterScaleMs
	}
	if tc.ValveScaleMs != nil {
		cfg.ValveScaleMs = *tc.ValveScaleMs
	}
	if tc.RecalReference != nil {
		cfg.RecalReference = *tc.RecalReference
	}
	if tc.RecalSettleMs != nil {
		cfg.RecalSettle = time.Duration(*tc.RecalSettleMs) * time.Millisecond
	}
	if tc.LevelTriggered != nil {
		cfg.LevelTriggered = *tc.LevelTriggered
	}

	if cfg.OutputMax <= cfg.OutputMin {
		return cfg, fmt.Errorf("config %s: output_max (%v) must be greater than output_min (%v)",
			path, cfg.OutputMax, cfg.OutputMin)
	}
	return cfg, nil
}

func gainsFromTOML(g tomlGains) control.Gains {
	return control.Gains{P: g.P, I: g.I, D: g.D, IntegralLimit: g.IntegralLimit}
}
