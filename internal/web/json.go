package web

import (
	"encoding/json"
	"time"

	"github.com/braingeneers/Opto-Incubator/internal/status"
)

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Sample        *SampleJSON `json:"sample,omitempty"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	MQTT          MQTTStatus  `json:"mqtt"`
	Counts        CountsJSON  `json:"counts"`
	Config        ConfigJSON  `json:"config"`
}

// SampleJSON is the JSON representation of the last completed cycle.
type SampleJSON struct {
	Timestamp     string  `json:"timestamp"`
	TemperatureC  float64 `json:"temperature_c"`
	HumidityPct   float64 `json:"humidity_pct"`
	CO2Pct        float64 `json:"co2_pct"`
	HeaterPulseMs int64   `json:"heater_pulse_ms"`
	ValvePulseMs  int64   `json:"valve_pulse_ms"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of controller counters.
type CountsJSON struct {
	Cycles            int `json:"cycles"`
	SkippedCycles     int `json:"skipped_cycles"`
	Recalibrations    int `json:"recalibrations"`
	CalibrationErrors int `json:"calibration_errors"`
	ActuationErrors   int `json:"actuation_errors"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs        int64   `json:"poll_ms"`
	MinIntervalMs int64   `json:"min_interval_ms"`
	TargetTempC   float64 `json:"target_temp_c"`
	TargetCO2Pct  float64 `json:"target_co2_pct"`
	Broker        string  `json:"broker,omitempty"`
	HTTPAddr      string  `json:"http_addr"`
	SerialDevice  string  `json:"serial_device,omitempty"`
	ConfigPath    string  `json:"config_path,omitempty"`
}

func formatJSON(snap status.Snapshot) []byte {
	sj := StatusJSON{
		Status: StatusInner{
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
			Counts: CountsJSON{
				Cycles:            snap.Counts.Cycles,
				SkippedCycles:     snap.Counts.SkippedCycles,
				Recalibrations:    snap.Counts.Recalibrations,
				CalibrationErrors: snap.Counts.CalibrationErrors,
				ActuationErrors:   snap.Counts.ActuationErrors,
			},
			Config: ConfigJSON{
				PollMs:        snap.Config.PollMs,
				MinIntervalMs: snap.Config.MinIntervalMs,
				TargetTempC:   snap.Config.TargetTempC,
				TargetCO2Pct:  snap.Config.TargetCO2Pct,
				Broker:        snap.Config.Broker,
				HTTPAddr:      snap.Config.HTTPAddr,
				SerialDevice:  snap.Config.SerialDevice,
				ConfigPath:    snap.Config.ConfigPath,
			},
		},
	}

	if snap.HasSample {
		sj.Status.Sample = &SampleJSON{
			Timestamp:     snap.Last.Time.UTC().Format(time.RFC3339),
			TemperatureC:  snap.Last.TempC,
			HumidityPct:   snap.Last.HumidityPct,
			CO2Pct:        snap.Last.CO2Pct,
			HeaterPulseMs: snap.Last.HeaterPulse.Milliseconds(),
			ValvePulseMs:  snap.Last.ValvePulse.Milliseconds(),
		}
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
