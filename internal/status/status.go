// Package status provides a thread-safe status tracker for the
// incubator daemon. The tick loop writes it; HTTP handlers read it.
package status

import (
	"sync"
	"time"

	"github.com/braingeneers/Opto-Incubator/internal/controller"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs        int64
	MinIntervalMs int64
	TargetTempC   float64
	TargetCO2Pct  float64
	Broker        string
	HTTPAddr      string
	SerialDevice  string
	ConfigPath    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Last          controller.Sample
	HasSample     bool
	Counts        controller.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the latest cycle sample and counters.
// Called from the tick loop on every tick.
func (t *Tracker) Update(last controller.Sample, hasSample bool, counts controller.Counts) {
	t.mu.Lock()
	t.snap.Last = last
	t.snap.HasSample = hasSample
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a copy of the current state with Now stamped.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	snap := t.snap
	t.mu.RUnlock()
	snap.Now = time.Now()
	return snap
}
