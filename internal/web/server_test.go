package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/braingeneers/Opto-Incubator/internal/controller"
	"github.com/braingeneers/Opto-Incubator/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:        10,
		MinIntervalMs: 2000,
		TargetTempC:   35,
		TargetCO2Pct:  5,
		Broker:        "tcp://192.168.1.200:1883",
		HTTPAddr:      ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func sampleAt(t time.Time) controller.Sample {
	return controller.Sample{
		Time:        t,
		TempC:       34.82,
		HumidityPct: 81.5,
		CO2Pct:      5.12,
		HeaterPulse: 540 * time.Millisecond,
		ValvePulse:  60 * time.Millisecond,
	}
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(sampleAt(time.Date(2026, 1, 1, 0, 0, 3, 0, time.UTC)), true,
		controller.Counts{Cycles: 7, Recalibrations: 1})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Sample == nil {
		t.Fatal("expected a sample")
	}
	if sj.Status.Sample.TemperatureC != 34.82 {
		t.Errorf("temperature: got %v", sj.Status.Sample.TemperatureC)
	}
	if sj.Status.Sample.HeaterPulseMs != 540 {
		t.Errorf("heater pulse: got %v", sj.Status.Sample.HeaterPulseMs)
	}
	if sj.Status.Counts.Cycles != 7 {
		t.Errorf("cycles: got %d", sj.Status.Counts.Cycles)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected")
	}
	if sj.Status.Config.TargetTempC != 35 {
		t.Errorf("target temp: got %v", sj.Status.Config.TargetTempC)
	}
}

func TestJSONEndpointNoSample(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.Sample != nil {
		t.Errorf("expected no sample, got %+v", sj.Status.Sample)
	}
}

func TestIndexPage(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(sampleAt(time.Date(2026, 1, 1, 0, 0, 3, 0, time.UTC)), true, controller.Counts{Cycles: 7})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	html := string(body)

	for _, want := range []string{"Opto-Incubator", "34.82", "5.12", "540ms"} {
		if !strings.Contains(html, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestWireLineEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)

	resp, err := http.Get(ts.URL + "/telemetry.txt")
	if err != nil {
		t.Fatalf("GET /telemetry.txt: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 204 {
		t.Errorf("before first cycle: got %d, want 204", resp.StatusCode)
	}

	tr.Update(sampleAt(time.Date(2026, 1, 1, 0, 0, 3, 0, time.UTC)), true, controller.Counts{Cycles: 1})
	resp, err = http.Get(ts.URL + "/telemetry.txt")
	if err != nil {
		t.Fatalf("GET /telemetry.txt: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if got := string(body); got != "34.82,5.12\n" {
		t.Errorf("wire line: got %q, want %q", got, "34.82,5.12\n")
	}
}

func TestIndexPageUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}
