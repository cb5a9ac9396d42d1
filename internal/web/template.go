package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/braingeneers/Opto-Incubator/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"ms": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Opto-Incubator</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.connected { color: green; }
.disconnected { color: red; }
.stale { color: orange; }
</style>
</head>
<body>
<h1>Opto-Incubator</h1>

<h2>Chamber</h2>
<table>
{{if .HasSample}}
<tr><th>Temperature</th><td>{{printf "%.2f" .Last.TempC}} C (target {{printf "%.1f" .Config.TargetTempC}})</td></tr>
<tr><th>Humidity</th><td>{{printf "%.1f" .Last.HumidityPct}} %</td></tr>
<tr><th>CO2</th><td>{{printf "%.2f" .Last.CO2Pct}} % (target {{printf "%.1f" .Config.TargetCO2Pct}})</td></tr>
<tr><th>Heater pulse</th><td>{{ms .Last.HeaterPulse}}ms</td></tr>
<tr><th>Valve pulse</th><td>{{ms .Last.ValvePulse}}ms</td></tr>
<tr><th>Sampled</th><td>{{.Last.Time.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
{{else}}
<tr><th>Sample</th><td class="stale">no completed cycle yet</td></tr>
{{end}}
</table>

<h2>Connectivity</h2>
<table>
{{if .Config.Broker}}
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{else}}
<tr><th>MQTT</th><td>disabled</td></tr>
{{end}}
{{if .Config.SerialDevice}}<tr><th>Serial</th><td>{{.Config.SerialDevice}}</td></tr>{{end}}
</table>

<h2>Counters</h2>
<table>
<tr><th>Cycles</th><td>{{.Counts.Cycles}}</td></tr>
<tr><th>Skipped cycles</th><td>{{.Counts.SkippedCycles}}</td></tr>
<tr><th>Recalibrations</th><td>{{.Counts.Recalibrations}}</td></tr>
<tr><th>Calibration errors</th><td>{{.Counts.CalibrationErrors}}</td></tr>
<tr><th>Actuation errors</th><td>{{.Counts.ActuationErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Cycle interval</th><td>{{.Config.MinIntervalMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
{{if .Config.ConfigPath}}<tr><th>Config</th><td>{{.Config.ConfigPath}}</td></tr>{{end}}
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("web: render index: %v", err)
	}
}
