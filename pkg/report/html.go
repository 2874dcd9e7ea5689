package report

import (
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/vsce-audit/pkg/engine"
)

// html/template escapes every field; names, reasons and finding messages all
// come from the scanned extensions.
var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>VSCode Extensions Compliance Dashboard</title>
<style>body{font-family:Arial,Helvetica,sans-serif;margin:20px}table{border-collapse:collapse;width:100%}th,td{border:1px solid #ddd;padding:8px}th{background:#f2f2f2} .good{background:#e6ffed} .warn{background:#fff6e6} .bad{background:#ffe6e6} pre{white-space:pre-wrap;word-break:break-word}</style>
</head><body>
<h2>VSCode Extension Compliance Dashboard — {{.GeneratedAt}}</h2>
<p>Scanned {{.Scanned}} extensions. <a href="report.json">Download JSON report</a> • <a href="blocklist.csv">Blocklist CSV</a></p>
<table><thead><tr><th>Extension</th><th>Publisher</th><th>Verified</th><th>License</th><th>GDPR</th><th>Telemetry</th><th>Data Handling</th><th>RCE Risk</th><th>Capabilities</th><th>Score</th><th>Reason</th><th>Report</th></tr></thead><tbody>
{{- range .Rows}}
<tr class="{{.Class}}"><td>{{.Name}}</td><td>{{.Publisher}}</td><td>{{.Verified}}</td><td>{{.License}}</td><td>{{.GDPR}}</td><td>{{.Telemetry}}</td><td>{{.DataHandling}}</td><td>{{.RCE}}</td><td>{{.Capabilities}}</td><td>{{.Score}}</td><td>{{.Reason}}</td><td><a href="{{.Folder}}/report.json" target="_blank">report.json</a></td></tr>
{{- end}}
</tbody></table>
<h3>Notes</h3>
<ul><li>Score: 10 = safest; 1 = highest risk. Scores are heuristic. Manual review required for any non-10.</li>
<li>RCE Risk flagged when semgrep rules detect eval/child_process/vm/dynamic-require patterns — inspect each match.</li>
<li>Telemetry/data handling flags indicate potential personal data transfer — required GDPR review if present.</li>
</ul>
</body></html>
`))

type dashboardRow struct {
	Class        string
	Name         string
	Publisher    string
	Verified     string
	License      string
	GDPR         string
	Telemetry    string
	DataHandling string
	RCE          string
	Capabilities string
	Score        int
	Reason       string
	Folder       string
}

type dashboardData struct {
	GeneratedAt string
	Scanned     int
	Rows        []dashboardRow
}

// ScoreClass maps a score to the dashboard row class.
func ScoreClass(score int) string {
	switch {
	case score >= engine.GoodThreshold:
		return "good"
	case engine.IsBlocked(score):
		return "bad"
	}
	return "warn"
}

// WriteDashboard writes index.html with the highest scores first. The sort is
// for display only; report.json keeps enumeration order.
func (w *Writer) WriteDashboard(g engine.GlobalReport) error {
	f, err := os.Create(filepath.Join(w.OutDir, DashboardFile))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := dashboardTmpl.Execute(f, buildDashboard(g)); err != nil {
		return err
	}
	return f.Close()
}

func buildDashboard(g engine.GlobalReport) dashboardData {
	sorted := make([]engine.ExtensionReport, len(g.Reports))
	copy(sorted, g.Reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FinalScore > sorted[j].FinalScore
	})

	data := dashboardData{GeneratedAt: g.GeneratedAt, Scanned: len(g.Reports)}
	for _, r := range sorted {
		data.Rows = append(data.Rows, dashboardRow{
			Class:        ScoreClass(r.FinalScore),
			Name:         r.ExtensionName,
			Publisher:    r.PublisherInfo.DisplayName,
			Verified:     yesNo(r.PublisherInfo.Verified),
			License:      r.License,
			GDPR:         r.GDPRStatus,
			Telemetry:    joinOrNone(r.Categories.Telemetry),
			DataHandling: joinOrNone(r.Categories.DataHandling),
			RCE:          yesNo(len(r.Categories.RCE) > 0),
			Capabilities: r.Capabilities,
			Score:        r.FinalScore,
			Reason:       r.Reason,
			Folder:       r.FolderName,
		})
	}
	return data
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
