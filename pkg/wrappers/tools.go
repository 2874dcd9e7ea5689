package wrappers

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/vsce-audit/pkg/engine"
	"github.com/user/vsce-audit/pkg/report"
	"github.com/user/vsce-audit/pkg/store"
)

// ScanResults is the finished scan the assistant tools read from.
type ScanResults struct {
	OutDir string
	Global engine.GlobalReport
}

// LoadScanResults reads <outDir>/report.json.
func LoadScanResults(outDir string) (*ScanResults, error) {
	g, err := report.LoadGlobal(filepath.Join(outDir, report.ReportFile))
	if err != nil {
		return nil, err
	}
	return &ScanResults{OutDir: outDir, Global: g}, nil
}

func (s *ScanResults) find(folder string) (engine.ExtensionReport, bool) {
	for _, r := range s.Global.Reports {
		if r.FolderName == folder {
			return r, true
		}
	}
	// fall back to the manifest name
	for _, r := range s.Global.Reports {
		if strings.EqualFold(r.ExtensionName, folder) {
			return r, true
		}
	}
	return engine.ExtensionReport{}, false
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return strings.TrimSpace(v)
	}
	// gemini sometimes packs everything into "args"
	if v, ok := args["args"].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intArg(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// SummarizeReportTool gives an overview of a scan.
type SummarizeReportTool struct {
	Results *ScanResults
}

func (t *SummarizeReportTool) Name() string { return "SummarizeReport" }

func (t *SummarizeReportTool) Description() string {
	return "Summarizes the scan: number of extensions, score distribution, GDPR review count, semgrep errors and the blocklist."
}

func (t *SummarizeReportTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *SummarizeReportTool) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	if t.Results == nil {
		return "Error: no scan loaded.", nil
	}
	g := t.Results.Global

	var good, warn, bad, review, toolErrors int
	for _, r := range g.Reports {
		switch {
		case r.FinalScore >= engine.GoodThreshold:
			good++
		case r.Blocked():
			bad++
		default:
			warn++
		}
		if r.GDPRStatus == engine.StatusReview {
			review++
		}
		if r.SemgrepError != nil {
			toolErrors++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scan generated at %s: %d extensions scanned, %d skipped.\n", g.GeneratedAt, g.ExtensionsScanned, len(g.Errors))
	fmt.Fprintf(&b, "Scores: %d good (>=%d), %d warn, %d blocklisted (<=%d).\n", good, engine.GoodThreshold, warn, bad, engine.BlocklistThreshold)
	fmt.Fprintf(&b, "GDPR review needed: %d. Semgrep errors: %d.\n", review, toolErrors)

	blocked := engine.BlocklistOf(g.Reports)
	if len(blocked) > 0 {
		b.WriteString("Blocklist:\n")
		for _, r := range blocked {
			fmt.Fprintf(&b, "- %s (%s) score %d: %s\n", r.FolderName, r.ExtensionName, r.FinalScore, r.Reason)
		}
	}
	for _, e := range g.Errors {
		fmt.Fprintf(&b, "Skipped %s: %s\n", e.Extension, e.Error)
	}
	return b.String(), nil
}

// ExtensionDetailTool returns one extension's full report.
type ExtensionDetailTool struct {
	Results *ScanResults
}

func (t *ExtensionDetailTool) Name() string { return "ExtensionDetail" }

func (t *ExtensionDetailTool) Description() string {
	return "Returns the full report of one extension (license, publisher, categories, findings, score and reason)."
}

func (t *ExtensionDetailTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"folder": map[string]interface{}{
				"type":        "string",
				"description": "Folder name of the extension, as listed in the summary.",
			},
		},
		"required": []string{"folder"},
	}
}

func (t *ExtensionDetailTool) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	if t.Results == nil {
		return "Error: no scan loaded.", nil
	}
	folder := stringArg(args, "folder")
	if folder == "" {
		return "Error: folder is required.", nil
	}
	r, ok := t.Results.find(folder)
	if !ok {
		names := make([]string, 0, len(t.Results.Global.Reports))
		for _, r := range t.Results.Global.Reports {
			names = append(names, r.FolderName)
		}
		sort.Strings(names)
		return fmt.Sprintf("No extension %q in this scan. Known folders: %s", folder, strings.Join(names, ", ")), nil
	}
	if progress != nil {
		progress("Reading report for " + r.FolderName)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HistorySource is the part of the history store the assistant reads.
type HistorySource interface {
	History(ctx context.Context, folder string, limit int) ([]store.ScoreRecord, error)
}

// ScoreHistoryTool lists past scores of an extension.
type ScoreHistoryTool struct {
	History HistorySource
}

func (t *ScoreHistoryTool) Name() string { return "ScoreHistory" }

func (t *ScoreHistoryTool) Description() string {
	return "Lists the scores an extension received in previous scans, newest first."
}

func (t *ScoreHistoryTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"folder": map[string]interface{}{
				"type":        "string",
				"description": "Folder name of the extension.",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of runs to return (default 10).",
			},
		},
		"required": []string{"folder"},
	}
}

func (t *ScoreHistoryTool) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	if t.History == nil {
		return "Scan history is disabled.", nil
	}
	folder := stringArg(args, "folder")
	if folder == "" {
		return "Error: folder is required.", nil
	}
	recs, err := t.History.History(ctx, folder, intArg(args, "limit", 10))
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return fmt.Sprintf("No recorded scans for %s.", folder), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Score history for %s:\n", folder)
	for _, r := range recs {
		fmt.Fprintf(&b, "- %s (run %s): score %d, license %s, GDPR %s, %d findings\n",
			r.GeneratedAt, r.RunID, r.FinalScore, r.License, r.GDPRStatus, r.Findings)
	}
	return b.String(), nil
}

// CompareWithBaselineTool diffs the loaded scan against an older report.json.
type CompareWithBaselineTool struct {
	Results *ScanResults
}

func (t *CompareWithBaselineTool) Name() string { return "CompareWithBaseline" }

func (t *CompareWithBaselineTool) Description() string {
	return "Compares this scan with an older report.json to list new, removed, rescored, newly blocked and unblocked extensions."
}

func (t *CompareWithBaselineTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"baseline": map[string]interface{}{
				"type":        "string",
				"description": "Path to the baseline report.json or to its output directory.",
			},
		},
		"required": []string{"baseline"},
	}
}

func (t *CompareWithBaselineTool) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	if t.Results == nil {
		return "Error: no scan loaded.", nil
	}
	path := stringArg(args, "baseline")
	if path == "" {
		return "Error: baseline is required.", nil
	}
	if filepath.Ext(path) != ".json" {
		path = filepath.Join(path, report.ReportFile)
	}
	baseline, err := report.LoadGlobal(path)
	if err != nil {
		return fmt.Sprintf("Error loading baseline: %v", err), nil
	}
	return FormatDiff(engine.CompareReports(baseline, t.Results.Global)), nil
}

// FormatDiff renders a report diff as plain text.
func FormatDiff(d engine.ReportDiff) string {
	if d.Empty() {
		return "No changes between the two scans."
	}
	var b strings.Builder
	section := func(title string, rs []engine.ExtensionReport) {
		if len(rs) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s (%d):\n", title, len(rs))
		for _, r := range rs {
			fmt.Fprintf(&b, "- %s score %d\n", r.FolderName, r.FinalScore)
		}
	}
	section("New", d.New)
	section("Removed", d.Removed)
	if len(d.Changed) > 0 {
		fmt.Fprintf(&b, "Rescored (%d):\n", len(d.Changed))
		for _, c := range d.Changed {
			fmt.Fprintf(&b, "- %s %d -> %d\n", c.Folder, c.Before, c.After)
		}
	}
	section("Newly blocked", d.NewlyBlocked)
	section("Unblocked", d.Unblocked)
	return b.String()
}
