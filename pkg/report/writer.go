// Package report writes scan results to the output directory: one JSON file
// per extension, the consolidated report.json, blocklist.csv and index.html.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/user/vsce-audit/pkg/engine"
)

const (
	ReportFile    = "report.json"
	BlocklistFile = "blocklist.csv"
	DashboardFile = "index.html"
)

// Writer emits reports under OutDir.
type Writer struct {
	OutDir string
}

// NewWriter creates outDir if needed.
func NewWriter(outDir string) (*Writer, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{OutDir: outDir}, nil
}

// WriteExtension writes <out>/<folder>/report.json.
func (w *Writer) WriteExtension(r engine.ExtensionReport) error {
	dir := filepath.Join(w.OutDir, r.FolderName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, ReportFile), r)
}

// WriteConsolidated writes <out>/report.json.
func (w *Writer) WriteConsolidated(g engine.GlobalReport) error {
	return writeJSON(filepath.Join(w.OutDir, ReportFile), g)
}

// WriteAll writes the consolidated outputs. A failure in one does not stop
// the others; all failures are returned together.
func (w *Writer) WriteAll(g engine.GlobalReport) error {
	return multierr.Combine(
		w.WriteConsolidated(g),
		w.WriteBlocklist(g.Reports),
		w.WriteDashboard(g),
	)
}

// Paths lists the consolidated output files.
func (w *Writer) Paths() (report, blocklist, dashboard string) {
	return filepath.Join(w.OutDir, ReportFile),
		filepath.Join(w.OutDir, BlocklistFile),
		filepath.Join(w.OutDir, DashboardFile)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// LoadGlobal reads a consolidated report.json back.
func LoadGlobal(path string) (engine.GlobalReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.GlobalReport{}, err
	}
	var g engine.GlobalReport
	if err := json.Unmarshal(data, &g); err != nil {
		return engine.GlobalReport{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return g, nil
}
