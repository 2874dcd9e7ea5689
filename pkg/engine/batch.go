package engine

import (
	"fmt"
	"time"
)

// Batch accumulates the results of one run in enumeration order.
type Batch struct {
	Reports []ExtensionReport
	Errors  []ScanError
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{
		Reports: make([]ExtensionReport, 0),
		Errors:  make([]ScanError, 0),
	}
}

// Add appends a finished report.
func (b *Batch) Add(r ExtensionReport) {
	b.Reports = append(b.Reports, r)
}

// AddError records an extension that had to be skipped.
func (b *Batch) AddError(extension string, err error) {
	b.Errors = append(b.Errors, ScanError{Extension: extension, Error: err.Error()})
}

// Blocklisted returns the reports with a blocking score, in enumeration order.
func (b *Batch) Blocklisted() []ExtensionReport {
	return BlocklistOf(b.Reports)
}

// Global builds the consolidated report.
func (b *Batch) Global(generatedAt time.Time) GlobalReport {
	return GlobalReport{
		GeneratedAt:       Timestamp(generatedAt),
		ExtensionsScanned: len(b.Reports),
		Reports:           b.Reports,
		Errors:            b.Errors,
	}
}

// Summary is a one-line description for the console.
func (b *Batch) Summary() string {
	return fmt.Sprintf("%d extensions scanned, %d blocklisted, %d skipped",
		len(b.Reports), len(b.Blocklisted()), len(b.Errors))
}

// BlocklistOf filters reports down to the blocklisted ones, preserving order.
func BlocklistOf(reports []ExtensionReport) []ExtensionReport {
	var out []ExtensionReport
	for _, r := range reports {
		if r.Blocked() {
			out = append(out, r)
		}
	}
	return out
}
