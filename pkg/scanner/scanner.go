// Package scanner runs the compliance pipeline over a directory of unpacked
// extensions, one extension at a time.
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/user/vsce-audit/pkg/engine"
	"github.com/user/vsce-audit/pkg/log"
)

// PublisherLookup returns reputation data for a publisher. Implementations
// degrade instead of failing.
type PublisherLookup interface {
	Lookup(ctx context.Context, publisher string) engine.PublisherInfo
}

// Analyzer runs static analysis over an extension folder. Implementations
// degrade instead of failing.
type Analyzer interface {
	Analyze(ctx context.Context, target string) engine.AnalysisResult
}

// Sink receives each report as soon as it is built.
type Sink interface {
	WriteExtension(r engine.ExtensionReport) error
}

// Scanner holds the external collaborators of the pipeline.
type Scanner struct {
	Publishers PublisherLookup
	Analyzer   Analyzer
	Sink       Sink             // optional
	Now        func() time.Time // defaults to time.Now
}

func (s *Scanner) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run scans every extension under dir. An unreadable dir or a cancelled ctx is
// an error; everything that goes wrong for a single extension ends up in the
// batch. On cancellation the per-extension reports already written are kept
// and no batch is returned.
func (s *Scanner) Run(ctx context.Context, dir string) (*engine.Batch, error) {
	records, skipped, err := Enumerate(dir)
	if err != nil {
		return nil, err
	}

	batch := engine.NewBatch()
	for _, se := range skipped {
		log.Warnf("Skipping %s: %s", se.Extension, se.Error)
		batch.Errors = append(batch.Errors, se)
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan interrupted before %s: %w", rec.Folder, err)
		}
		log.Infof("Processing %s", rec.Folder)
		r := s.ScanExtension(ctx, rec)
		// a report built while ctx was being cancelled carries degraded data
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan interrupted during %s: %w", rec.Folder, err)
		}
		if s.Sink != nil {
			if err := s.Sink.WriteExtension(r); err != nil {
				log.Warnf("Could not write report for %s: %v", rec.Folder, err)
			}
		}
		log.Debugf("%s scored %d (%s)", rec.Folder, r.FinalScore, r.Reason)
		batch.Add(r)
	}
	return batch, nil
}

// ScanExtension runs lookup, license, analysis and scoring for one extension.
func (s *Scanner) ScanExtension(ctx context.Context, rec engine.ExtensionRecord) engine.ExtensionReport {
	pub := s.lookup(ctx, rec.Publisher)
	lic := engine.ClassifyLicense(rec.DeclaredLicense, rec.Dir)

	analysis := s.analyze(ctx, rec.Dir)
	cats := engine.Categorize(analysis.Findings)
	gdpr := engine.AssessCompliance(cats)

	in := engine.ScoreInputs{
		License:      lic,
		Compliance:   gdpr,
		Verified:     pub.Verified,
		FindingCount: len(analysis.Findings),
		RCECount:     len(cats.RCE),
		ToolError:    analysis.Error,
	}

	r := engine.ExtensionReport{
		ExtensionDir:         rec.Dir,
		ExtensionName:        rec.Name,
		FolderName:           rec.Folder,
		PublisherField:       rec.Publisher,
		PublisherInfo:        pub,
		License:              lic.License,
		LicenseReason:        lic.Reason,
		LicenseScore:         lic.Score,
		Capabilities:         engine.ExtractCapabilities(rec.Capabilities),
		SemgrepFindingsCount: len(analysis.Findings),
		SemgrepFindings:      analysis.Findings,
		Categories:           cats,
		GDPRStatus:           gdpr.Status,
		GDPRReason:           gdpr.Reason,
		GDPRScore:            gdpr.Score,
		FinalScore:           in.Score(),
		Reason:               in.Reason(),
		Timestamp:            engine.Timestamp(s.now()),
	}
	if analysis.Error != "" {
		msg := analysis.Error
		r.SemgrepError = &msg
	}
	return r
}

func (s *Scanner) lookup(ctx context.Context, publisher string) engine.PublisherInfo {
	if s.Publishers == nil {
		return engine.UnverifiedPublisher(publisher, nil)
	}
	return s.Publishers.Lookup(ctx, publisher)
}

func (s *Scanner) analyze(ctx context.Context, dir string) engine.AnalysisResult {
	if s.Analyzer == nil {
		return engine.AnalysisResult{Findings: []engine.Finding{}, Error: "no analyzer configured"}
	}
	res := s.Analyzer.Analyze(ctx, dir)
	if res.Findings == nil {
		res.Findings = []engine.Finding{}
	}
	return res
}
