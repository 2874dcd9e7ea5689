package wrappers

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/user/vsce-audit/pkg/engine"
	"github.com/user/vsce-audit/pkg/log"
)

//go:embed rules/vsce-rules.yml
var defaultRules []byte

// maxErrorLen keeps tool error text short enough for the reports.
const maxErrorLen = 200

// ErrTimeout is the error text recorded when semgrep runs out of time.
const ErrTimeout = "timeout"

// SemgrepWrapper runs semgrep over one extension folder.
type SemgrepWrapper struct {
	Path    string // executable name or path
	Rules   string // rule configuration file
	Timeout time.Duration
}

// Prepare writes the bundled ruleset to a temp file when no rules file is
// configured. The returned func removes it.
func (s *SemgrepWrapper) Prepare() (func(), error) {
	if s.Rules != "" {
		return func() {}, nil
	}
	f, err := os.CreateTemp("", "vsce-rules-*.yml")
	if err != nil {
		return nil, fmt.Errorf("creating rules file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(defaultRules); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("writing rules file: %w", err)
	}
	s.Rules = f.Name()
	log.Debugf("Using bundled semgrep rules at %s", s.Rules)
	return func() { os.Remove(f.Name()) }, nil
}

// Analyze never fails: a missing binary, a timeout or unusable output all come
// back as an empty finding list with Error set.
func (s *SemgrepWrapper) Analyze(ctx context.Context, target string) engine.AnalysisResult {
	bin, err := exec.LookPath(s.binary())
	if err != nil {
		return engine.AnalysisResult{Findings: []engine.Finding{}, Error: "semgrep not found in PATH"}
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// argv only, no shell: target is a directory name we do not control
	cmd := exec.CommandContext(ctx, bin, "--quiet", "--json", "--config", s.Rules, target)
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debugf("[Semgrep] %s", strings.Join(cmd.Args, " "))
	runErr := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return engine.AnalysisResult{Findings: []engine.Finding{}, Error: ErrTimeout}
	}

	// semgrep exits non-zero in several "findings present" modes, so the
	// output decides, not the exit code.
	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" && runErr != nil {
			msg = runErr.Error()
		}
		if msg == "" {
			msg = "semgrep produced no output"
		}
		return engine.AnalysisResult{Findings: []engine.Finding{}, Error: truncate(msg, maxErrorLen)}
	}

	findings, err := ParseSemgrepJSON(out)
	if err != nil {
		return engine.AnalysisResult{Findings: []engine.Finding{}, Error: fmt.Sprintf("semgrep parse error: %v", err)}
	}
	return engine.AnalysisResult{Findings: findings}
}

func (s *SemgrepWrapper) binary() string {
	if s.Path == "" {
		return "semgrep"
	}
	return s.Path
}

// ParseSemgrepJSON keeps only the "results" array of semgrep's JSON output.
func ParseSemgrepJSON(data []byte) ([]engine.Finding, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON output")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errors.New("output is not a JSON object")
	}

	// gjson's Array() wraps a scalar or object as a one-element slice, so the
	// type is checked before iterating (same as capability arrays in
	// engine.ParseManifest).
	results := doc.Get("results")
	if results.Exists() && !results.IsArray() {
		return nil, errors.New("results is not an array")
	}

	findings := make([]engine.Finding, 0)
	for _, r := range results.Array() {
		f := engine.Finding{
			RuleID:   firstString(r, "check_id", "rule_id"),
			Message:  firstString(r, "extra.message", "msg"),
			Path:     r.Get("path").String(),
			Line:     int(r.Get("start.line").Int()),
			Severity: r.Get("extra.severity").String(),
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if s := r.Get(p).String(); s != "" {
			return s
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
