package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	if err := cfg.Set("semgrep.timeout", "90s"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("marketplace.disabled", "true"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("history.path", "/tmp/h.db"); err != nil {
		t.Fatal(err)
	}
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Semgrep.Timeout != 90*time.Second {
		t.Errorf("Semgrep.Timeout = %v, want 90s", got.Semgrep.Timeout)
	}
	if !got.Marketplace.Disabled {
		t.Error("Marketplace.Disabled = false, want true")
	}
	if p, _ := got.HistoryPath(); p != "/tmp/h.db" {
		t.Errorf("HistoryPath() = %q, want /tmp/h.db", p)
	}
}

func TestSetRejectsBadValues(t *testing.T) {
	cfg := Default()
	for _, tc := range []struct{ key, value string }{
		{"semgrep.timeout", "soon"},
		{"history.enabled", "maybe"},
		{"no.such.key", "x"},
	} {
		if err := cfg.Set(tc.key, tc.value); err == nil {
			t.Errorf("Set(%q, %q) succeeded, want error", tc.key, tc.value)
		}
	}
}
