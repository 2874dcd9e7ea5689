package engine

import (
	"errors"
	"testing"
	"time"
)

func TestBatchGlobalKeepsEnumerationOrder(t *testing.T) {
	b := NewBatch()
	b.Add(rep("zeta", 9))
	b.Add(rep("alpha", 2))
	b.AddError("broken", errors.New("package.json read error: invalid JSON"))
	b.Add(rep("mid", 4))

	g := b.Global(time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC))
	if g.GeneratedAt != "2024-05-01T10:00:00.123456Z" {
		t.Errorf("GeneratedAt = %q", g.GeneratedAt)
	}
	if g.ExtensionsScanned != 3 {
		t.Errorf("ExtensionsScanned = %d, want 3", g.ExtensionsScanned)
	}
	var order []string
	for _, r := range g.Reports {
		order = append(order, r.FolderName)
	}
	if got, want := len(order), 3; got != want || order[0] != "zeta" || order[1] != "alpha" || order[2] != "mid" {
		t.Errorf("report order = %v, want [zeta alpha mid]", order)
	}
	if len(g.Errors) != 1 || g.Errors[0].Extension != "broken" {
		t.Errorf("Errors = %+v", g.Errors)
	}

	blocked := b.Blocklisted()
	if len(blocked) != 2 || blocked[0].FolderName != "alpha" || blocked[1].FolderName != "mid" {
		t.Errorf("Blocklisted() = %+v, want alpha, mid", blocked)
	}
	if got, want := b.Summary(), "3 extensions scanned, 2 blocklisted, 1 skipped"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
