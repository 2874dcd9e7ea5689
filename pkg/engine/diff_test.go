package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func rep(folder string, score int) ExtensionReport {
	return ExtensionReport{FolderName: folder, ExtensionName: folder, FinalScore: score}
}

func TestCompareReports(t *testing.T) {
	baseline := GlobalReport{Reports: []ExtensionReport{
		rep("same", 8),
		rep("gone", 3),
		rep("worse", 6),
		rep("better", 2),
	}}
	current := GlobalReport{Reports: []ExtensionReport{
		rep("same", 8),
		rep("worse", 4),
		rep("better", 7),
		rep("fresh", 1),
	}}

	got := CompareReports(baseline, current)
	want := ReportDiff{
		New:     []ExtensionReport{rep("fresh", 1)},
		Removed: []ExtensionReport{rep("gone", 3)},
		Changed: []ScoreChange{
			{Folder: "worse", Name: "worse", Before: 6, After: 4},
			{Folder: "better", Name: "better", Before: 2, After: 7},
		},
		NewlyBlocked: []ExtensionReport{rep("worse", 4), rep("fresh", 1)},
		Unblocked:    []ExtensionReport{rep("better", 7)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CompareReports() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareReportsIdentical(t *testing.T) {
	r := GlobalReport{Reports: []ExtensionReport{rep("a", 5), rep("b", 2)}}
	if d := CompareReports(r, r); !d.Empty() {
		t.Errorf("CompareReports(r, r) = %+v, want empty", d)
	}
}
