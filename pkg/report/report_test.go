package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/user/vsce-audit/pkg/engine"
)

func sampleGlobal() engine.GlobalReport {
	mk := func(folder, name string, score int) engine.ExtensionReport {
		return engine.ExtensionReport{
			ExtensionName:   name,
			FolderName:      folder,
			PublisherField:  "pub-" + folder,
			PublisherInfo:   engine.PublisherInfo{DisplayName: "Pub " + folder},
			License:         "MIT",
			Capabilities:    "None",
			SemgrepFindings: []engine.Finding{},
			Categories:      engine.Categorize(nil),
			GDPRStatus:      engine.StatusPass,
			FinalScore:      score,
			Reason:          "reason " + folder,
		}
	}
	return engine.GlobalReport{
		GeneratedAt:       "2024-05-01T10:00:00.000000Z",
		ExtensionsScanned: 4,
		Reports: []engine.ExtensionReport{
			mk("mid", "mid", 6),
			mk("low", `<script>alert("x")</script>`, 2),
			mk("top", "top", 9),
			mk("edge", "edge", 4),
		},
		Errors: []engine.ScanError{},
	}
}

func TestWriteExtension(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	r := sampleGlobal().Reports[0]
	if err := w.WriteExtension(r); err != nil {
		t.Fatalf("WriteExtension: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(w.OutDir, "mid", ReportFile))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"folder_name": "mid"`, `"semgrep_findings": []`, `"semgrep_error": null`, `"other": []`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("extension report missing %s:\n%s", want, data)
		}
	}
}

func TestWriteAll(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	g := sampleGlobal()
	if err := w.WriteAll(g); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	reportPath, blocklistPath, dashboardPath := w.Paths()

	loaded, err := LoadGlobal(reportPath)
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if diff := cmp.Diff(g, loaded); diff != "" {
		t.Errorf("consolidated report mismatch (-want +got):\n%s", diff)
	}

	f, err := os.Open(blocklistPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading blocklist: %v", err)
	}
	wantRows := [][]string{
		{"extension_name", "folder_name", "publisher", "final_score", "reason"},
		{`<script>alert("x")</script>`, "low", "pub-low", "2", "reason low"},
		{"edge", "edge", "pub-edge", "4", "reason edge"},
	}
	if diff := cmp.Diff(wantRows, rows); diff != "" {
		t.Errorf("blocklist mismatch (-want +got):\n%s", diff)
	}

	html, err := os.ReadFile(dashboardPath)
	if err != nil {
		t.Fatal(err)
	}
	page := string(html)
	if strings.Contains(page, "<script>") {
		t.Error("dashboard contains an unescaped extension name")
	}
	if !strings.Contains(page, "&lt;script&gt;") {
		t.Error("dashboard missing escaped extension name")
	}
	top := strings.Index(page, `<td>top</td>`)
	mid := strings.Index(page, `<td>mid</td>`)
	edge := strings.Index(page, `<td>edge</td>`)
	if top < 0 || mid < 0 || edge < 0 || !(top < mid && mid < edge) {
		t.Errorf("dashboard rows not sorted by descending score (top=%d mid=%d edge=%d)", top, mid, edge)
	}
	for _, want := range []string{`<tr class="good"><td>top</td>`, `<tr class="warn"><td>mid</td>`, `<tr class="bad"><td>edge</td>`, `href="top/report.json"`} {
		if !strings.Contains(page, want) {
			t.Errorf("dashboard missing %s", want)
		}
	}
}

func TestScoreClass(t *testing.T) {
	for score, want := range map[int]string{10: "good", 8: "good", 7: "warn", 5: "warn", 4: "bad", 1: "bad"} {
		if got := ScoreClass(score); got != want {
			t.Errorf("ScoreClass(%d) = %q, want %q", score, got, want)
		}
	}
}

func TestBuildDashboardStableForTies(t *testing.T) {
	g := engine.GlobalReport{Reports: []engine.ExtensionReport{
		{FolderName: "b", FinalScore: 5},
		{FolderName: "a", FinalScore: 5},
		{FolderName: "c", FinalScore: 7},
	}}
	var got []string
	for _, r := range buildDashboard(g).Rows {
		got = append(got, r.Folder)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, got); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}
	if g.Reports[0].FolderName != "b" {
		t.Error("buildDashboard reordered the input reports")
	}
}
