package engine

// ScoreChange is an extension whose score moved between two runs.
type ScoreChange struct {
	Folder string `json:"folder"`
	Name   string `json:"name"`
	Before int    `json:"before"`
	After  int    `json:"after"`
}

// ReportDiff compares a baseline report.json with a newer one.
type ReportDiff struct {
	New          []ExtensionReport `json:"new"`
	Removed      []ExtensionReport `json:"removed"`
	Changed      []ScoreChange     `json:"changed"`
	NewlyBlocked []ExtensionReport `json:"newly_blocked"`
	Unblocked    []ExtensionReport `json:"unblocked"`
}

// CompareReports matches extensions by folder name. Output follows the
// enumeration order of current, then baseline for removed extensions.
func CompareReports(baseline, current GlobalReport) ReportDiff {
	before := make(map[string]ExtensionReport, len(baseline.Reports))
	for _, r := range baseline.Reports {
		before[r.FolderName] = r
	}
	seen := make(map[string]bool, len(current.Reports))

	var d ReportDiff
	for _, r := range current.Reports {
		seen[r.FolderName] = true
		old, ok := before[r.FolderName]
		if !ok {
			d.New = append(d.New, r)
			if r.Blocked() {
				d.NewlyBlocked = append(d.NewlyBlocked, r)
			}
			continue
		}
		if old.FinalScore != r.FinalScore {
			d.Changed = append(d.Changed, ScoreChange{
				Folder: r.FolderName,
				Name:   r.ExtensionName,
				Before: old.FinalScore,
				After:  r.FinalScore,
			})
		}
		switch {
		case r.Blocked() && !old.Blocked():
			d.NewlyBlocked = append(d.NewlyBlocked, r)
		case !r.Blocked() && old.Blocked():
			d.Unblocked = append(d.Unblocked, r)
		}
	}

	for _, r := range baseline.Reports {
		if !seen[r.FolderName] {
			d.Removed = append(d.Removed, r)
		}
	}
	return d
}

// Empty reports whether nothing changed.
func (d ReportDiff) Empty() bool {
	return len(d.New) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0 &&
		len(d.NewlyBlocked) == 0 && len(d.Unblocked) == 0
}
