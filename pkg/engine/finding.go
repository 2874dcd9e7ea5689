package engine

// Finding is a single semgrep result reduced to the fields the scorer reads.
type Finding struct {
	RuleID   string `json:"rule_id"`
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`
	Line     int    `json:"line,omitempty"`
	Severity string `json:"severity,omitempty"` // INFO / WARNING / ERROR as reported by semgrep
}

// Label is what gets listed in a category bucket: the message, or the rule id
// when the rule has no message.
func (f Finding) Label() string {
	if f.Message != "" {
		return f.Message
	}
	return f.RuleID
}

// AnalysisResult is what one static-analysis run produced. Error is empty on
// success; on failure Findings is empty but non-nil.
type AnalysisResult struct {
	Findings []Finding
	Error    string
}
