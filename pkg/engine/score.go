package engine

import (
	"fmt"
	"math"
	"strings"
)

const (
	MinScore = 1
	MaxScore = 10

	// BlocklistThreshold is the highest score that still lands on the blocklist.
	BlocklistThreshold = 4
	// GoodThreshold is the lowest score shown as "good" on the dashboard.
	GoodThreshold = 8
)

// ComputeScore combines the sub-scores and penalties into a 1..10 score.
// Rounding happens once, after clamping, with ties going to the even integer.
func ComputeScore(licenseScore, gdprScore int, verifiedPublisher bool, findingCount, rceCount int) int {
	base := float64(licenseScore+gdprScore) / 2.0
	if !verifiedPublisher {
		base -= 2
	}
	switch {
	case findingCount > 10:
		base -= 3
	case findingCount > 3:
		base -= 1
	}
	if rceCount > 0 {
		base -= 3
	}
	return int(math.RoundToEven(math.Max(MinScore, math.Min(MaxScore, base))))
}

// IsBlocked reports whether score puts an extension on the blocklist.
func IsBlocked(score int) bool {
	return score <= BlocklistThreshold
}

// ScoreInputs is everything that feeds the final score and its reason string.
type ScoreInputs struct {
	License      LicenseAssessment
	Compliance   ComplianceAssessment
	Verified     bool
	FindingCount int
	RCECount     int
	ToolError    string
}

// Score returns the final score.
func (in ScoreInputs) Score() int {
	return ComputeScore(in.License.Score, in.Compliance.Score, in.Verified, in.FindingCount, in.RCECount)
}

// Reason concatenates the human-readable reasons behind the score.
func (in ScoreInputs) Reason() string {
	reasons := []string{in.License.Reason, in.Compliance.Reason}
	if !in.Verified {
		reasons = append(reasons, "Unverified publisher")
	}
	if in.FindingCount > 0 {
		reasons = append(reasons, fmt.Sprintf("%d semgrep findings", in.FindingCount))
	}
	if in.RCECount > 0 {
		reasons = append(reasons, fmt.Sprintf("%d RCE-like findings", in.RCECount))
	}
	if in.ToolError != "" {
		reasons = append(reasons, "semgrep error: "+in.ToolError)
	}
	return strings.Join(reasons, "; ")
}
