package engine

import "strings"

// AssessCompliance flags extensions that send telemetry or move user data.
func AssessCompliance(c Categories) ComplianceAssessment {
	var flags []string
	if len(c.Telemetry) > 0 {
		flags = append(flags, "telemetry")
	}
	if len(c.DataHandling) > 0 {
		flags = append(flags, "data_transfer")
	}
	if len(flags) > 0 {
		return ComplianceAssessment{StatusReview, "Flags: " + strings.Join(flags, ", "), 5}
	}
	return ComplianceAssessment{StatusPass, "No telemetry/data-transfer detected", 10}
}
