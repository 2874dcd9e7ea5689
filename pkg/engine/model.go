package engine

import "time"

// TimestampLayout is ISO-8601 UTC with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Timestamp formats t in TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Capability is one capability-describing manifest key that is present.
type Capability struct {
	Key string
	// Count is the element count when the value is a JSON array, -1 otherwise.
	Count int
}

// ExtensionRecord is what gets loaded from an extension folder's package.json.
type ExtensionRecord struct {
	Dir             string
	Folder          string
	Name            string
	Publisher       string
	DeclaredLicense string
	Capabilities    []Capability
}

// PublisherInfo comes from the marketplace lookup, or the unverified default.
type PublisherInfo struct {
	Verified    bool   `json:"verified"`
	Installs    int64  `json:"installs"`
	DisplayName string `json:"displayName"`
	Error       string `json:"error,omitempty"`
}

// UnverifiedPublisher is the degraded record used whenever a lookup fails.
func UnverifiedPublisher(publisher string, err error) PublisherInfo {
	if publisher == "" {
		publisher = "unknown"
	}
	info := PublisherInfo{DisplayName: publisher}
	if err != nil {
		info.Error = err.Error()
	}
	return info
}

// ComplianceAssessment is the GDPR-oriented review verdict.
type ComplianceAssessment struct {
	Status string
	Reason string
	Score  int
}

const (
	StatusPass   = "PASS"
	StatusReview = "REVIEW"
)

// ExtensionReport is the unit of output, one per scanned extension.
type ExtensionReport struct {
	ExtensionDir         string        `json:"extension_dir"`
	ExtensionName        string        `json:"extension_name"`
	FolderName           string        `json:"folder_name"`
	PublisherField       string        `json:"publisher_field"`
	PublisherInfo        PublisherInfo `json:"publisher_info"`
	License              string        `json:"license"`
	LicenseReason        string        `json:"license_reason"`
	LicenseScore         int           `json:"license_score"`
	Capabilities         string        `json:"capabilities"`
	SemgrepFindingsCount int           `json:"semgrep_findings_count"`
	SemgrepFindings      []Finding     `json:"semgrep_findings"`
	SemgrepError         *string       `json:"semgrep_error"`
	Categories           Categories    `json:"categories"`
	GDPRStatus           string        `json:"gdpr_status"`
	GDPRReason           string        `json:"gdpr_reason"`
	GDPRScore            int           `json:"gdpr_score"`
	FinalScore           int           `json:"final_score"`
	Reason               string        `json:"reason"`
	Timestamp            string        `json:"timestamp"`
}

// Blocked reports whether the extension belongs on the blocklist.
func (r ExtensionReport) Blocked() bool {
	return IsBlocked(r.FinalScore)
}

// ScanError records an extension that was skipped entirely.
type ScanError struct {
	Extension string `json:"extension"`
	Error     string `json:"error"`
}

// GlobalReport is the consolidated report.json.
type GlobalReport struct {
	GeneratedAt       string            `json:"generated_at"`
	ExtensionsScanned int               `json:"extensions_scanned"`
	Reports           []ExtensionReport `json:"reports"`
	Errors            []ScanError       `json:"errors"`
}
