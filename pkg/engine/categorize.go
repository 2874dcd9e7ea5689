package engine

import "strings"

// Categories buckets findings by risk. A finding can land in several buckets.
type Categories struct {
	Telemetry    []string `json:"telemetry"`
	DataHandling []string `json:"data_handling"`
	RCE          []string `json:"rce"`
	Network      []string `json:"network"`
	Filesystem   []string `json:"filesystem"`
	Other        []string `json:"other"`
}

// Keyword lists, matched as lower-case substrings.
var (
	TelemetryKeywords    = []string{"telemetry", "env.machineid", "sessionid", "appinsights"}
	DataHandlingKeywords = []string{"data upload", "data transfer", "fetch", "post("}
	RCEKeywords          = []string{"eval", "child_process", "vm", "spawn("}
	NetworkKeywords      = []string{"http", "axios", "fetch", "ws"}
	FilesystemKeywords   = []string{"fs", "filesystem", "~/.ssh", "private_key"}
)

func newCategories() Categories {
	return Categories{
		Telemetry:    []string{},
		DataHandling: []string{},
		RCE:          []string{},
		Network:      []string{},
		Filesystem:   []string{},
		Other:        []string{},
	}
}

// Categorize sorts findings into buckets using keyword heuristics over the
// message and rule id.
//
// NOTE: "other" is the else-branch of the filesystem test only, so a telemetry
// finding that does not mention the filesystem is also counted as "other".
// Kept as-is until the intended semantics are confirmed.
func Categorize(findings []Finding) Categories {
	c := newCategories()
	for _, f := range findings {
		text := strings.ToLower(f.Message) + " " + strings.ToLower(f.RuleID)
		label := f.Label()

		if containsAny(text, TelemetryKeywords) {
			c.Telemetry = append(c.Telemetry, label)
		}
		if containsAny(text, DataHandlingKeywords) {
			c.DataHandling = append(c.DataHandling, label)
		}
		if containsAny(text, RCEKeywords) {
			c.RCE = append(c.RCE, label)
		}
		if containsAny(text, NetworkKeywords) {
			c.Network = append(c.Network, label)
		}
		if containsAny(text, FilesystemKeywords) {
			c.Filesystem = append(c.Filesystem, label)
		} else {
			c.Other = append(c.Other, label)
		}
	}
	return c
}
