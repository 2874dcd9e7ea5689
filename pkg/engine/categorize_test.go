package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCategorize(t *testing.T) {
	findings := []Finding{
		{RuleID: "vsce.telemetry.machine-id", Message: "Reads vscode.env.machineId"},
		{RuleID: "vsce.rce.child-process", Message: "Spawns a process via child_process"},
		{RuleID: "vsce.fs.ssh-keys", Message: "Reads ~/.ssh keys"},
		{RuleID: "xhr.post(payload)", Message: ""},
		{RuleID: "generic", Message: "Uses fetch to POST data"},
	}

	got := Categorize(findings)
	want := Categories{
		Telemetry:    []string{"Reads vscode.env.machineId"},
		DataHandling: []string{"xhr.post(payload)", "Uses fetch to POST data"},
		RCE:          []string{"Spawns a process via child_process"},
		Network:      []string{"Uses fetch to POST data"},
		Filesystem:   []string{"Reads ~/.ssh keys"},
		Other: []string{
			"Reads vscode.env.machineId",
			"Spawns a process via child_process",
			"xhr.post(payload)",
			"Uses fetch to POST data",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Categorize() mismatch (-want +got):\n%s", diff)
	}
}

func TestCategorizeSubstringQuirks(t *testing.T) {
	// "ws" matches inside "shows", "vm" inside "vmware", "fs" inside "offset".
	got := Categorize([]Finding{{RuleID: "x", Message: "Shows vmware offset"}})
	if len(got.Network) != 1 || len(got.RCE) != 1 || len(got.Filesystem) != 1 {
		t.Errorf("Categorize() = %+v, want one network, rce and filesystem entry", got)
	}
	if len(got.Other) != 0 {
		t.Errorf("Other = %v, want empty when the filesystem test matches", got.Other)
	}
}

func TestCategorizeEmpty(t *testing.T) {
	got := Categorize(nil)
	if diff := cmp.Diff(newCategories(), got); diff != "" {
		t.Errorf("Categorize(nil) mismatch (-want +got):\n%s", diff)
	}
	if got.Other == nil {
		t.Error("empty buckets must be non-nil so they serialize as []")
	}
}

func TestAssessCompliance(t *testing.T) {
	tests := []struct {
		name string
		cats Categories
		want ComplianceAssessment
	}{
		{"clean", newCategories(), ComplianceAssessment{StatusPass, "No telemetry/data-transfer detected", 10}},
		{"telemetry", Categories{Telemetry: []string{"t"}}, ComplianceAssessment{StatusReview, "Flags: telemetry", 5}},
		{"both", Categories{Telemetry: []string{"t"}, DataHandling: []string{"d"}}, ComplianceAssessment{StatusReview, "Flags: telemetry, data_transfer", 5}},
		{"network only", Categories{Network: []string{"n"}}, ComplianceAssessment{StatusPass, "No telemetry/data-transfer detected", 10}},
	}
	for _, tc := range tests {
		if diff := cmp.Diff(tc.want, AssessCompliance(tc.cats)); diff != "" {
			t.Errorf("%s: AssessCompliance() mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestExtractCapabilities(t *testing.T) {
	tests := []struct {
		caps []Capability
		want string
	}{
		{nil, "None"},
		{[]Capability{{Key: "activationEvents", Count: 3}, {Key: "contributes", Count: -1}, {Key: "main", Count: -1}}, "activationEvents(3), contributes, main"},
		{[]Capability{{Key: "activationEvents", Count: -1}}, "activationEvents"},
		{[]Capability{{Key: "browser", Count: 2}}, "browser"},
	}
	for _, tc := range tests {
		if got := ExtractCapabilities(tc.caps); got != tc.want {
			t.Errorf("ExtractCapabilities(%v) = %q, want %q", tc.caps, got, tc.want)
		}
	}
}
