package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// License categories detected from file content.
const (
	LicenseMIT        = "MIT"
	LicenseApache     = "Apache-2.0"
	LicenseBSD        = "BSD"
	LicenseISC        = "ISC"
	LicenseGPL        = "GPL"
	LicenseAGPL       = "AGPL"
	LicenseCustom     = "Custom"
	LicenseMissing    = "Missing"
	LicenseUnreadable = "Unreadable"
)

// LicenseFiles are checked in this order; the first one that exists is used.
var LicenseFiles = []string{"LICENSE", "LICENSE.txt", "LICENSE.md", "license.txt", "license"}

// LicenseAssessment is the outcome of ClassifyLicense.
type LicenseAssessment struct {
	License string
	Reason  string
	Score   int
}

type contentRule struct {
	all     []string // every phrase must appear
	any     []string // at least one phrase must appear, when set
	license string
	reason  string
	score   int
}

// Order matters. GPL is tested before AGPL, so AGPL texts quoting the GNU GPL
// phrase come out as GPL.
var contentRules = []contentRule{
	{all: []string{"permission is hereby granted, free of charge"}, license: LicenseMIT, reason: "MIT license detected by content", score: 10},
	{all: []string{"apache license", "version 2"}, license: LicenseApache, reason: "Apache License 2.0 detected by content", score: 10},
	{all: []string{"redistribution and use in source and binary forms", "bsd"}, license: LicenseBSD, reason: "BSD-style license detected by content", score: 9},
	{any: []string{"isc license", "the isc license"}, license: LicenseISC, reason: "ISC license detected by content", score: 9},
	{all: []string{"gnu general public license"}, license: LicenseGPL, reason: "GPL-family license detected by content", score: 6},
	{all: []string{"affero general public license"}, license: LicenseAGPL, reason: "AGPL license detected by content", score: 5},
}

func (r contentRule) matches(text string) bool {
	for _, p := range r.all {
		if !strings.Contains(text, p) {
			return false
		}
	}
	if len(r.any) == 0 {
		return true
	}
	return containsAny(text, r.any)
}

// ClassifyLicense looks for a license file in dir and falls back to the
// license string declared in the manifest.
func ClassifyLicense(declared, dir string) LicenseAssessment {
	licensePath := findLicenseFile(dir)

	var text string
	if licensePath != "" {
		data, err := os.ReadFile(licensePath)
		if err != nil {
			return LicenseAssessment{LicenseUnreadable, fmt.Sprintf("Error reading license file: %v", err), 4}
		}
		text = strings.ToLower(string(data))
	}

	if text != "" {
		return classifyText(text)
	}
	return classifyDeclared(declared, licensePath != "")
}

func findLicenseFile(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range LicenseFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func classifyText(text string) LicenseAssessment {
	for _, rule := range contentRules {
		if rule.matches(text) {
			return LicenseAssessment{rule.license, rule.reason, rule.score}
		}
	}
	return LicenseAssessment{LicenseCustom, "Custom or unknown license file", 7}
}

func classifyDeclared(declared string, fileFound bool) LicenseAssessment {
	if declared == "" {
		if fileFound {
			return LicenseAssessment{LicenseCustom, "License file found but unreadable", 6}
		}
		return LicenseAssessment{LicenseMissing, "No license found", 2}
	}

	s := strings.ToLower(declared)
	switch {
	case containsAny(s, []string{"mit", "apache", "bsd", "isc"}):
		return LicenseAssessment{declared, "Permissive license by declaration", 10}
	case containsAny(s, []string{"gpl", "agpl", "lgpl"}):
		return LicenseAssessment{declared, "Copyleft license (GPL-family)", 6}
	case containsAny(s, []string{"proprietary", "closed"}):
		return LicenseAssessment{declared, "Proprietary license – review required", 4}
	}
	return LicenseAssessment{declared, "Unknown license", 5}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
