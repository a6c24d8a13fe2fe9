// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package findings extracts structured lab findings from insight text.
// Parsing is pure data extraction; whether and how a finding is highlighted
// is decided by the display layer based on the viewer's role, and the
// message text itself is never rewritten.
package findings

import (
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity grades how far a value sits outside its reference range.
type Severity int

const (
	// SeverityNormal is inside the reference range.
	SeverityNormal Severity = iota
	// SeverityBorderline is outside the range but inside the alert bound.
	SeverityBorderline
	// SeverityCritical is beyond the alert bound.
	SeverityCritical
)

// String returns the display label for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityBorderline:
		return "borderline"
	case SeverityCritical:
		return "critical"
	default:
		return "normal"
	}
}

// =============================================================================
// FINDINGS
// =============================================================================

// Finding is one analyte reading pulled out of insight text.
type Finding struct {
	Analyte  string
	Value    float64
	Unit     string
	Severity Severity
}

// refRange holds a reference band and the alert bounds beyond which a value
// becomes critical rather than borderline.
type refRange struct {
	unit             string
	low, high        float64 // reference range (inclusive)
	alertLo, alertHi float64 // beyond these the finding is critical
}

// grade places a value into a severity tier.
func (r refRange) grade(v float64) Severity {
	switch {
	case v >= r.low && v <= r.high:
		return SeverityNormal
	case v < r.alertLo || v > r.alertHi:
		return SeverityCritical
	default:
		return SeverityBorderline
	}
}

// referenceRanges covers the analytes the backend's insights mention most.
// Ranges follow common adult reference intervals; the backend remains the
// clinical authority, this only drives display emphasis.
var referenceRanges = map[string]refRange{
	"glucose":       {unit: "mg/dL", low: 70, high: 99, alertLo: 54, alertHi: 125},
	"cholesterol":   {unit: "mg/dL", low: 0, high: 199, alertLo: 0, alertHi: 239},
	"ldl":           {unit: "mg/dL", low: 0, high: 129, alertLo: 0, alertHi: 159},
	"hdl":           {unit: "mg/dL", low: 40, high: 999, alertLo: 30, alertHi: 999},
	"triglycerides": {unit: "mg/dL", low: 0, high: 149, alertLo: 0, alertHi: 199},
	"hemoglobin":    {unit: "g/dL", low: 12, high: 17.5, alertLo: 8, alertHi: 20},
	"hba1c":         {unit: "%", low: 4, high: 5.6, alertLo: 4, alertHi: 6.4},
	"creatinine":    {unit: "mg/dL", low: 0.6, high: 1.3, alertLo: 0.4, alertHi: 2.0},
	"tsh":           {unit: "mIU/L", low: 0.4, high: 4.0, alertLo: 0.1, alertHi: 10},
}

// analyteAliases maps surface spellings onto reference table keys.
var analyteAliases = map[string]string{
	"glucose":       "glucose",
	"blood sugar":   "glucose",
	"cholesterol":   "cholesterol",
	"ldl":           "ldl",
	"hdl":           "hdl",
	"triglyceride":  "triglycerides",
	"triglycerides": "triglycerides",
	"hemoglobin":    "hemoglobin",
	"haemoglobin":   "hemoglobin",
	"hba1c":         "hba1c",
	"a1c":           "hba1c",
	"creatinine":    "creatinine",
	"tsh":           "tsh",
}

// findingPattern matches "<analyte> ... <value> <unit>" within one line,
// e.g. "Glucose: 110 mg/dL" or "your LDL level of 162 mg/dL".
var findingPattern = regexp.MustCompile(
	`(?i)(blood sugar|glucose|cholesterol|ldl|hdl|triglycerides?|ha?emoglobin|hba1c|a1c|creatinine|tsh)\b[^.\n\d]{0,40}?(\d+(?:\.\d+)?)\s*(mg/dl|g/dl|mmol/l|miu/l|%)?`)

// Parse extracts graded findings from insight text. Analytes without a
// reference range entry, or readings without a parseable value, are
// skipped. Order follows text order; duplicates are kept (a report can
// repeat a panel).
func Parse(text string) []Finding {
	matches := findingPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var out []Finding
	for _, m := range matches {
		key, ok := analyteAliases[strings.ToLower(m[1])]
		if !ok {
			continue
		}
		ref, ok := referenceRanges[key]
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		unit := m[3]
		if unit == "" {
			unit = ref.unit
		}
		// Graded against the table's unit; a reading reported in another
		// unit keeps its text but is not graded.
		sev := SeverityNormal
		if strings.EqualFold(unit, ref.unit) {
			sev = ref.grade(value)
		}
		out = append(out, Finding{
			Analyte:  key,
			Value:    value,
			Unit:     unit,
			Severity: sev,
		})
	}
	return out
}

// Abnormal filters findings down to the two flagged tiers.
func Abnormal(fs []Finding) []Finding {
	var out []Finding
	for _, f := range fs {
		if f.Severity != SeverityNormal {
			out = append(out, f)
		}
	}
	return out
}
