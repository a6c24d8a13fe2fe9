// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package classify decides whether typed text should be routed to the
// report-analysis endpoint instead of plain chat. The rule is behind an
// interface so the heuristic can be swapped without touching send logic.
package classify

import (
	"regexp"
	"strings"
)

// Classifier routes free text between plain chat and report analysis.
type Classifier interface {
	// IsLabReport reports whether text looks like pasted lab or report
	// values rather than a conversational question.
	IsLabReport(text string) bool
}

// =============================================================================
// KEYWORD CLASSIFIER
// =============================================================================

// valueWithUnit matches a number followed by a clinical unit, e.g.
// "110 mg/dL", "5.4 mmol/L", "13.2 g/dL", "6.1%".
var valueWithUnit = regexp.MustCompile(
	`(?i)\d+(?:\.\d+)?\s*(?:mg/dl|mmol/l|g/dl|iu/l|u/l|ng/ml|ng/dl|miu/l|pg/ml|mcg/dl|cells/mcl|million/mcl|%)`)

// anyNumber matches a bare numeric reading.
var anyNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// analyteKeywords are common lab panel names. A keyword alone is not
// enough ("what does high cholesterol mean?" is chat); it must appear next
// to a numeric reading.
var analyteKeywords = []string{
	"glucose",
	"cholesterol",
	"hdl",
	"ldl",
	"triglyceride",
	"hemoglobin",
	"haemoglobin",
	"hba1c",
	"a1c",
	"creatinine",
	"urea",
	"bilirubin",
	"tsh",
	"t3",
	"t4",
	"platelet",
	"wbc",
	"rbc",
	"sodium",
	"potassium",
	"vitamin d",
	"vitamin b12",
	"sgpt",
	"sgot",
}

// KeywordClassifier is the default heuristic:
//  1. A numeric value with a clinical unit always routes to analysis.
//  2. An analyte keyword plus any numeric reading routes to analysis.
//  3. Everything else is plain chat.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the default classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// IsLabReport implements Classifier.
func (k *KeywordClassifier) IsLabReport(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if valueWithUnit.MatchString(text) {
		return true
	}
	if !anyNumber.MatchString(text) {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range analyteKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
