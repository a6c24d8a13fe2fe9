// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"unit match", "glucose 110 mg/dL", true},
		{"unit match lowercase", "fasting sugar was 6.1 mmol/l today", true},
		{"percent with value", "HbA1c 7.2%", true},
		{"keyword plus number", "my cholesterol came back at 240", true},
		{"plain greeting", "hello", false},
		{"question about analyte without value", "what does high cholesterol mean?", false},
		{"number without clinical context", "I ran 5 km yesterday", false},
		{"empty", "   ", false},
		{"multi line report", "CBC results:\nhemoglobin 9.8 g/dL\nplatelets 410", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsLabReport(tt.text))
		})
	}
}
