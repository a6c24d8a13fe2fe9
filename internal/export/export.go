// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes clinician analysis messages to disk as a Markdown
// file plus a print-ready HTML report with the flagged lab values tabled.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/healthinsight/insight-tui/internal/findings"
	"github.com/healthinsight/insight-tui/internal/model"
	"github.com/healthinsight/insight-tui/internal/util"
)

// =============================================================================
// REPORT EXPORT
// =============================================================================

// WriteMessageReport writes one analysis message under dir in both formats
// and returns the HTML path, which is the print-ready one.
func WriteMessageReport(dir, title string, msg model.Message, fs []findings.Finding) (string, error) {
	if msg.Text == "" {
		return "", fmt.Errorf("message has no text to export")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	base := fmt.Sprintf("insight_%s_%s", sanitizeFilename(title), stamp)

	mdPath := filepath.Join(dir, base+".md")
	if err := util.AtomicWriteFile(mdPath, renderMarkdown(title, msg, fs), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	htmlPath := filepath.Join(dir, base+".html")
	if err := util.AtomicWriteFile(htmlPath, renderHTML(title, msg, fs), 0o644); err != nil {
		return "", fmt.Errorf("write html: %w", err)
	}

	return htmlPath, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in filenames on
// either Windows or Unix and caps the length.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		if replacement, found := replacer[r]; found {
			out = append(out, replacement)
		} else if r < 32 || r == 127 {
			out = append(out, '-')
		} else {
			out = append(out, r)
		}
	}

	if len(out) == 0 {
		return "insight"
	}
	return string(out)
}

// formatValue renders a lab value without trailing zeros.
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("2006-01-02 15:04:05")
}
