// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"

	"github.com/healthinsight/insight-tui/internal/findings"
	"github.com/healthinsight/insight-tui/internal/model"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// renderMarkdown produces the Markdown form of an analysis report.
func renderMarkdown(title string, msg model.Message, fs []findings.Finding) []byte {
	var sb strings.Builder

	if title == "" {
		title = "Health Insight Analysis"
	}
	sb.WriteString("# " + title + "\n\n")
	sb.WriteString("*Generated " + formatTimestamp(msg.Timestamp) + "*\n\n")
	if msg.AuthorRole.Elevated() {
		sb.WriteString("**Reviewed by:** " + string(msg.AuthorRole) + "\n\n")
	}
	if msg.UploadedFileName != "" {
		sb.WriteString("**Source document:** " + msg.UploadedFileName + "\n\n")
	}

	sb.WriteString("## Analysis\n\n")
	sb.WriteString(msg.Text)
	sb.WriteString("\n")

	if len(fs) > 0 {
		sb.WriteString("\n## Lab Values\n\n")
		sb.WriteString("| Analyte | Value | Unit | Status |\n")
		sb.WriteString("|---------|-------|------|--------|\n")
		for _, f := range fs {
			sb.WriteString("| " + f.Analyte +
				" | " + formatValue(f.Value) +
				" | " + f.Unit +
				" | " + f.Severity.String() + " |\n")
		}
	}

	return []byte(sb.String())
}
