// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/healthinsight/insight-tui/internal/findings"
	"github.com/healthinsight/insight-tui/internal/model"
)

// =============================================================================
// HTML RENDERER
// =============================================================================

// renderHTML produces the print-ready HTML form of an analysis report with
// embedded CSS. Flagged values get severity classes so they survive printing
// in color-capable browsers and stay legible in grayscale.
func renderHTML(title string, msg model.Message, fs []findings.Finding) []byte {
	if title == "" {
		title = "Health Insight Analysis"
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(title)))
	sb.WriteString(reportCSS)
	sb.WriteString("</head>\n")
	sb.WriteString("<body>\n")
	sb.WriteString("    <div class=\"report\">\n")

	sb.WriteString(fmt.Sprintf("        <h1>%s</h1>\n", html.EscapeString(title)))
	sb.WriteString("        <p class=\"meta\">Generated " + formatTimestamp(msg.Timestamp))
	if msg.AuthorRole.Elevated() {
		sb.WriteString(" &middot; Reviewed by " + html.EscapeString(string(msg.AuthorRole)))
	}
	sb.WriteString("</p>\n")
	if msg.UploadedFileName != "" {
		sb.WriteString("        <p class=\"meta\">Source document: " +
			html.EscapeString(msg.UploadedFileName) + "</p>\n")
	}

	sb.WriteString("        <h2>Analysis</h2>\n")
	sb.WriteString("        <div class=\"analysis\">\n")
	for _, para := range strings.Split(msg.Text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		sb.WriteString("            <p>" + html.EscapeString(para) + "</p>\n")
	}
	sb.WriteString("        </div>\n")

	if len(fs) > 0 {
		sb.WriteString(renderFindingsTable(fs))
	}

	sb.WriteString("        <p class=\"disclaimer\">This report is informational and is not a diagnosis. Consult your clinician.</p>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String())
}

func renderFindingsTable(fs []findings.Finding) string {
	var sb strings.Builder
	sb.WriteString("        <h2>Lab Values</h2>\n")
	sb.WriteString("        <table class=\"values\">\n")
	sb.WriteString("            <thead><tr><th>Analyte</th><th>Value</th><th>Unit</th><th>Status</th></tr></thead>\n")
	sb.WriteString("            <tbody>\n")
	for _, f := range fs {
		sb.WriteString(fmt.Sprintf(
			"                <tr class=\"%s\"><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			severityClass(f.Severity),
			html.EscapeString(f.Analyte),
			formatValue(f.Value),
			html.EscapeString(f.Unit),
			f.Severity.String(),
		))
	}
	sb.WriteString("            </tbody>\n")
	sb.WriteString("        </table>\n")
	return sb.String()
}

func severityClass(s findings.Severity) string {
	switch s {
	case findings.SeverityCritical:
		return "critical"
	case findings.SeverityBorderline:
		return "borderline"
	default:
		return "normal"
	}
}

const reportCSS = `    <style>
        body { font-family: Georgia, 'Times New Roman', serif; color: #1a1a1a; margin: 0; }
        .report { max-width: 48rem; margin: 2rem auto; padding: 0 1.5rem; }
        h1 { font-size: 1.6rem; border-bottom: 2px solid #1a1a1a; padding-bottom: 0.4rem; }
        h2 { font-size: 1.2rem; margin-top: 1.8rem; }
        .meta { color: #555; font-size: 0.9rem; margin: 0.2rem 0; }
        .analysis p { line-height: 1.55; }
        table.values { border-collapse: collapse; width: 100%; margin-top: 0.6rem; }
        table.values th, table.values td { border: 1px solid #999; padding: 0.35rem 0.6rem; text-align: left; }
        table.values th { background: #f0f0f0; }
        tr.borderline td { background: #fff6e0; font-weight: bold; }
        tr.critical td { background: #ffe4e4; font-weight: bold; text-decoration: underline; }
        .disclaimer { margin-top: 2rem; font-size: 0.8rem; color: #777; font-style: italic; }
        @media print {
            .report { margin: 0; max-width: none; }
            tr.borderline td, tr.critical td { -webkit-print-color-adjust: exact; print-color-adjust: exact; }
        }
    </style>
`
