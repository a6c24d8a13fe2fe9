// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/healthinsight/insight-tui/internal/findings"
	"github.com/healthinsight/insight-tui/internal/model"
	"github.com/healthinsight/insight-tui/internal/util"
)

// =============================================================================
// RENDERING
// =============================================================================

// refreshViewport re-renders the message transcript into the viewport.
// Called whenever the conversation, the viewer role, or the layout changes.
func (m *Model) refreshViewport() {
	width := m.viewport.Width
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for i, msg := range m.conversation.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg, width))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

func (m *Model) renderMessage(msg model.Message, width int) string {
	switch msg.Role {
	case model.RoleUser:
		return m.renderUserMessage(msg, width)
	default:
		return m.renderAssistantMessage(msg, width)
	}
}

func (m *Model) renderUserMessage(msg model.Message, width int) string {
	var parts []string

	text := msg.Text
	if text == "" && len(msg.Attachments) > 0 {
		text = "(file upload)"
	}
	style := m.theme.UserBubble.Width(width - 4)
	if msg.Pending {
		style = m.theme.PendingMessage.Width(width - 4)
	}
	parts = append(parts, style.Render("You: "+text))

	for _, att := range msg.Attachments {
		parts = append(parts, m.theme.AttachmentChip.Render("📎 "+att.Name))
	}
	if msg.UploadedFileName != "" && len(msg.Attachments) == 0 {
		parts = append(parts, m.theme.AttachmentChip.Render("📎 "+msg.UploadedFileName))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderAssistantMessage(msg model.Message, width int) string {
	body := m.renderMarkdown(msg.Text, width-2)

	var parts []string
	label := "Insight"
	if msg.AuthorRole.Elevated() {
		label = "Insight " + m.theme.RoleBadge.Render(string(msg.AuthorRole))
	}
	parts = append(parts, m.theme.AssistantBubble.Render(label))
	parts = append(parts, body)

	// Flagged lab values are rendered as a separate block below the text,
	// only for messages authored under an elevated role. The stored text
	// is never mutated.
	if msg.AuthorRole.Elevated() {
		if block := m.renderFindings(msg.Text); block != "" {
			parts = append(parts, block)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderFindings produces the two-tier flag block for abnormal lab values.
// Returns "" when every parsed value grades normal.
func (m *Model) renderFindings(text string) string {
	abnormal := findings.Abnormal(findings.Parse(text))
	if len(abnormal) == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, m.theme.WarningText.Render("Flagged values:"))
	for _, f := range abnormal {
		style := m.theme.SeverityStyle(f.Severity == findings.SeverityCritical)
		entry := "  " + f.Analyte + " " + strconv.FormatFloat(f.Value, 'f', -1, 64)
		if f.Unit != "" {
			entry += " " + f.Unit
		}
		entry += " (" + f.Severity.String() + ")"
		lines = append(lines, style.Render(entry))
	}
	return strings.Join(lines, "\n")
}

// renderMarkdown renders assistant text through glamour, falling back to the
// raw text when rendering fails.
func (m *Model) renderMarkdown(text string, width int) string {
	if width < 10 {
		width = 10
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat pane.
func (m Model) View() string {
	var rows []string

	rows = append(rows, m.viewport.View())

	if len(m.pending) > 0 {
		chips := make([]string, 0, len(m.pending))
		for i, att := range m.pending {
			chips = append(chips, m.theme.AttachmentChip.Render(
				util.IntToString(i+1)+": "+util.TruncateWidth(att.Name, 24)))
		}
		rows = append(rows, strings.Join(chips, " "))
	} else {
		rows = append(rows, "")
	}

	if m.sending {
		label := "Typing..."
		if len(m.pending) > 0 || m.hasPendingAnalysis() {
			label = "Analyzing..."
		}
		rows = append(rows, m.spinner.View()+" "+label)
	} else {
		rows = append(rows, "")
	}

	rows = append(rows, m.theme.InputContainer.Width(m.width-2).Render(m.input.View()))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// hasPendingAnalysis reports whether the in-flight turn carries an
// attachment, which switches the indicator label.
func (m Model) hasPendingAnalysis() bool {
	if m.conversation.Len() == 0 {
		return false
	}
	last := m.conversation.Messages[m.conversation.Len()-1]
	return last.Pending && len(last.Attachments) > 0
}
