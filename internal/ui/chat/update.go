// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/healthinsight/insight-tui/internal/model"
	"github.com/healthinsight/insight-tui/internal/ui/components"
	"github.com/healthinsight/insight-tui/internal/ui/event"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case event.SelectConversationMsg:
		return m.selectConversation(msg.ID)

	case event.NewConversationMsg:
		m.StartNew()
		return m, nil

	case event.ActiveConversationClearedMsg:
		// The active conversation was deleted; drop its local transcript.
		if m.conversation.ID != "" {
			m.StartNew()
		}
		return m, nil

	case ConversationLoadedMsg:
		return m.handleLoaded(msg)

	case ChatReplyMsg:
		return m.handleChatReply(msg)

	case AnalysisDoneMsg:
		return m.handleAnalysisDone(msg)

	case ExportDoneMsg:
		if msg.Err != nil {
			m.toasts.Push(components.ToastError, "Export failed: "+msg.Err.Error())
		} else {
			m.toasts.Push(components.ToastSuccess, "Exported to "+msg.Path)
		}
		return m, nil

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		content := m.input.Value()
		if strings.HasPrefix(strings.TrimSpace(content), "/") {
			return m.handleCommand(strings.TrimSpace(content))
		}
		return m.sendTurn()
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleCommand processes slash commands typed into the input.
func (m Model) handleCommand(content string) (Model, tea.Cmd) {
	m.input.Reset()

	parts := strings.Fields(content)
	name := strings.TrimPrefix(parts[0], "/")
	args := parts[1:]

	switch name {
	case "attach", "a":
		if len(args) == 0 {
			m.toasts.Push(components.ToastWarning, "Usage: /attach <file path>")
			return m, nil
		}
		m.AttachFiles(args...)
		return m, nil

	case "remove", "rm":
		if len(args) == 0 {
			m.toasts.Push(components.ToastWarning, "Usage: /remove <number>")
			return m, nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(m.pending) {
			m.toasts.Push(components.ToastWarning, "No staged file #"+args[0])
			return m, nil
		}
		m.RemoveAttachment(m.pending[n-1].ID)
		return m, nil

	case "new", "n":
		m.StartNew()
		return m, func() tea.Msg { return event.ActiveConversationClearedMsg{} }

	case "export", "e":
		return m.exportLastInsight()

	case "help", "h":
		m.toasts.Push(components.ToastStatus,
			"/attach <path> · /remove <n> · /new · /export · enter sends")
		return m, nil

	default:
		m.toasts.Push(components.ToastWarning, "Unknown command: /"+name)
		return m, nil
	}
}

// =============================================================================
// SEND TURN
// =============================================================================

// sendTurn dispatches the composed turn along exactly one of three paths,
// checked in precedence order: staged attachment, lab-report text, plain
// chat. The optimistic user message is always appended before the network
// call is issued.
func (m Model) sendTurn() (Model, tea.Cmd) {
	if m.sending {
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())

	// Path 1: staged attachments win regardless of typed text.
	if len(m.pending) > 0 {
		att := m.pending[0]
		userMsg := model.NewUserMessage(text)
		userMsg.Pending = true
		userMsg.Attachments = []model.Attachment{att}
		m.conversation.Append(userMsg)
		m.input.Reset()
		m.sending = true
		m.refreshViewport()
		return m, tea.Batch(
			m.uploadAnalysisCmd(userMsg.ID, att, text, m.conversation.ID),
			m.spinner.Tick,
		)
	}

	if text == "" {
		return m, nil
	}

	userMsg := model.NewUserMessage(text)
	userMsg.Pending = true
	m.conversation.Append(userMsg)
	m.input.Reset()
	m.sending = true
	m.refreshViewport()

	// Path 2: lab-value heuristic routes to report analysis.
	if m.classifier.IsLabReport(text) {
		return m, tea.Batch(
			m.reportAnalysisCmd(userMsg.ID, m.conversation.ID, text),
			m.spinner.Tick,
		)
	}

	// Path 3: plain chat, creating the conversation lazily.
	return m, tea.Batch(
		m.plainChatCmd(userMsg.ID, m.conversation.ID, text),
		m.spinner.Tick,
	)
}

// =============================================================================
// RESULT HANDLING
// =============================================================================

// selectConversation fetches the full history for id. The optimistic local
// state stays untouched until the load resolves.
func (m Model) selectConversation(id string) (Model, tea.Cmd) {
	if id == "" || id == m.conversation.ID {
		return m, nil
	}
	return m, m.loadConversationCmd(id)
}

func (m Model) handleLoaded(msg ConversationLoadedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		// Non-fatal: prior state stays unless the active id genuinely
		// changed underneath us.
		m.toasts.Push(components.ToastError, errText(msg.Err))
		return m, nil
	}
	m.conversation = msg.Conversation
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) handleChatReply(msg ChatReplyMsg) (Model, tea.Cmd) {
	m.sending = false

	var cmds []tea.Cmd
	// The conversation may have been created even when the send itself
	// failed; adopt it so the next turn reuses it, and tell the sidebar.
	if msg.CreatedChatID != "" {
		m.conversation.ID = msg.CreatedChatID
		m.conversation.Title = msg.CreatedTitle
		cmds = append(cmds, func() tea.Msg { return event.ConversationListChangedMsg{} })
	}

	if msg.Err != nil {
		m.conversation.Remove(msg.UserMsgID)
		m.toasts.Push(components.ToastError, errText(msg.Err))
		m.refreshViewport()
		return m, tea.Batch(cmds...)
	}

	m.conversation.Confirm(msg.UserMsgID)
	reply := model.NewAssistantMessage(msg.Reply)
	m.conversation.Append(reply)
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, tea.Batch(cmds...)
}

func (m Model) handleAnalysisDone(msg AnalysisDoneMsg) (Model, tea.Cmd) {
	m.sending = false

	if msg.Err != nil {
		// Roll back the provisional user message; a staged attachment
		// stays staged so the user can retry.
		m.conversation.Remove(msg.UserMsgID)
		m.toasts.Push(components.ToastError, errText(msg.Err))
		m.refreshViewport()
		return m, nil
	}

	m.conversation.Confirm(msg.UserMsgID)
	for i := range m.conversation.Messages {
		if m.conversation.Messages[i].ID == msg.UserMsgID {
			m.conversation.Messages[i].UploadedFileName = msg.Result.FileName
		}
	}

	// The analyzed attachment leaves the compose area and its preview is
	// released; the sent message keeps its own immutable copy.
	if msg.AttachmentID != "" {
		m.releaseAttachment(msg.AttachmentID)
	}

	insight := model.NewAssistantMessage(msg.Result.Insight)
	insight.AuthorRole = msg.Result.AuthorRole()
	m.conversation.Append(insight)

	var cmds []tea.Cmd
	if m.conversation.ID == "" && msg.Result.ChatID != "" {
		m.conversation.ID = msg.Result.ChatID
		cmds = append(cmds, func() tea.Msg { return event.ConversationListChangedMsg{} })
	}

	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, tea.Batch(cmds...)
}

// =============================================================================
// EXPORT
// =============================================================================

// exportLastInsight exports the most recent assistant message, available
// only when that message was authored under an elevated role.
func (m Model) exportLastInsight() (Model, tea.Cmd) {
	for i := len(m.conversation.Messages) - 1; i >= 0; i-- {
		msg := m.conversation.Messages[i]
		if msg.Role != model.RoleAssistant {
			continue
		}
		if !msg.AuthorRole.Elevated() {
			m.toasts.Push(components.ToastWarning, "Export is available for clinician analyses only")
			return m, nil
		}
		return m, m.exportMessageCmd(msg)
	}
	m.toasts.Push(components.ToastWarning, "Nothing to export yet")
	return m, nil
}

// Focus returns input focus to the compose line.
func (m *Model) Focus() tea.Cmd {
	m.input.Focus()
	return textinput.Blink
}
