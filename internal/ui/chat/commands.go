// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/healthinsight/insight-tui/internal/api"
	"github.com/healthinsight/insight-tui/internal/export"
	"github.com/healthinsight/insight-tui/internal/findings"
	"github.com/healthinsight/insight-tui/internal/model"
)

// =============================================================================
// NETWORK COMMANDS
// =============================================================================

// loadConversationCmd fetches a conversation's full history.
func (m Model) loadConversationCmd(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		conv, err := client.GetChat(context.Background(), id)
		return ConversationLoadedMsg{RequestedID: id, Conversation: conv, Err: err}
	}
}

// plainChatCmd sends a plain chat turn, creating the conversation first
// when none is active. The optimistic user message was already appended;
// the id travels with the result so failure can roll it back.
func (m Model) plainChatCmd(userMsgID, chatID, text string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx := context.Background()

		created := ""
		createdTitle := ""
		if chatID == "" {
			meta, err := client.CreateChat(ctx, defaultChatTitle)
			if err != nil {
				return ChatReplyMsg{UserMsgID: userMsgID, Err: err}
			}
			chatID = meta.ID
			created = meta.ID
			createdTitle = meta.Title
		}

		reply, err := client.SendMessage(ctx, chatID, text)
		return ChatReplyMsg{
			UserMsgID:     userMsgID,
			CreatedChatID: created,
			CreatedTitle:  createdTitle,
			Reply:         reply,
			Err:           err,
		}
	}
}

// reportAnalysisCmd routes pasted lab text to the analysis endpoint.
func (m Model) reportAnalysisCmd(userMsgID, chatID, text string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.AnalyzeReport(context.Background(), text, chatID)
		return AnalysisDoneMsg{UserMsgID: userMsgID, Result: result, Err: err}
	}
}

// uploadAnalysisCmd uploads the first staged attachment for analysis.
func (m Model) uploadAnalysisCmd(userMsgID string, att model.Attachment, note, chatID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.UploadAndAnalyze(context.Background(), att, note, chatID)
		return AnalysisDoneMsg{UserMsgID: userMsgID, AttachmentID: att.ID, Result: result, Err: err}
	}
}

// =============================================================================
// EXPORT COMMAND
// =============================================================================

// exportMessageCmd writes a print-ready report for one assistant message.
// Only reachable when the message's author role is elevated.
func (m Model) exportMessageCmd(msg model.Message) tea.Cmd {
	dir := m.exportDir
	title := m.conversation.Title
	return func() tea.Msg {
		fs := findings.Parse(msg.Text)
		path, err := export.WriteMessageReport(dir, title, msg, fs)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// =============================================================================
// ERROR HELPER
// =============================================================================

// errText converts an API error into toast copy.
func errText(err error) string {
	return api.UserMessage(err)
}
