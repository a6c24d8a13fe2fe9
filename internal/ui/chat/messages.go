// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat owns the active conversation view: optimistic sends, staged
// attachments, the three-way routing between plain chat and the two
// analysis endpoints, and role-gated finding rendering.
//
// This file defines the Bubble Tea message types for the chat component.
package chat

import (
	"github.com/healthinsight/insight-tui/internal/api"
	"github.com/healthinsight/insight-tui/internal/model"
)

// =============================================================================
// LOAD MESSAGES
// =============================================================================

// ConversationLoadedMsg delivers a fetched conversation history.
type ConversationLoadedMsg struct {
	RequestedID  string
	Conversation *model.Conversation
	Err          error
}

// =============================================================================
// SEND MESSAGES
// =============================================================================

// ChatReplyMsg reports the outcome of a plain chat turn. CreatedChatID is
// set when the conversation was allocated lazily for this turn.
type ChatReplyMsg struct {
	UserMsgID     string
	CreatedChatID string
	CreatedTitle  string
	Reply         string
	Err           error
}

// AnalysisDoneMsg reports the outcome of a report or upload analysis turn.
// AttachmentID is non-empty on the upload path.
type AnalysisDoneMsg struct {
	UserMsgID    string
	AttachmentID string
	Result       api.AnalysisResult
	Err          error
}

// =============================================================================
// EXPORT MESSAGES
// =============================================================================

// ExportDoneMsg reports where a message report was written.
type ExportDoneMsg struct {
	Path string
	Err  error
}
