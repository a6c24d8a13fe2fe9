// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package event defines the cross-component Bubble Tea messages. The chat
// manager and the sidebar never share state; they coordinate only through
// these events routed by the root model.
package event

// ConversationListChangedMsg tells the sidebar to do a full refresh.
// Emitted after any create, delete, or rename initiated elsewhere.
type ConversationListChangedMsg struct{}

// SelectConversationMsg asks the chat manager to load a conversation.
type SelectConversationMsg struct {
	ID string
}

// NewConversationMsg asks the chat manager to clear the active
// conversation and start fresh. No network call; the id is allocated on
// first send.
type NewConversationMsg struct{}

// ActiveConversationClearedMsg tells the sidebar the active conversation
// went away (deleted or reset).
type ActiveConversationClearedMsg struct{}

// AuthExpiredMsg is dispatched by the session's auth-failure hook: any 401
// outside login/register forces the gate back to the login view.
type AuthExpiredMsg struct{}
