// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthinsight/insight-tui/internal/api"
	"github.com/healthinsight/insight-tui/internal/auth"
	"github.com/healthinsight/insight-tui/internal/config"
	"github.com/healthinsight/insight-tui/internal/model"
	"github.com/healthinsight/insight-tui/internal/storage"
	"github.com/healthinsight/insight-tui/internal/ui/chat"
	"github.com/healthinsight/insight-tui/internal/ui/event"
	"github.com/healthinsight/insight-tui/internal/ui/styles"
)

func newTestApp(t *testing.T) appModel {
	t.Helper()
	// Client points nowhere; these tests never execute its commands.
	session := api.NewSessionContext("test-token", nil)
	client := api.NewClient("http://127.0.0.1:0", session)
	m := newAppModel(styles.NewTheme(), config.Default(), client, session,
		storage.NewTokenStore(t.TempDir()))

	res, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return res.(appModel)
}

// loadSession seeds the app with an account's in-memory state: a loaded
// conversation plus a staged attachment.
func loadSession(m appModel) appModel {
	conv := &model.Conversation{
		ID:       "chat-a",
		Title:    "prior thread",
		Messages: []model.Message{model.NewAssistantMessage("previous account's history")},
	}
	m.chatModel, _ = m.chatModel.Update(chat.ConversationLoadedMsg{RequestedID: "chat-a", Conversation: conv})
	m.chatModel.AttachFiles("/tmp/private.pdf")
	m.profile = model.Profile{Name: "Prior User", Role: model.UserRoleHC}
	return m
}

func TestLogoutClearsSessionState(t *testing.T) {
	m := loadSession(newTestApp(t))
	require.Equal(t, 1, m.chatModel.MessageCount())
	require.Equal(t, "chat-a", m.chatModel.ActiveID())
	require.Len(t, m.chatModel.PendingAttachments(), 1)

	res, _ := m.logout("Signed out.")
	m = res.(appModel)
	assert.Equal(t, StateLogin, m.state)

	// A fresh sign-in must start from a blank slate: no transcript, no
	// active conversation id, no staged files from the previous account.
	res, _ = m.updateGate(auth.LoginResultMsg{})
	m = res.(appModel)
	require.Equal(t, StateChat, m.state)
	assert.Zero(t, m.chatModel.MessageCount())
	assert.Empty(t, m.chatModel.ActiveID())
	assert.Empty(t, m.chatModel.PendingAttachments())
	assert.Empty(t, m.profile.Name)
}

func TestAuthExpiryClearsSessionState(t *testing.T) {
	m := loadSession(newTestApp(t))

	res, _ := m.Update(event.AuthExpiredMsg{})
	m = res.(appModel)
	assert.Equal(t, StateLogin, m.state)
	assert.Zero(t, m.chatModel.MessageCount())
	assert.Empty(t, m.chatModel.ActiveID())
	assert.Empty(t, m.chatModel.PendingAttachments())
	assert.Empty(t, m.profile.Name)
}

func TestConfirmPromptOverlaysChatView(t *testing.T) {
	m := newTestApp(t)
	require.Equal(t, StateChat, m.state)

	m.confirm.Show(`Delete "doomed"? This cannot be undone.`, func() tea.Msg { return nil })
	view := m.View()

	// Both the prompt and the surrounding chat chrome are on screen.
	assert.Contains(t, view, `Delete "doomed"?`)
	assert.Contains(t, view, "Health Insight")
}

func TestOverlayCenterKeepsSurroundingRows(t *testing.T) {
	body := "top\nmiddle\nbottom"
	layer := "\nPROMPT\n"
	assert.Equal(t, "top\nPROMPT\nbottom", overlayCenter(body, layer))
}
