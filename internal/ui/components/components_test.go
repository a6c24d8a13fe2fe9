// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastManagerPushDismiss(t *testing.T) {
	tm := NewToastManager()
	id := tm.Push(ToastError, "upload failed")
	tm.Push(ToastSuccess, "saved")

	active := tm.Active()
	require.Len(t, active, 2)
	// Newest first.
	assert.Equal(t, "saved", active[0].Message)

	tm.Dismiss(id)
	assert.Len(t, tm.Active(), 1)
}

func TestToastManagerCapsStack(t *testing.T) {
	tm := NewToastManager()
	for i := 0; i < 10; i++ {
		tm.Push(ToastStatus, "msg")
	}
	assert.Len(t, tm.Active(), maxToasts)
}

func TestToastTickExpires(t *testing.T) {
	tm := NewToastManager()
	tm.Push(ToastStatus, "short lived")

	assert.True(t, tm.Tick(time.Now()))
	assert.False(t, tm.Tick(time.Now().Add(time.Minute)))
	assert.Empty(t, tm.Active())
}

func TestConfirmPromptAcceptAndCancel(t *testing.T) {
	type deleted struct{}

	c := NewConfirmPrompt()
	assert.False(t, c.Visible())

	c.Show("Delete this conversation?", func() tea.Msg { return deleted{} })
	require.True(t, c.Visible())

	// A stray key neither confirms nor closes the guard on the action.
	cmd, consumed := c.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.True(t, consumed)
	assert.Nil(t, cmd)
	assert.True(t, c.Visible())

	cmd, consumed = c.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	require.True(t, consumed)
	require.NotNil(t, cmd)
	assert.IsType(t, deleted{}, cmd())
	assert.False(t, c.Visible())

	// Cancel path never fires the action.
	c.Show("Delete account?", func() tea.Msg { return deleted{} })
	cmd, consumed = c.HandleKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, consumed)
	assert.Nil(t, cmd)
	assert.False(t, c.Visible())
}

func TestUserMenuSelection(t *testing.T) {
	m := NewUserMenu()
	m.Toggle()
	require.True(t, m.Visible())

	// down, down, enter selects the third entry (delete account).
	m.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	m.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	cmd, consumed := m.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, consumed)
	require.NotNil(t, cmd)
	assert.IsType(t, DeleteAccountRequestMsg{}, cmd())
	assert.False(t, m.Visible())
}

func TestUserMenuOutsideKeyCloses(t *testing.T) {
	m := NewUserMenu()
	m.Toggle()
	cmd, consumed := m.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}})
	assert.True(t, consumed)
	assert.Nil(t, cmd)
	assert.False(t, m.Visible())
}

func TestHCFormValidation(t *testing.T) {
	f := NewHCForm()

	// Empty form never submits.
	assert.False(t, f.Validate())
	assert.Equal(t, "required", f.fieldErrors[hcFieldFullName])
	assert.Equal(t, "required", f.fieldErrors[hcFieldDocument])
}
