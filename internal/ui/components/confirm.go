// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/healthinsight/insight-tui/internal/ui/styles"
)

// ConfirmPrompt is a blocking yes/no toast used before destructive actions
// (conversation delete, account delete). While visible it captures y/n and
// Enter/Esc; everything else is ignored.
type ConfirmPrompt struct {
	visible bool
	message string
	// onConfirm produces the message dispatched when the user accepts.
	onConfirm func() tea.Msg
}

// NewConfirmPrompt returns a hidden prompt.
func NewConfirmPrompt() *ConfirmPrompt {
	return &ConfirmPrompt{}
}

// Show arms the prompt. onConfirm is dispatched only on explicit accept.
func (c *ConfirmPrompt) Show(message string, onConfirm func() tea.Msg) {
	c.visible = true
	c.message = message
	c.onConfirm = onConfirm
}

// Visible reports whether the prompt is capturing input.
func (c *ConfirmPrompt) Visible() bool {
	return c.visible
}

// HandleKey consumes a key press while visible. It returns the command to
// run (nil for keys that neither confirm nor cancel) and whether the key
// was consumed.
func (c *ConfirmPrompt) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if !c.visible {
		return nil, false
	}
	switch msg.String() {
	case "y", "Y", "enter":
		fn := c.onConfirm
		c.hide()
		if fn != nil {
			return fn, true
		}
		return nil, true
	case "n", "N", "esc":
		c.hide()
		return nil, true
	default:
		// Swallow everything else so a stray keypress cannot fire the
		// destructive action underneath.
		return nil, true
	}
}

func (c *ConfirmPrompt) hide() {
	c.visible = false
	c.message = ""
	c.onConfirm = nil
}

// Render draws the prompt centered in a width x height area.
func (c *ConfirmPrompt) Render(theme *styles.Theme, width, height int) string {
	if !c.visible {
		return ""
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.WarningText.Render(c.message),
		"",
		theme.FormLabel.Render("[y] confirm    [n] cancel"),
	)
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Amber).
		Padding(1, 3).
		Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
