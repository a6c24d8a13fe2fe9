// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/healthinsight/insight-tui/internal/model"
	"github.com/healthinsight/insight-tui/internal/ui/styles"
)

// Menu selections dispatched to the root model.
type (
	// OpenHCApplicationMsg opens the healthcare credential form/status.
	OpenHCApplicationMsg struct{}
	// LogoutRequestMsg asks the root model to log out.
	LogoutRequestMsg struct{}
	// DeleteAccountRequestMsg asks for account deletion (confirmed first).
	DeleteAccountRequestMsg struct{}
)

type menuEntry struct {
	label string
	msg   tea.Msg
}

// UserMenu shows the profile summary and account actions. It opens
// exclusively: the root model closes any sidebar context menu when this
// opens, and any key outside the menu closes it.
type UserMenu struct {
	visible bool
	cursor  int
	profile model.Profile
	entries []menuEntry
}

// NewUserMenu creates a closed menu.
func NewUserMenu() *UserMenu {
	return &UserMenu{
		entries: []menuEntry{
			{label: "Healthcare credential", msg: OpenHCApplicationMsg{}},
			{label: "Log out", msg: LogoutRequestMsg{}},
			{label: "Delete account", msg: DeleteAccountRequestMsg{}},
		},
	}
}

// SetProfile updates the displayed profile.
func (u *UserMenu) SetProfile(p model.Profile) {
	u.profile = p
}

// Toggle opens or closes the menu.
func (u *UserMenu) Toggle() {
	u.visible = !u.visible
	u.cursor = 0
}

// Close hides the menu.
func (u *UserMenu) Close() {
	u.visible = false
}

// Visible reports whether the menu is open.
func (u *UserMenu) Visible() bool {
	return u.visible
}

// HandleKey processes a key while the menu is open. Any key that is not
// navigation or selection closes the menu (click-outside behavior).
func (u *UserMenu) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if !u.visible {
		return nil, false
	}
	switch msg.String() {
	case "up", "k":
		if u.cursor > 0 {
			u.cursor--
		}
		return nil, true
	case "down", "j":
		if u.cursor < len(u.entries)-1 {
			u.cursor++
		}
		return nil, true
	case "enter":
		selected := u.entries[u.cursor].msg
		u.Close()
		return func() tea.Msg { return selected }, true
	default:
		u.Close()
		return nil, true
	}
}

// Render draws the open menu; "" when closed.
func (u *UserMenu) Render(theme *styles.Theme) string {
	if !u.visible {
		return ""
	}

	header := theme.FormLabel.Render(u.profile.Name) + "\n" +
		theme.FormLabel.Render(u.profile.Email) + "  " +
		theme.RoleBadge.Render(string(u.profile.Role))

	lines := []string{header, ""}
	for i, e := range u.entries {
		prefix := "  "
		style := theme.SidebarMenuItem
		if i == u.cursor {
			prefix = "> "
			style = style.Bold(true)
		}
		lines = append(lines, style.Render(prefix+e.label))
	}

	return theme.SidebarMenu.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
