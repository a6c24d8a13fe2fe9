// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth supplies the Bubble Tea commands for the sign-in gate and
// the background profile poller that keeps the viewer's role current.
package auth

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/healthinsight/insight-tui/internal/api"
	"github.com/healthinsight/insight-tui/internal/config"
	"github.com/healthinsight/insight-tui/internal/model"
)

// =============================================================================
// GATE MESSAGES
// =============================================================================

// LoginResultMsg reports a login attempt. On success the client's session
// already holds the token.
type LoginResultMsg struct {
	Err error
}

// RegisterResultMsg reports a registration attempt.
type RegisterResultMsg struct {
	Err error
}

// ProfileLoadedMsg delivers the signed-in user's profile, both on the
// initial fetch and on every poll.
type ProfileLoadedMsg struct {
	Profile model.Profile
	Err     error
}

// =============================================================================
// ADMIN REDIRECT
// =============================================================================

// AdminRedirect reports whether an email belongs to the admin allow-list,
// returning the console URL those accounts must use instead of this client.
func AdminRedirect(cfg *config.Config, email string) (string, bool) {
	if !cfg.IsAdminEmail(strings.TrimSpace(email)) {
		return "", false
	}
	return cfg.Auth.AdminConsoleURL, true
}

// =============================================================================
// GATE COMMANDS
// =============================================================================

// LoginCmd attempts a login. Callers run the admin allow-list check first;
// this always issues the request.
func LoginCmd(client *api.Client, email, password string) tea.Cmd {
	return func() tea.Msg {
		err := client.Login(context.Background(), email, password)
		return LoginResultMsg{Err: err}
	}
}

// RegisterCmd creates an account. The backend does not sign the user in;
// the gate returns to the login form on success.
func RegisterCmd(client *api.Client, name, email, password string) tea.Cmd {
	return func() tea.Msg {
		err := client.Register(context.Background(), name, email, password)
		return RegisterResultMsg{Err: err}
	}
}

// FetchProfileCmd loads the profile once, outside the polling loop. Used
// right after login and on startup with a persisted token.
func FetchProfileCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		profile, err := client.Profile(context.Background())
		return ProfileLoadedMsg{Profile: profile, Err: err}
	}
}
