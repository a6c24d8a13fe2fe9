// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/healthinsight/insight-tui/internal/api"
	"github.com/healthinsight/insight-tui/internal/auth"
	"github.com/healthinsight/insight-tui/internal/config"
	"github.com/healthinsight/insight-tui/internal/storage"
)

// =============================================================================
// LOGIN
// =============================================================================

// handleLogin signs in and stores the session token for the TUI to pick up.
func handleLogin(args Args) error {
	cfg := config.Global()

	email := strings.TrimSpace(args.Email)
	if email == "" {
		line := liner.NewLiner()
		line.SetCtrlCAborts(true)
		entered, err := line.Prompt("Email: ")
		line.Close()
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return fmt.Errorf("login aborted")
			}
			return fmt.Errorf("read email: %w", err)
		}
		email = strings.TrimSpace(entered)
	}
	if email == "" {
		return fmt.Errorf("email required")
	}

	// Admin accounts never sign in through this client.
	if consoleURL, redirect := auth.AdminRedirect(cfg, email); redirect {
		fmt.Printf("Admin accounts use the web console: %s\n", consoleURL)
		return fmt.Errorf("admin login not supported here")
	}

	fmt.Print("Password: ")
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimSpace(string(passBytes))
	if password == "" {
		return fmt.Errorf("password required")
	}

	dir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("resolve config directory: %w", err)
	}
	store := storage.NewTokenStore(dir)
	session := api.NewSessionContext("", store)
	client := api.NewClient(cfg.Backend.BaseURL, session).WithTimeout(cfg.Timeout())

	if err := client.Login(context.Background(), email, password); err != nil {
		return fmt.Errorf("login failed: %s", api.UserMessage(err))
	}

	if !args.Quiet {
		fmt.Println("Signed in. Run 'insight' to start.")
	}
	return nil
}

// =============================================================================
// LOGOUT
// =============================================================================

// handleLogout clears the stored token. Purely local; the backend's bearer
// tokens are stateless.
func handleLogout(args Args) error {
	dir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("resolve config directory: %w", err)
	}
	store := storage.NewTokenStore(dir)
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	if !args.Quiet {
		fmt.Println("Signed out.")
	}
	return nil
}
