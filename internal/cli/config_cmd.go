// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/healthinsight/insight-tui/internal/config"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// handleConfig shows or updates the on-disk configuration.
func handleConfig(args Args) error {
	switch args.Subcommand {
	case "show", "":
		return configShow()
	case "path":
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	case "set":
		return configSet(args.ConfigKey, args.ConfigVal)
	default:
		return fmt.Errorf("unknown config subcommand: %s (want show, path, or set)", args.Subcommand)
	}
}

func configShow() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, _ := config.Path()

	fmt.Printf("Config file: %s\n\n", path)
	fmt.Printf("backend.base_url            %s\n", cfg.Backend.BaseURL)
	fmt.Printf("backend.timeout_secs        %d\n", cfg.Backend.TimeoutSecs)
	fmt.Printf("auth.admin_console_url      %s\n", cfg.Auth.AdminConsoleURL)
	fmt.Printf("auth.admin_emails           %s\n", strings.Join(cfg.Auth.AdminEmails, ", "))
	fmt.Printf("profile.poll_interval_secs  %d\n", cfg.Profile.PollIntervalSecs)
	fmt.Printf("ui.theme                    %s\n", cfg.UI.Theme)
	fmt.Printf("ui.sidebar_width            %d\n", cfg.UI.SidebarWidth)
	fmt.Printf("export.output_dir           %s\n", cfg.Export.OutputDir)
	return nil
}

// configSet updates one key and writes the file back, validating first so a
// bad value never lands on disk.
func configSet(key, value string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch key {
	case "backend.base_url":
		cfg.Backend.BaseURL = value
	case "backend.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer", key)
		}
		cfg.Backend.TimeoutSecs = n
	case "auth.admin_console_url":
		cfg.Auth.AdminConsoleURL = value
	case "auth.admin_emails":
		cfg.Auth.AdminEmails = splitList(value)
	case "profile.poll_interval_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer", key)
		}
		cfg.Profile.PollIntervalSecs = n
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.sidebar_width":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer", key)
		}
		cfg.UI.SidebarWidth = n
	case "export.output_dir":
		cfg.Export.OutputDir = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.SaveTOML(); err != nil {
		return err
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
