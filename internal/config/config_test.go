// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	cfg.fillDefaults()
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Backend.BaseURL, cfg.Backend.BaseURL)
	assert.Equal(t, 30, cfg.Profile.PollIntervalSecs)
}

func TestLoadFromPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
base_url = "https://staging.example.com/api"

[auth]
admin_emails = ["root@example.com"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com/api", cfg.Backend.BaseURL)
	// Unset fields fall back to defaults.
	assert.Equal(t, 60, cfg.Backend.TimeoutSecs)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.True(t, cfg.IsAdminEmail("root@example.com"))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("INSIGHT_BASE_URL", "https://env.example.com/api")
	t.Setenv("INSIGHT_ADMIN_EMAILS", "a@x.com, b@y.com")
	t.Setenv("INSIGHT_POLL_INTERVAL_SECS", "120")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, cfg.Auth.AdminEmails)
	assert.Equal(t, 120, cfg.Profile.PollIntervalSecs)
}

func TestZeroPollIntervalFallsBackToDefault(t *testing.T) {
	// An explicit zero in the file is treated like an unset field.
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[profile]
poll_interval_secs = 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Profile.PollIntervalSecs)

	// So is a zero env override; there is no disabled state.
	t.Setenv("INSIGHT_POLL_INTERVAL_SECS", "0")
	cfg, err = LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Profile.PollIntervalSecs)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Backend: BackendConfig{BaseURL: "not-a-url", TimeoutSecs: -1},
		Auth:    AuthConfig{AdminEmails: []string{"nope"}},
		UI:      UIConfig{Theme: "sepia", SidebarWidth: 5},
	}
	err := cfg.Validate()
	require.Error(t, err)

	var errs ValidateErrors
	require.ErrorAs(t, err, &errs)
	assert.GreaterOrEqual(t, len(errs), 4)
}

func TestIsAdminEmailCaseInsensitive(t *testing.T) {
	cfg := Default()
	cfg.Auth.AdminEmails = []string{"Admin@Example.com"}
	assert.True(t, cfg.IsAdminEmail("admin@example.COM"))
	assert.True(t, cfg.IsAdminEmail("  admin@example.com "))
	assert.False(t, cfg.IsAdminEmail("user@example.com"))
}
