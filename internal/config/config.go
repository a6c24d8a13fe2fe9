// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates the client configuration.
//
// Configuration lives at ~/.insight/config.toml. Environment variables with
// the INSIGHT_ prefix override file values, so the backend URL can be pointed
// at a staging deployment without editing the file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/healthinsight/insight-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config is the full client configuration.
type Config struct {
	// Backend is the remote analysis service.
	Backend BackendConfig `toml:"backend"`

	// Auth covers login behavior and the admin allow-list.
	Auth AuthConfig `toml:"auth"`

	// Profile controls the background role-change poll.
	Profile ProfileConfig `toml:"profile"`

	// UI holds presentation options.
	UI UIConfig `toml:"ui"`

	// Export controls where per-message reports are written.
	Export ExportConfig `toml:"export"`
}

// BackendConfig locates the health insight backend.
type BackendConfig struct {
	// BaseURL is the REST base, e.g. "https://api.example.com/api".
	BaseURL string `toml:"base_url"`

	// TimeoutSecs bounds every request. Uploads share the same bound.
	TimeoutSecs int `toml:"timeout_secs"`
}

// AuthConfig holds login behavior.
type AuthConfig struct {
	// AdminEmails is the fixed allow-list of admin addresses. A login
	// attempt with one of these opens the admin console instead of
	// calling the login endpoint.
	AdminEmails []string `toml:"admin_emails"`

	// AdminConsoleURL is opened for allow-listed addresses.
	AdminConsoleURL string `toml:"admin_console_url"`
}

// ProfileConfig controls profile polling.
type ProfileConfig struct {
	// PollIntervalSecs is how often the profile is re-fetched to detect
	// role changes. Zero falls back to the default; the effective minimum
	// is one second.
	PollIntervalSecs int `toml:"poll_interval_secs"`
}

// UIConfig holds presentation options.
type UIConfig struct {
	// Theme selects the color theme ("dark" or "light").
	Theme string `toml:"theme"`

	// SidebarWidth is the sidebar width in terminal cells.
	SidebarWidth int `toml:"sidebar_width"`
}

// ExportConfig controls report export.
type ExportConfig struct {
	// OutputDir receives exported reports. Defaults under the config dir.
	OutputDir string `toml:"output_dir"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:     "http://localhost:5000/api",
			TimeoutSecs: 60,
		},
		Auth: AuthConfig{
			AdminConsoleURL: "http://localhost:5000/admin",
		},
		Profile: ProfileConfig{
			PollIntervalSecs: 30,
		},
		UI: UIConfig{
			Theme:        "dark",
			SidebarWidth: 32,
		},
		Export: ExportConfig{},
	}
}

// fillDefaults replaces zero values with defaults after a partial load.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = def.Backend.BaseURL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = def.Backend.TimeoutSecs
	}
	if c.Auth.AdminConsoleURL == "" {
		c.Auth.AdminConsoleURL = def.Auth.AdminConsoleURL
	}
	if c.Profile.PollIntervalSecs == 0 {
		c.Profile.PollIntervalSecs = def.Profile.PollIntervalSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.UI.SidebarWidth == 0 {
		c.UI.SidebarWidth = def.UI.SidebarWidth
	}
	if c.Export.OutputDir == "" {
		if dir, err := Dir(); err == nil {
			c.Export.OutputDir = filepath.Join(dir, "exports")
		}
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Dir returns the configuration directory (~/.insight), creating it if
// needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	dir := filepath.Join(home, ".insight")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file, applies env overrides, and validates.
// A missing file is not an error; defaults are used.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		cfg = Default()
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides lets INSIGHT_* environment variables override file
// values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("INSIGHT_BASE_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("INSIGHT_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Backend.TimeoutSecs = n
		}
	}
	if v := os.Getenv("INSIGHT_ADMIN_EMAILS"); v != "" {
		parts := strings.Split(v, ",")
		emails := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				emails = append(emails, p)
			}
		}
		c.Auth.AdminEmails = emails
	}
	if v := os.Getenv("INSIGHT_ADMIN_CONSOLE_URL"); v != "" {
		c.Auth.AdminConsoleURL = v
	}
	if v := os.Getenv("INSIGHT_POLL_INTERVAL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Profile.PollIntervalSecs = n
		}
	}
	if v := os.Getenv("INSIGHT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("INSIGHT_EXPORT_DIR"); v != "" {
		c.Export.OutputDir = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s = %q: %s", e.Field, e.Value, e.Message)
}

// ValidateErrors collects all validation failures.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("config: ")
	sb.WriteString(strconv.Itoa(len(e)))
	sb.WriteString(" invalid fields:")
	for _, ve := range e {
		sb.WriteString("\n  ")
		sb.WriteString(ve.Error())
	}
	return sb.String()
}

// Validate checks every field and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Value:   c.Backend.BaseURL,
			Message: "must be an absolute http(s) URL",
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Value:   c.Backend.BaseURL,
			Message: "scheme must be http or https",
		})
	}

	if c.Backend.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Value:   strconv.Itoa(c.Backend.TimeoutSecs),
			Message: "must be positive",
		})
	}

	if c.Profile.PollIntervalSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "profile.poll_interval_secs",
			Value:   strconv.Itoa(c.Profile.PollIntervalSecs),
			Message: "must be zero or positive",
		})
	}

	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Value:   c.UI.Theme,
			Message: "must be \"dark\" or \"light\"",
		})
	}

	if c.UI.SidebarWidth < 20 || c.UI.SidebarWidth > 80 {
		errs = append(errs, ValidationError{
			Field:   "ui.sidebar_width",
			Value:   strconv.Itoa(c.UI.SidebarWidth),
			Message: "must be between 20 and 80",
		})
	}

	for _, email := range c.Auth.AdminEmails {
		if !strings.Contains(email, "@") {
			errs = append(errs, ValidationError{
				Field:   "auth.admin_emails",
				Value:   email,
				Message: "not an email address",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// PollInterval returns the profile poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Profile.PollIntervalSecs) * time.Second
}

// IsAdminEmail reports whether email is on the admin allow-list.
// Comparison is case-insensitive.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.Auth.AdminEmails {
		if strings.ToLower(strings.TrimSpace(admin)) == email {
			return true
		}
	}
	return false
}

// =============================================================================
// SAVING
// =============================================================================

// SaveTOML writes the configuration atomically with owner-only permissions.
func (c *Config) SaveTOML() error {
	path, err := Path()
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("# Health Insight client configuration\n")
	sb.WriteString("# Environment variables with the INSIGHT_ prefix take precedence.\n\n")
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}

// =============================================================================
// GLOBAL SINGLETON
// =============================================================================

var (
	globalConfig *Config
	globalOnce   sync.Once
	globalMu     sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first use.
// Load failures fall back to defaults so the TUI can still start and show
// the problem as a toast.
func Global() *Config {
	globalOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
			cfg.fillDefaults()
		}
		globalMu.Lock()
		globalConfig = cfg
		globalMu.Unlock()
	})
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// ReplaceGlobal swaps the global configuration. Used by the file watcher
// when the config changes on disk.
func ReplaceGlobal(cfg *Config) {
	globalOnce.Do(func() {})
	globalMu.Lock()
	globalConfig = cfg
	globalMu.Unlock()
}

// ResetGlobalForTesting clears the singleton so tests can reload.
func ResetGlobalForTesting() {
	globalMu.Lock()
	globalConfig = nil
	globalMu.Unlock()
	globalOnce = sync.Once{}
}
