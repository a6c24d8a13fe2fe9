// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the one piece of client-side state that survives
// a restart: the auth token. Everything else (conversations, messages,
// profiles) is re-fetched from the backend.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/healthinsight/insight-tui/internal/util"
)

const tokenFileName = "token"

// TokenStore reads and writes the bearer token under a base directory.
type TokenStore struct {
	dir string
}

// NewTokenStore creates a store rooted at dir.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{dir: dir}
}

func (s *TokenStore) path() string {
	return filepath.Join(s.dir, tokenFileName)
}

// Load returns the stored token, or "" when none exists.
func (s *TokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token atomically with owner-only permissions.
func (s *TokenStore) Save(token string) error {
	if token == "" {
		return s.Clear()
	}
	return util.AtomicWriteFile(s.path(), []byte(token+"\n"), 0600)
}

// Clear removes the stored token. Missing file is not an error.
func (s *TokenStore) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
