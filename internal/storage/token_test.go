// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	store := NewTokenStore(t.TempDir())

	// Empty store yields empty token, no error.
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("eyJhbGciOi.token.value"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi.token.value", token)

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestTokenFilePermissions(t *testing.T) {
	dir := t.TempDir()
	store := NewTokenStore(dir)
	require.NoError(t, store.Save("secret"))

	info, err := os.Stat(filepath.Join(dir, "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSaveEmptyClears(t *testing.T) {
	store := NewTokenStore(t.TempDir())
	require.NoError(t, store.Save("secret"))
	require.NoError(t, store.Save(""))

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}
