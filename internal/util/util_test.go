// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "token")

	err := AtomicWriteFile(path, []byte("first"), 0600)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	// Overwrite replaces content atomically.
	err = AtomicWriteFile(path, []byte("second"), 0600)
	require.NoError(t, err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "hello", TruncateWidth("hello", 10))
	assert.Equal(t, "hell...", TruncateWidth("hello world", 7))
	assert.Equal(t, "", TruncateWidth("hello", 0))

	// Wide runes count as two cells.
	got := TruncateWidth("血糖値が高い", 6)
	assert.LessOrEqual(t, len([]rune(got)), 6)
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpace("a\n\n b\t c "))
	assert.Equal(t, "", CollapseSpace("   "))
}
