// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthinsight/insight-tui/internal/findings"
	"github.com/healthinsight/insight-tui/internal/model"
)

func sampleMessage() model.Message {
	msg := model.NewAssistantMessage("Your cholesterol of 250 mg/dL is critical and warrants follow-up.\n\nGlucose of 110 mg/dL is borderline.")
	msg.AuthorRole = model.UserRoleHC
	msg.Timestamp = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	msg.UploadedFileName = "lipid_panel.pdf"
	return msg
}

func TestWriteMessageReport(t *testing.T) {
	dir := t.TempDir()
	msg := sampleMessage()
	fs := findings.Parse(msg.Text)
	require.NotEmpty(t, fs)

	path, err := WriteMessageReport(dir, "Lipid panel review", msg, fs)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".html"))

	htmlBody, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(htmlBody)
	assert.Contains(t, content, "Lipid panel review")
	assert.Contains(t, content, "Reviewed by HC")
	assert.Contains(t, content, "lipid_panel.pdf")
	assert.Contains(t, content, `class="critical"`)
	assert.Contains(t, content, `class="borderline"`)

	// The Markdown sibling landed next to it.
	mdPath := strings.TrimSuffix(path, ".html") + ".md"
	mdBody, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(mdBody), "| cholesterol | 250 | mg/dL | critical |")
}

func TestWriteMessageReportEscapesHTML(t *testing.T) {
	msg := model.NewAssistantMessage("Values <b>should not</b> render as markup.")
	msg.AuthorRole = model.UserRoleAdmin

	path, err := WriteMessageReport(t.TempDir(), `a/b:"c"`, msg, nil)
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "&lt;b&gt;should not&lt;/b&gt;")

	// The title's filesystem-hostile characters were replaced.
	assert.NotContains(t, filepath.Base(path), "/")
	assert.NotContains(t, filepath.Base(path), `"`)
}

func TestWriteMessageReportRejectsEmptyText(t *testing.T) {
	_, err := WriteMessageReport(t.TempDir(), "title", model.Message{}, nil)
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b_c", sanitizeFilename("a/b c"))
	assert.Equal(t, "insight", sanitizeFilename(""))
	long := strings.Repeat("x", 80)
	assert.Len(t, sanitizeFilename(long), 50)
}
