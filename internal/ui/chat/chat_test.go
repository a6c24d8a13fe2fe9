// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthinsight/insight-tui/internal/api"
	"github.com/healthinsight/insight-tui/internal/classify"
	"github.com/healthinsight/insight-tui/internal/model"
	"github.com/healthinsight/insight-tui/internal/ui/components"
	"github.com/healthinsight/insight-tui/internal/ui/event"
	"github.com/healthinsight/insight-tui/internal/ui/styles"
)

func newTestChat(t *testing.T, baseURL string) Model {
	t.Helper()
	client := api.NewClient(baseURL, api.NewSessionContext("test-token", nil))
	m := New(styles.NewTheme(), client, classify.NewKeywordClassifier(), components.NewToastManager(), t.TempDir())
	m.SetSize(80, 24)
	return m
}

// writeTempFile creates a staged-upload fixture on disk.
func writeTempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("fixture"), 0o600))
	return path
}

// collectMsgs runs a command tree and visits every produced message.
func collectMsgs(cmd tea.Cmd, visit func(tea.Msg)) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			collectMsgs(c, visit)
		}
		return
	}
	visit(msg)
}

// =============================================================================
// ATTACHMENT STAGING
// =============================================================================

func TestAttachFilesIsAdditiveWithUniqueIDs(t *testing.T) {
	m := newTestChat(t, "http://127.0.0.1:0")

	m.AttachFiles("/tmp/report.pdf", "/tmp/scan.png", "/tmp/report.pdf")
	staged := m.PendingAttachments()
	require.Len(t, staged, 3)

	// Same path staged twice still yields distinct entries.
	assert.NotEqual(t, staged[0].ID, staged[2].ID)
	assert.Equal(t, staged[0].Name, staged[2].Name)

	// Removal preserves the order of the rest.
	require.True(t, m.RemoveAttachment(staged[1].ID))
	after := m.PendingAttachments()
	require.Len(t, after, 2)
	assert.Equal(t, staged[0].ID, after[0].ID)
	assert.Equal(t, staged[2].ID, after[1].ID)
}

func TestUnsupportedAttachmentSkippedWithWarning(t *testing.T) {
	m := newTestChat(t, "http://127.0.0.1:0")

	m.AttachFiles("/tmp/notes.txt")
	assert.Empty(t, m.PendingAttachments())
	assert.NotEmpty(t, m.toasts.Active())
}

func TestRemoveUnknownAttachment(t *testing.T) {
	m := newTestChat(t, "http://127.0.0.1:0")
	m.AttachFiles("/tmp/report.pdf")
	assert.False(t, m.RemoveAttachment("nope"))
	assert.Len(t, m.PendingAttachments(), 1)
}

// =============================================================================
// SEND ROUTING
// =============================================================================

// routeRecorder captures which endpoint a send hit.
type routeRecorder struct {
	paths []string
}

func newRoutingServer(rec *routeRecorder) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.paths = append(rec.paths, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/chats":
			json.NewEncoder(w).Encode(map[string]string{"_id": "chat-1", "title": "Health Insight Chat"})
		case "/chats/chat-1/messages":
			json.NewEncoder(w).Encode(map[string]string{"reply": "Hello back"})
		case "/analysis/report", "/analysis/upload":
			json.NewEncoder(w).Encode(map[string]string{
				"insight": "Your glucose of 110 mg/dL is borderline.",
				"chatId":  "chat-2",
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestAttachmentPresenceForcesUploadPath(t *testing.T) {
	rec := &routeRecorder{}
	srv := newRoutingServer(rec)
	defer srv.Close()

	m := newTestChat(t, srv.URL)
	m.AttachFiles(writeTempFile(t, "panel.pdf"))

	// Even lab-looking text routes to upload while a file is staged.
	m.input.SetValue("glucose 110 mg/dL")
	m, cmd := m.sendTurn()
	require.NotNil(t, cmd)

	collectMsgs(cmd, func(tea.Msg) {})
	require.NotEmpty(t, rec.paths)
	assert.Contains(t, rec.paths, "POST /analysis/upload")
	assert.NotContains(t, rec.paths, "POST /analysis/report")
}

func TestLabTextRoutesToReportAnalysis(t *testing.T) {
	rec := &routeRecorder{}
	srv := newRoutingServer(rec)
	defer srv.Close()

	m := newTestChat(t, srv.URL)
	m.input.SetValue("glucose 110 mg/dL")
	m, cmd := m.sendTurn()
	require.NotNil(t, cmd)

	collectMsgs(cmd, func(tea.Msg) {})
	assert.Contains(t, rec.paths, "POST /analysis/report")
	assert.NotContains(t, rec.paths, "POST /chats")
}

func TestPlainTextRoutesToChat(t *testing.T) {
	rec := &routeRecorder{}
	srv := newRoutingServer(rec)
	defer srv.Close()

	m := newTestChat(t, srv.URL)
	m.input.SetValue("hello")
	m, cmd := m.sendTurn()
	require.NotNil(t, cmd)

	collectMsgs(cmd, func(tea.Msg) {})
	assert.Contains(t, rec.paths, "POST /chats")
	assert.Contains(t, rec.paths, "POST /chats/chat-1/messages")
}

func TestEmptySendIsANoop(t *testing.T) {
	m := newTestChat(t, "http://127.0.0.1:0")
	m.input.SetValue("   ")
	m, cmd := m.sendTurn()
	assert.Nil(t, cmd)
	assert.Zero(t, m.MessageCount())
}

func TestSecondSendBlockedWhileInFlight(t *testing.T) {
	rec := &routeRecorder{}
	srv := newRoutingServer(rec)
	defer srv.Close()

	m := newTestChat(t, srv.URL)
	m.input.SetValue("hello")
	m, cmd := m.sendTurn()
	require.NotNil(t, cmd)

	m.input.SetValue("again")
	m, cmd2 := m.sendTurn()
	assert.Nil(t, cmd2)
	assert.Equal(t, 1, m.MessageCount())
}

// =============================================================================
// OPTIMISTIC APPEND, CONFIRM, ROLLBACK
// =============================================================================

func TestPlainChatTurnEndToEnd(t *testing.T) {
	rec := &routeRecorder{}
	srv := newRoutingServer(rec)
	defer srv.Close()

	m := newTestChat(t, srv.URL)
	m.input.SetValue("hello")
	m, cmd := m.sendTurn()
	require.NotNil(t, cmd)

	// The user message shows immediately, marked pending.
	require.Equal(t, 1, m.MessageCount())
	assert.True(t, m.conversation.Messages[0].Pending)
	assert.Empty(t, m.ActiveID())

	var listChanged bool
	collectMsgs(cmd, func(msg tea.Msg) {
		var c tea.Cmd
		m, c = m.Update(msg)
		collectMsgs(c, func(inner tea.Msg) {
			if _, ok := inner.(event.ConversationListChangedMsg); ok {
				listChanged = true
			}
		})
	})

	require.Equal(t, 2, m.MessageCount())
	assert.False(t, m.conversation.Messages[0].Pending)
	assert.Equal(t, "Hello back", m.conversation.Messages[1].Text)
	assert.Equal(t, "chat-1", m.ActiveID())
	assert.True(t, listChanged, "lazy creation must notify the conversation list")
	assert.False(t, m.sending)
}

func TestUploadTurnEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		json.NewEncoder(w).Encode(map[string]string{
			"insight":  "Cholesterol 250 mg/dL is critical.",
			"chatId":   "chat-9",
			"userRole": "HC",
			"fileName": "panel.pdf",
		})
	}))
	defer srv.Close()

	m := newTestChat(t, srv.URL)
	m.AttachFiles(writeTempFile(t, "panel.pdf"))
	m.input.SetValue("please review")
	m, cmd := m.sendTurn()
	require.NotNil(t, cmd)

	// Optimistic user message carries the attachment copy.
	require.Equal(t, 1, m.MessageCount())
	require.Len(t, m.conversation.Messages[0].Attachments, 1)

	collectMsgs(cmd, func(msg tea.Msg) {
		var c tea.Cmd
		m, c = m.Update(msg)
		collectMsgs(c, func(tea.Msg) {})
	})

	require.Equal(t, 2, m.MessageCount())
	assert.Equal(t, "panel.pdf", m.conversation.Messages[0].UploadedFileName)
	insight := m.conversation.Messages[1]
	assert.Equal(t, model.UserRoleHC, insight.AuthorRole)
	assert.Equal(t, "chat-9", m.ActiveID())

	// The analyzed attachment left the compose area.
	assert.Empty(t, m.PendingAttachments())
}

func TestAnalysisFailureRollsBackAndKeepsAttachment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model unavailable"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := newTestChat(t, srv.URL)
	m.AttachFiles(writeTempFile(t, "panel.pdf"))
	m.input.SetValue("review this")
	m, cmd := m.sendTurn()
	require.NotNil(t, cmd)
	require.Equal(t, 1, m.MessageCount())

	collectMsgs(cmd, func(msg tea.Msg) {
		var c tea.Cmd
		m, c = m.Update(msg)
		collectMsgs(c, func(tea.Msg) {})
	})

	// The provisional message is gone, the attachment stays for retry.
	assert.Zero(t, m.MessageCount())
	assert.Len(t, m.PendingAttachments(), 1)
	assert.False(t, m.sending)
	assert.NotEmpty(t, m.toasts.Active())
}

func TestChatFailureRollsBackUserMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chats" {
			json.NewEncoder(w).Encode(map[string]string{"_id": "chat-1", "title": "Health Insight Chat"})
			return
		}
		http.Error(w, `{"error":"overloaded"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := newTestChat(t, srv.URL)
	m.input.SetValue("hello")
	m, cmd := m.sendTurn()
	require.NotNil(t, cmd)

	collectMsgs(cmd, func(msg tea.Msg) {
		var c tea.Cmd
		m, c = m.Update(msg)
		collectMsgs(c, func(tea.Msg) {})
	})

	assert.Zero(t, m.MessageCount())
	// The conversation was still created server-side; keep its id so the
	// retry lands in the same thread.
	assert.Equal(t, "chat-1", m.ActiveID())
}

// =============================================================================
// CONVERSATION SWITCHING
// =============================================================================

func TestStartNewClearsLocalStateOnly(t *testing.T) {
	rec := &routeRecorder{}
	srv := newRoutingServer(rec)
	defer srv.Close()

	m := newTestChat(t, srv.URL)
	m.conversation.ID = "chat-1"
	m.conversation.Append(model.NewAssistantMessage("old"))

	m.StartNew()
	assert.Empty(t, m.ActiveID())
	assert.Zero(t, m.MessageCount())
	assert.Empty(t, rec.paths, "starting a new conversation must not touch the network")
}

func TestResetDropsSessionScopedState(t *testing.T) {
	m := newTestChat(t, "http://127.0.0.1:0")
	m.conversation.ID = "chat-a"
	m.conversation.Append(model.NewAssistantMessage("previous account's history"))
	m.AttachFiles(writeTempFile(t, "private.pdf"))
	m.sending = true
	m.viewerRole = model.UserRoleHC

	m.Reset()
	assert.Empty(t, m.ActiveID())
	assert.Zero(t, m.MessageCount())
	assert.Empty(t, m.PendingAttachments())
	assert.False(t, m.sending)
	assert.Equal(t, model.UserRoleUser, m.viewerRole)
}

func TestLoadFailureKeepsPriorState(t *testing.T) {
	m := newTestChat(t, "http://127.0.0.1:0")
	m.conversation.ID = "chat-1"
	m.conversation.Append(model.NewAssistantMessage("kept"))

	m, _ = m.Update(ConversationLoadedMsg{RequestedID: "chat-2", Err: assert.AnError})
	assert.Equal(t, "chat-1", m.ActiveID())
	assert.Equal(t, 1, m.MessageCount())
	assert.NotEmpty(t, m.toasts.Active())
}

// =============================================================================
// EXPORT GATING
// =============================================================================

func TestExportRefusedForNonElevatedAuthor(t *testing.T) {
	m := newTestChat(t, "http://127.0.0.1:0")
	plain := model.NewAssistantMessage("glucose 110 mg/dL is borderline")
	m.conversation.Append(plain)

	m, cmd := m.exportLastInsight()
	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.toasts.Active())
}

func TestExportRunsForElevatedAuthor(t *testing.T) {
	m := newTestChat(t, "http://127.0.0.1:0")
	insight := model.NewAssistantMessage("Cholesterol 250 mg/dL is critical.")
	insight.AuthorRole = model.UserRoleHC
	m.conversation.Append(insight)

	m, cmd := m.exportLastInsight()
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(ExportDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)
	assert.FileExists(t, done.Path)
}
