// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthinsight/insight-tui/internal/api"
	"github.com/healthinsight/insight-tui/internal/config"
	"github.com/healthinsight/insight-tui/internal/model"
)

func TestAdminRedirect(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.AdminEmails = []string{"admin@example.com"}
	cfg.Auth.AdminConsoleURL = "https://console.example.com"

	url, redirect := AdminRedirect(cfg, "  Admin@Example.com ")
	assert.True(t, redirect)
	assert.Equal(t, "https://console.example.com", url)

	_, redirect = AdminRedirect(cfg, "user@example.com")
	assert.False(t, redirect)
}

func TestLoginCmdStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	}))
	defer srv.Close()

	session := api.NewSessionContext("", nil)
	client := api.NewClient(srv.URL, session)

	msg := LoginCmd(client, "user@example.com", "hunter2")()
	result, ok := msg.(LoginResultMsg)
	require.True(t, ok)
	require.NoError(t, result.Err)
	assert.Equal(t, "tok-123", session.Token())
}

func TestFetchProfileCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"name": "Dana", "email": "dana@example.com", "role": "HC",
		})
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, api.NewSessionContext("tok", nil))
	msg := FetchProfileCmd(client)()
	loaded, ok := msg.(ProfileLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.Err)
	assert.Equal(t, model.UserRoleHC, loaded.Profile.Role)
}

func TestPollerPauseSkipsFetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"role": "USER"})
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, api.NewSessionContext("tok", nil))
	p := NewPoller(client, time.Second)

	p.Pause()
	runCmdTree(p.HandleTick())
	assert.Zero(t, hits.Load(), "paused poller must not fetch")

	p.Resume()
	runCmdTree(p.HandleTick())
	assert.Equal(t, int32(1), hits.Load())
}

// runCmdTree executes a command tree to completion, including the scheduled
// next tick, which blocks for the poll interval.
func runCmdTree(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmdTree(c)
		}
	}
}
