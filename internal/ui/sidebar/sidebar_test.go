// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sidebar

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthinsight/insight-tui/internal/api"
	"github.com/healthinsight/insight-tui/internal/model"
	"github.com/healthinsight/insight-tui/internal/ui/components"
	"github.com/healthinsight/insight-tui/internal/ui/event"
	"github.com/healthinsight/insight-tui/internal/ui/styles"
)

func newTestSidebar() Model {
	// Client points nowhere; tests below must never run its commands.
	client := api.NewClient("http://127.0.0.1:0", api.NewSessionContext("", nil))
	m := New(styles.NewTheme(), client, components.NewToastManager())
	m.SetSize(32, 40)
	return m
}

func keyRunes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestGroupByBucket(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	metas := []model.ConversationMeta{
		{ID: "a", UpdatedAt: now},
		{ID: "b", UpdatedAt: now.AddDate(0, 0, -10)},
		{ID: "c", UpdatedAt: now.AddDate(0, 0, -1)},
	}

	groups := GroupByBucket(metas, now)
	require.Len(t, groups[model.BucketToday], 1)
	assert.Equal(t, "a", groups[model.BucketToday][0].ID)
	require.Len(t, groups[model.BucketPrevious30Days], 1)
	assert.Equal(t, "b", groups[model.BucketPrevious30Days][0].ID)
	require.Len(t, groups[model.BucketYesterday], 1)

	// A conversation appears in exactly one bucket.
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	assert.Equal(t, len(metas), total)
}

func TestEmptySearchQueryYieldsNoResults(t *testing.T) {
	m := newTestSidebar()
	m.metas = []model.ConversationMeta{{ID: "a", Title: "sugar levels", UpdatedAt: time.Now()}}

	// Enter search mode.
	m, _ = m.Update(keyRunes('/'))
	assert.Equal(t, modeSearch, m.mode)

	// Type then erase: result list must be empty again, not "no matches"
	// from a stale query.
	m, _ = m.Update(keyRunes('s'))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Empty(t, m.searchResults)
	assert.Empty(t, m.searchQuery)
}

func TestStaleSearchResultsDropped(t *testing.T) {
	m := newTestSidebar()
	m, _ = m.Update(keyRunes('/'))
	m, _ = m.Update(keyRunes('a'))

	// A result for a query the input no longer holds is ignored.
	m, _ = m.Update(SearchResultsMsg{
		Query: "abc",
		Metas: []model.ConversationMeta{{ID: "x", Title: "old"}},
	})
	assert.Empty(t, m.searchResults)

	m, _ = m.Update(SearchResultsMsg{
		Query: "a",
		Metas: []model.ConversationMeta{{ID: "y", Title: "fresh"}},
	})
	require.Len(t, m.searchResults, 1)
	assert.Equal(t, "y", m.searchResults[0].ID)
}

func TestResetDropsLoadedListState(t *testing.T) {
	m := newTestSidebar()
	m.metas = []model.ConversationMeta{{ID: "chat-a", Title: "prior thread", UpdatedAt: time.Now()}}
	m.activeID = "chat-a"
	m.cursor = 1
	m, _ = m.Update(keyRunes('/'))
	m, _ = m.Update(keyRunes('s'))

	m.Reset()
	assert.Empty(t, m.metas)
	assert.Empty(t, m.activeID)
	assert.Zero(t, m.cursor)
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, m.searchInput.Value())
}

func TestEmptyRenameIssuesNoCall(t *testing.T) {
	m := newTestSidebar()
	m.metas = []model.ConversationMeta{{ID: "a", Title: "old title", UpdatedAt: time.Now()}}
	m, _ = m.beginRename("a")
	m.renameInput.SetValue("   ")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "empty title must not produce a network command")
	assert.Equal(t, modeRename, m.mode, "stay in rename so the user can fix it")

	// A validation toast was pushed.
	assert.NotEmpty(t, m.toasts.Active())
}

func TestMenuIsExclusiveAndOutsideKeyCloses(t *testing.T) {
	m := newTestSidebar()
	m.metas = []model.ConversationMeta{
		{ID: "a", Title: "first", UpdatedAt: time.Now()},
		{ID: "b", Title: "second", UpdatedAt: time.Now().Add(-time.Minute)},
	}

	m, _ = m.Update(keyRunes('m'))
	assert.True(t, m.MenuOpen())
	assert.Equal(t, "a", m.menuFor)

	// An unrelated key closes the menu.
	m, _ = m.Update(keyRunes('x'))
	assert.False(t, m.MenuOpen())

	// Opening the second item's menu replaces, never stacks.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(keyRunes('m'))
	assert.Equal(t, "b", m.menuFor)
}

func TestDeleteGoesThroughConfirmation(t *testing.T) {
	m := newTestSidebar()
	m.metas = []model.ConversationMeta{{ID: "a", Title: "doomed", UpdatedAt: time.Now()}}

	m, _ = m.Update(keyRunes('m'))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown}) // move to delete
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	req, ok := msg.(DeleteRequestedMsg)
	require.True(t, ok, "delete must request confirmation, not fire directly")
	assert.Equal(t, "a", req.ID)
	assert.Equal(t, "doomed", req.Title)
}

func TestDeleteOfActiveClearsActive(t *testing.T) {
	m := newTestSidebar()
	m.activeID = "a"

	m, cmd := m.Update(DeleteDoneMsg{ID: "a"})
	require.NotNil(t, cmd)
	assert.Empty(t, m.activeID)

	// The batched command includes the cleared-active event.
	found := false
	collectMsgs(cmd, func(msg tea.Msg) {
		if _, ok := msg.(event.ActiveConversationClearedMsg); ok {
			found = true
		}
	})
	assert.True(t, found)
}

// collectMsgs runs a command tree, visiting each produced message. Network
// commands against the unroutable test client produce error messages which
// are visited like any other.
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

func TestRefreshOnListChangedEvent(t *testing.T) {
	m := newTestSidebar()
	_, cmd := m.Update(event.ConversationListChangedMsg{})
	assert.NotNil(t, cmd, "list-changed event must trigger a refresh")
}
