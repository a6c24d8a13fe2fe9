// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sidebar maintains the user's conversation list: recency-bucket
// grouping, server-side search, rename, and confirmed delete. It syncs
// with the chat manager only through explicit events.
package sidebar

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/healthinsight/insight-tui/internal/api"
	"github.com/healthinsight/insight-tui/internal/model"
	"github.com/healthinsight/insight-tui/internal/ui/components"
	"github.com/healthinsight/insight-tui/internal/ui/event"
	"github.com/healthinsight/insight-tui/internal/ui/styles"
	"github.com/healthinsight/insight-tui/internal/util"
)

// =============================================================================
// MODEL
// =============================================================================

// mode tracks what keys currently drive.
type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeMenu
	modeRename
)

// Model is the sidebar component.
type Model struct {
	theme  *styles.Theme
	client *api.Client
	toasts *components.ToastManager

	width  int
	height int

	// Grouped list state. metas is the authoritative full list; search
	// results live separately and never touch it.
	metas         []model.ConversationMeta
	searchResults []model.ConversationMeta
	searchQuery   string

	activeID string
	cursor   int
	mode     mode

	// Context menu: at most one open at a time, keyed by conversation id.
	menuFor    string
	menuCursor int

	searchInput textinput.Model
	renameInput textinput.Model
	renameID    string
}

// New creates the sidebar.
func New(theme *styles.Theme, client *api.Client, toasts *components.ToastManager) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search chats"
	search.CharLimit = 128

	rename := textinput.New()
	rename.Prompt = "> "
	rename.CharLimit = 128

	return Model{
		theme:       theme,
		client:      client,
		toasts:      toasts,
		searchInput: search,
		renameInput: rename,
	}
}

// Init triggers the initial list load.
func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

// SetSize updates layout dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetActive records the active conversation id and refreshes, matching the
// refresh-on-active-change behavior.
func (m *Model) SetActive(id string) tea.Cmd {
	if m.activeID == id {
		return nil
	}
	m.activeID = id
	return m.refreshCmd()
}

// MenuOpen reports whether a context menu is showing. The root model uses
// this for exclusivity with the user menu.
func (m *Model) MenuOpen() bool {
	return m.mode == modeMenu
}

// Reset drops all loaded list state. Runs on logout and auth expiry so the
// next account never sees the previous account's conversations.
func (m *Model) Reset() {
	m.metas = nil
	m.searchResults = nil
	m.searchQuery = ""
	m.activeID = ""
	m.cursor = 0
	m.mode = modeBrowse
	m.menuFor = ""
	m.menuCursor = 0
	m.renameID = ""
	m.searchInput.Reset()
	m.renameInput.Reset()
}

// CloseMenu closes any open context menu.
func (m *Model) CloseMenu() {
	if m.mode == modeMenu {
		m.mode = modeBrowse
		m.menuFor = ""
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) refreshCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		metas, err := client.ListChats(context.Background())
		return ListLoadedMsg{Metas: metas, Err: err}
	}
}

func (m Model) searchCmd(query string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		metas, err := client.SearchChats(context.Background(), query)
		return SearchResultsMsg{Query: query, Metas: metas, Err: err}
	}
}

func (m Model) renameCmd(id, title string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.RenameChat(context.Background(), id, title)
		return RenameDoneMsg{ID: id, Err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.DeleteChat(context.Background(), id)
		return DeleteDoneMsg{ID: id, Err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles sidebar messages and focused key input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case event.ConversationListChangedMsg:
		return m, m.refreshCmd()

	case event.ActiveConversationClearedMsg:
		m.activeID = ""
		return m, nil

	case ListLoadedMsg:
		if msg.Err != nil {
			m.toasts.Push(components.ToastError, api.UserMessage(msg.Err))
			return m, nil
		}
		m.metas = msg.Metas
		m.clampCursor()
		return m, nil

	case SearchResultsMsg:
		// Stale results for an abandoned query are dropped.
		if m.mode != modeSearch || msg.Query != strings.TrimSpace(m.searchInput.Value()) {
			return m, nil
		}
		if msg.Err != nil {
			m.toasts.Push(components.ToastError, api.UserMessage(msg.Err))
			return m, nil
		}
		m.searchQuery = msg.Query
		m.searchResults = msg.Metas
		m.clampCursor()
		return m, nil

	case RenameDoneMsg:
		if msg.Err != nil {
			m.toasts.Push(components.ToastError, api.UserMessage(msg.Err))
			return m, nil
		}
		m.toasts.Push(components.ToastSuccess, "Renamed")
		return m, m.refreshCmd()

	case DeleteConfirmedMsg:
		return m, m.deleteCmd(msg.ID)

	case DeleteDoneMsg:
		if msg.Err != nil {
			m.toasts.Push(components.ToastError, api.UserMessage(msg.Err))
			return m, nil
		}
		m.toasts.Push(components.ToastSuccess, "Conversation deleted")
		cmds := []tea.Cmd{m.refreshCmd()}
		if msg.ID == m.activeID {
			m.activeID = ""
			cmds = append(cmds, func() tea.Msg { return event.ActiveConversationClearedMsg{} })
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeMenu:
		return m.handleMenuKey(msg)
	case modeRename:
		return m.handleRenameKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "enter":
		if item, ok := m.selected(); ok {
			return m, func() tea.Msg { return event.SelectConversationMsg{ID: item.ID} }
		}
	case "n":
		return m, func() tea.Msg { return event.NewConversationMsg{} }
	case "/":
		m.mode = modeSearch
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.searchResults = nil
		m.cursor = 0
		m.searchInput.Focus()
		return m, textinput.Blink
	case "m":
		if item, ok := m.selected(); ok {
			// Opening this menu implicitly closes any other: there is
			// only one menuFor slot.
			m.mode = modeMenu
			m.menuFor = item.ID
			m.menuCursor = 0
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.searchInput.Blur()
		m.searchResults = nil
		m.searchQuery = ""
		m.cursor = 0
		return m, nil
	case "enter":
		if item, ok := m.selected(); ok {
			m.mode = modeBrowse
			m.searchInput.Blur()
			return m, func() tea.Msg { return event.SelectConversationMsg{ID: item.ID} }
		}
		return m, nil
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	query := strings.TrimSpace(m.searchInput.Value())
	if query == "" {
		// Empty query shows no results, distinct from "no matches".
		m.searchQuery = ""
		m.searchResults = nil
		m.cursor = 0
		return m, cmd
	}
	return m, tea.Batch(cmd, m.searchCmd(query))
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k", "down", "j":
		m.menuCursor = 1 - m.menuCursor
		return m, nil
	case "enter":
		id := m.menuFor
		m.mode = modeBrowse
		m.menuFor = ""
		if m.menuCursor == 0 {
			return m.beginRename(id)
		}
		title := m.titleOf(id)
		return m, func() tea.Msg { return DeleteRequestedMsg{ID: id, Title: title} }
	default:
		// Any outside key closes the menu.
		m.mode = modeBrowse
		m.menuFor = ""
		return m, nil
	}
}

func (m Model) beginRename(id string) (Model, tea.Cmd) {
	m.mode = modeRename
	m.renameID = id
	m.renameInput.SetValue(m.titleOf(id))
	m.renameInput.Focus()
	return m, textinput.Blink
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.renameInput.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.renameInput.Value())
		if title == "" {
			// Client-side rejection: no network call for empty titles.
			m.toasts.Push(components.ToastWarning, "Title cannot be empty")
			return m, nil
		}
		id := m.renameID
		m.mode = modeBrowse
		m.renameInput.Blur()
		return m, m.renameCmd(id, title)
	}

	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

// =============================================================================
// LIST HELPERS
// =============================================================================

// visible returns the list the cursor moves over: search results while
// searching, the full list otherwise (newest first).
func (m *Model) visible() []model.ConversationMeta {
	if m.mode == modeSearch {
		return m.searchResults
	}
	sorted := make([]model.ConversationMeta, len(m.metas))
	copy(sorted, m.metas)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	return sorted
}

func (m *Model) selected() (model.ConversationMeta, bool) {
	items := m.visible()
	if m.cursor < 0 || m.cursor >= len(items) {
		return model.ConversationMeta{}, false
	}
	return items[m.cursor], true
}

func (m *Model) clampCursor() {
	if n := len(m.visible()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) titleOf(id string) string {
	for _, meta := range m.metas {
		if meta.ID == id {
			return meta.Title
		}
	}
	return ""
}

// GroupByBucket splits metas into recency buckets ordered today → older,
// preserving newest-first order within each bucket. Grouping happens at
// render time against the current day boundary.
func GroupByBucket(metas []model.ConversationMeta, now time.Time) map[model.RecencyBucket][]model.ConversationMeta {
	groups := make(map[model.RecencyBucket][]model.ConversationMeta)
	for _, meta := range metas {
		b := model.BucketFor(meta.UpdatedAt, now)
		groups[b] = append(groups[b], meta)
	}
	return groups
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the sidebar.
func (m Model) View() string {
	var lines []string

	if m.mode == modeSearch {
		lines = append(lines, m.searchInput.View())
		if strings.TrimSpace(m.searchInput.Value()) == "" {
			lines = append(lines, m.theme.SidebarSearchEmpty.Render("type to search"))
		} else if len(m.searchResults) == 0 {
			lines = append(lines, m.theme.SidebarSearchEmpty.Render("no matches"))
		} else {
			for i, meta := range m.searchResults {
				lines = append(lines, m.renderItem(meta, i == m.cursor))
			}
		}
		return m.theme.Sidebar.Width(m.width).Height(m.height).Render(
			lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	items := m.visible()
	groups := GroupByBucket(items, time.Now())
	idx := 0
	for _, bucket := range []model.RecencyBucket{
		model.BucketToday,
		model.BucketYesterday,
		model.BucketPrevious7Days,
		model.BucketPrevious30Days,
		model.BucketOlder,
	} {
		metas := groups[bucket]
		if len(metas) == 0 {
			continue
		}
		lines = append(lines, m.theme.BucketHeading.Render(bucket.String()))
		for _, meta := range metas {
			selected := false
			if item, ok := m.selected(); ok && item.ID == meta.ID {
				selected = true
			}
			lines = append(lines, m.renderItem(meta, selected))
			if m.mode == modeMenu && m.menuFor == meta.ID {
				lines = append(lines, m.renderMenu())
			}
			if m.mode == modeRename && m.renameID == meta.ID {
				lines = append(lines, m.renameInput.View())
			}
			idx++
		}
	}
	if len(items) == 0 {
		lines = append(lines, m.theme.SidebarSearchEmpty.Render("no conversations yet"))
	}

	return m.theme.Sidebar.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderItem(meta model.ConversationMeta, selected bool) string {
	title := util.TruncateWidth(meta.Title, m.width-4)
	style := m.theme.SidebarItem
	if meta.ID == m.activeID {
		style = m.theme.SidebarItemActive
	}
	prefix := "  "
	if selected {
		prefix = "> "
	}
	return style.Render(prefix + title)
}

func (m Model) renderMenu() string {
	rename := "  rename"
	del := "  delete"
	if m.menuCursor == 0 {
		rename = "> rename"
	} else {
		del = "> delete"
	}
	return m.theme.SidebarMenu.Render(
		m.theme.SidebarMenuItem.Render(rename) + "\n" +
			m.theme.SidebarMenuItem.Render(del))
}
