// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sidebar

import (
	"github.com/healthinsight/insight-tui/internal/model"
)

// =============================================================================
// SIDEBAR MESSAGES
// =============================================================================

// ListLoadedMsg delivers a refreshed conversation list.
type ListLoadedMsg struct {
	Metas []model.ConversationMeta
	Err   error
}

// SearchResultsMsg delivers server-side search results. Results for a
// query the user has since changed are dropped on arrival.
type SearchResultsMsg struct {
	Query string
	Metas []model.ConversationMeta
	Err   error
}

// RenameDoneMsg reports a rename outcome.
type RenameDoneMsg struct {
	ID  string
	Err error
}

// DeleteRequestedMsg asks the root model to confirm a delete. The root
// shows the confirmation prompt and dispatches DeleteConfirmedMsg only on
// explicit accept.
type DeleteRequestedMsg struct {
	ID    string
	Title string
}

// DeleteConfirmedMsg fires the actual delete call.
type DeleteConfirmedMsg struct {
	ID string
}

// DeleteDoneMsg reports a delete outcome.
type DeleteDoneMsg struct {
	ID  string
	Err error
}
