// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/healthinsight/insight-tui/internal/api"
	"github.com/healthinsight/insight-tui/internal/classify"
	"github.com/healthinsight/insight-tui/internal/model"
	"github.com/healthinsight/insight-tui/internal/ui/components"
	"github.com/healthinsight/insight-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// defaultChatTitle names lazily created conversations.
const defaultChatTitle = "Health Insight Chat"

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme      *styles.Theme
	client     *api.Client
	classifier classify.Classifier
	toasts     *components.ToastManager

	width  int
	height int

	// Active conversation. conversation.ID == "" until the backend
	// allocates one on first send.
	conversation *model.Conversation

	// Attachments staged for the next send. Order-preserving adds and
	// removes; never deduplicated by name.
	pending []model.Attachment

	// sending is true for the duration of exactly one in-flight turn.
	// It drives the typing/analyzing indicator and is cleared by the
	// completion message on success and failure alike.
	sending bool

	// viewerRole gates finding highlights and export availability.
	viewerRole model.UserRole

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	exportDir string
}

// New creates the chat component.
func New(theme *styles.Theme, client *api.Client, classifier classify.Classifier, toasts *components.ToastManager, exportDir string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your health, or paste lab values..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	return Model{
		theme:        theme,
		client:       client,
		classifier:   classifier,
		toasts:       toasts,
		conversation: model.NewConversation(),
		viewport:     vp,
		input:        ti,
		spinner:      sp,
		exportDir:    exportDir,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize updates layout dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	// Input row, attachment row, and status line live below the viewport.
	m.viewport.Height = height - 4
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	m.refreshViewport()
}

// SetViewerRole updates the role used for display gating.
func (m *Model) SetViewerRole(role model.UserRole) {
	if m.viewerRole != role {
		m.viewerRole = role
		m.refreshViewport()
	}
}

// ActiveID returns the active conversation id, "" when none.
func (m *Model) ActiveID() string {
	return m.conversation.ID
}

// MessageCount returns the current thread length. Used by tests asserting
// optimistic rollback.
func (m *Model) MessageCount() int {
	return m.conversation.Len()
}

// PendingAttachments returns a copy of the staged attachment list.
func (m *Model) PendingAttachments() []model.Attachment {
	out := make([]model.Attachment, len(m.pending))
	copy(out, m.pending)
	return out
}

// =============================================================================
// ATTACHMENT LIFECYCLE
// =============================================================================

// attachmentKindFor maps a file extension onto an attachment kind.
// Unsupported extensions return "".
func attachmentKindFor(path string) model.AttachmentKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return model.AttachmentPDF
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp":
		return model.AttachmentImage
	default:
		return ""
	}
}

// AttachFiles stages files for the next send. Purely additive: the same
// path can be staged twice and each staging gets its own id. Unsupported
// types are skipped with a warning toast.
func (m *Model) AttachFiles(paths ...string) {
	for _, path := range paths {
		kind := attachmentKindFor(path)
		if kind == "" {
			m.toasts.Push(components.ToastWarning, "Unsupported file type: "+filepath.Base(path))
			continue
		}
		att := model.NewAttachment(path, filepath.Base(path), kind)
		m.pending = append(m.pending, *att)
	}
}

// RemoveAttachment drops one staged attachment by id and releases its
// preview resource.
func (m *Model) RemoveAttachment(id string) bool {
	for i := range m.pending {
		if m.pending[i].ID == id {
			m.pending[i].ReleasePreview()
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return true
		}
	}
	return false
}

// releaseAttachment removes an attachment after a successful analysis.
func (m *Model) releaseAttachment(id string) {
	m.RemoveAttachment(id)
}

// =============================================================================
// CONVERSATION SWITCHING
// =============================================================================

// StartNew clears the active id and message list locally. No network call;
// the next send allocates a fresh conversation.
func (m *Model) StartNew() {
	m.conversation = model.NewConversation()
	m.refreshViewport()
}

// Reset drops every piece of session-scoped state: transcript, active id,
// staged attachments, viewer role, and any in-flight indicator. Runs on
// logout and auth expiry so nothing carries over to the next account.
func (m *Model) Reset() {
	for i := range m.pending {
		m.pending[i].ReleasePreview()
	}
	m.pending = nil
	m.sending = false
	m.viewerRole = model.UserRoleUser
	m.input.Reset()
	m.StartNew()
}
