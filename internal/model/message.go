// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthinsight/insight-tui/internal/util"
)

// =============================================================================
// ROLES
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserRole is the account-level role returned by the profile endpoint.
// HC and Admin unlock finding highlights and per-message export.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleHC    UserRole = "HC"
	UserRoleAdmin UserRole = "ADMIN"
)

// Elevated reports whether the role unlocks clinical rendering features.
func (r UserRole) Elevated() bool {
	return r == UserRoleHC || r == UserRoleAdmin
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

// AttachmentKind distinguishes the two accepted upload types.
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentPDF   AttachmentKind = "pdf"
)

// Attachment is a locally staged file pending upload and analysis.
// It exists only during the compose step; a sent message carries its own
// immutable copy of the attachment metadata.
type Attachment struct {
	ID   string
	Path string
	Name string
	Kind AttachmentKind

	// previewReleased marks that the preview resource was given back.
	previewReleased bool
}

// NewAttachment stages a file for upload. IDs are fresh UUIDs so two
// attachments with the same file name never collide.
func NewAttachment(path, name string, kind AttachmentKind) *Attachment {
	return &Attachment{
		ID:   uuid.NewString(),
		Path: path,
		Name: name,
		Kind: kind,
	}
}

// ReleasePreview frees the attachment's preview resource. Safe to call twice.
func (a *Attachment) ReleasePreview() {
	a.previewReleased = true
}

// PreviewReleased reports whether the preview resource was released.
func (a *Attachment) PreviewReleased() bool {
	return a.previewReleased
}

// =============================================================================
// MESSAGES
// =============================================================================

// Message is one turn in a conversation as the client renders it.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Timestamp time.Time

	// Attachments rendered with this message. Immutable once the message
	// is in a conversation; a new analysis produces a new message.
	Attachments []Attachment

	// AuthorRole is the account role held when the turn was produced.
	// Gates finding highlights and export, never alters Text.
	AuthorRole UserRole

	// UploadedFileName is the server-side stored name for an analyzed file.
	UploadedFileName string

	// Pending marks an optimistic message not yet confirmed by the backend.
	Pending bool
}

// NewUserMessage creates a user turn stamped now.
func NewUserMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant turn stamped now.
func NewAssistantMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// Preview returns a single-line preview of the message text, truncated to
// maxWidth terminal cells.
func (m *Message) Preview(maxWidth int) string {
	return util.TruncateWidth(util.CollapseSpace(m.Text), maxWidth)
}
