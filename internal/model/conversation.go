// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is the active thread of messages for one chat id.
// The backend is authoritative; this is the client-side working copy.
type Conversation struct {
	ID        string
	Title     string
	UpdatedAt time.Time
	Messages  []Message
}

// NewConversation returns an empty conversation with no backend id yet.
// The id is allocated lazily by the server on first send.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds a message to the end of the thread.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
}

// Remove deletes the message with the given id, if present. Used to roll
// back an optimistic message after its network call fails.
func (c *Conversation) Remove(id string) bool {
	for i, m := range c.Messages {
		if m.ID == id {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			return true
		}
	}
	return false
}

// Confirm clears the pending flag on the message with the given id.
func (c *Conversation) Confirm(id string) {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			c.Messages[i].Pending = false
			return
		}
	}
}

// Len returns the number of messages in the thread.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// =============================================================================
// LIST METADATA
// =============================================================================

// ConversationMeta is the sidebar's view of one conversation.
type ConversationMeta struct {
	ID        string
	Title     string
	UpdatedAt time.Time
}

// =============================================================================
// RECENCY BUCKETS
// =============================================================================

// RecencyBucket groups conversations by how recently they were updated.
type RecencyBucket int

const (
	BucketToday RecencyBucket = iota
	BucketYesterday
	BucketPrevious7Days
	BucketPrevious30Days
	BucketOlder
)

// String returns the sidebar heading for the bucket.
func (b RecencyBucket) String() string {
	switch b {
	case BucketToday:
		return "Today"
	case BucketYesterday:
		return "Yesterday"
	case BucketPrevious7Days:
		return "Previous 7 days"
	case BucketPrevious30Days:
		return "Previous 30 days"
	default:
		return "Older"
	}
}

// BucketFor places an update timestamp into a recency bucket relative to
// now. Day boundaries are wall-clock local days, so a conversation updated
// at 23:59 moves from Today to Yesterday one minute later.
func BucketFor(updatedAt, now time.Time) RecencyBucket {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case !updatedAt.Before(dayStart):
		return BucketToday
	case !updatedAt.Before(dayStart.AddDate(0, 0, -1)):
		return BucketYesterday
	case !updatedAt.Before(dayStart.AddDate(0, 0, -7)):
		return BucketPrevious7Days
	case !updatedAt.Before(dayStart.AddDate(0, 0, -30)):
		return BucketPrevious30Days
	default:
		return BucketOlder
	}
}
