// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/healthinsight/insight-tui/internal/model"
)

// =============================================================================
// WIRE SHAPES
// =============================================================================

type chatMeta struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type wireFile struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type wireMessage struct {
	Role             string     `json:"role"`
	Content          string     `json:"content"`
	Files            []wireFile `json:"files"`
	UserRole         string     `json:"userRole"`
	UploadedFileName string     `json:"uploadedFileName"`
}

type chatDetail struct {
	ID       string        `json:"_id"`
	Title    string        `json:"title"`
	Messages []wireMessage `json:"messages"`
}

func (w wireMessage) toModel() model.Message {
	msg := model.NewUserMessage(w.Content)
	if w.Role == string(model.RoleAssistant) {
		msg.Role = model.RoleAssistant
	}
	msg.AuthorRole = model.UserRole(w.UserRole)
	msg.UploadedFileName = w.UploadedFileName
	for _, f := range w.Files {
		kind := model.AttachmentImage
		if strings.EqualFold(f.Type, "pdf") || strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
			kind = model.AttachmentPDF
		}
		msg.Attachments = append(msg.Attachments, model.Attachment{
			ID:   f.URL,
			Path: f.URL,
			Name: f.Name,
			Kind: kind,
		})
	}
	return msg
}

// =============================================================================
// CHAT ENDPOINTS
// =============================================================================

// CreateChat allocates a new conversation server-side and returns its meta.
func (c *Client) CreateChat(ctx context.Context, title string) (model.ConversationMeta, error) {
	var resp chatMeta
	body := map[string]string{"title": norm.NFC.String(title)}
	if err := c.doJSON(ctx, http.MethodPost, "/chats", body, &resp, requestOpts{}); err != nil {
		return model.ConversationMeta{}, err
	}
	return model.ConversationMeta{ID: resp.ID, Title: resp.Title, UpdatedAt: resp.UpdatedAt}, nil
}

// ListChats returns all of the user's conversations, newest first as the
// backend orders them.
func (c *Client) ListChats(ctx context.Context) ([]model.ConversationMeta, error) {
	var resp []chatMeta
	if err := c.doJSON(ctx, http.MethodGet, "/chats", nil, &resp, requestOpts{}); err != nil {
		return nil, err
	}
	metas := make([]model.ConversationMeta, 0, len(resp))
	for _, m := range resp {
		metas = append(metas, model.ConversationMeta{ID: m.ID, Title: m.Title, UpdatedAt: m.UpdatedAt})
	}
	return metas, nil
}

// SearchChats runs a server-side title search. Callers are responsible for
// the empty-query short circuit; this always issues the request.
func (c *Client) SearchChats(ctx context.Context, query string) ([]model.ConversationMeta, error) {
	q := url.Values{"q": []string{norm.NFC.String(query)}}
	var resp []chatMeta
	if err := c.doJSON(ctx, http.MethodGet, "/chats/search?"+q.Encode(), nil, &resp, requestOpts{}); err != nil {
		return nil, err
	}
	metas := make([]model.ConversationMeta, 0, len(resp))
	for _, m := range resp {
		metas = append(metas, model.ConversationMeta{ID: m.ID, Title: m.Title, UpdatedAt: m.UpdatedAt})
	}
	return metas, nil
}

// GetChat fetches a conversation's full message history mapped into the
// display shape.
func (c *Client) GetChat(ctx context.Context, id string) (*model.Conversation, error) {
	var resp chatDetail
	if err := c.doJSON(ctx, http.MethodGet, "/chats/"+url.PathEscape(id), nil, &resp, requestOpts{}); err != nil {
		return nil, err
	}
	conv := &model.Conversation{ID: resp.ID, Title: resp.Title}
	for _, wm := range resp.Messages {
		conv.Messages = append(conv.Messages, wm.toModel())
	}
	return conv, nil
}

// UpdateChat applies a generic field update to a conversation.
func (c *Client) UpdateChat(ctx context.Context, id string, fields map[string]any) error {
	return c.doJSON(ctx, http.MethodPut, "/chats/"+url.PathEscape(id), fields, nil, requestOpts{})
}

// RenameChat sets a conversation title. Empty titles are rejected by the
// sidebar before this is ever called.
func (c *Client) RenameChat(ctx context.Context, id, title string) error {
	body := map[string]string{"title": norm.NFC.String(title)}
	return c.doJSON(ctx, http.MethodPut, "/chats/"+url.PathEscape(id)+"/rename", body, nil, requestOpts{})
}

// DeleteChat removes a conversation.
func (c *Client) DeleteChat(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/chats/"+url.PathEscape(id), nil, nil, requestOpts{})
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

type sendMessageResponse struct {
	Reply string `json:"reply"`
}

// SendMessage posts a plain chat turn and returns the assistant reply.
func (c *Client) SendMessage(ctx context.Context, chatID, message string) (string, error) {
	var resp sendMessageResponse
	err := c.doJSON(ctx, http.MethodPost, "/chats/"+url.PathEscape(chatID)+"/messages",
		sendMessageRequest{Message: message}, &resp, requestOpts{})
	if err != nil {
		return "", err
	}
	return resp.Reply, nil
}
