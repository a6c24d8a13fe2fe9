// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/healthinsight/insight-tui/internal/model"
)

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token and stores it in the
// session context. A 401 here surfaces inline; it must not trip the global
// logout hook.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login",
		loginRequest{Email: email, Password: password}, &resp,
		requestOpts{inlineAuthError: true})
	if err != nil {
		return err
	}
	return c.session.SetToken(resp.Token)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. The caller logs in separately afterward.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/register",
		registerRequest{Name: name, Email: email, Password: password}, nil,
		requestOpts{inlineAuthError: true})
}

type profileResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Profile fetches the authenticated user's profile. Polled periodically to
// detect role changes after HC approval.
func (c *Client) Profile(ctx context.Context) (model.Profile, error) {
	var resp profileResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/profile", nil, &resp, requestOpts{}); err != nil {
		return model.Profile{}, err
	}
	role := model.UserRole(resp.Role)
	if role == "" {
		role = model.UserRoleUser
	}
	return model.Profile{Name: resp.Name, Email: resp.Email, Role: role}, nil
}

// DeleteAccount removes the account server-side and clears the session.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/auth/delete", nil, nil, requestOpts{}); err != nil {
		return err
	}
	return c.session.Clear()
}
