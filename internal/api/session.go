// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"sync"
)

// TokenPersister saves and clears the token across restarts.
// *storage.TokenStore satisfies this.
type TokenPersister interface {
	Save(token string) error
	Clear() error
}

// SessionContext holds the bearer token and the single auth-failure hook.
// Every API call reads the token through it, and any call's 401 handler may
// clear it, so access is mutex-guarded. This replaces ad-hoc global token
// reads scattered across call sites.
type SessionContext struct {
	mu            sync.Mutex
	token         string
	persister     TokenPersister
	onAuthFailure func()
}

// NewSessionContext creates a session seeded with token (may be empty).
// persister is optional; pass nil for in-memory-only sessions in tests.
func NewSessionContext(token string, persister TokenPersister) *SessionContext {
	return &SessionContext{token: token, persister: persister}
}

// Token returns the current bearer token, or "" when logged out.
func (s *SessionContext) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Authenticated reports whether a token is present. Token freshness is the
// backend's problem; the gate flips purely on presence.
func (s *SessionContext) Authenticated() bool {
	return s.Token() != ""
}

// SetToken stores and persists a new token after login.
func (s *SessionContext) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	p := s.persister
	s.mu.Unlock()

	if p != nil {
		return p.Save(token)
	}
	return nil
}

// Clear drops the token from memory and disk. Used by logout and account
// deletion.
func (s *SessionContext) Clear() error {
	s.mu.Lock()
	s.token = ""
	p := s.persister
	s.mu.Unlock()

	if p != nil {
		return p.Clear()
	}
	return nil
}

// SetAuthFailureCallback registers the one hook run when any call hits a
// 401 outside login/register.
func (s *SessionContext) SetAuthFailureCallback(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAuthFailure = fn
}

// handleAuthFailure clears the token and fires the callback. The callback
// runs outside the lock; it typically sends a message into the TUI program.
func (s *SessionContext) handleAuthFailure() {
	s.mu.Lock()
	s.token = ""
	p := s.persister
	fn := s.onAuthFailure
	s.mu.Unlock()

	if p != nil {
		_ = p.Clear()
	}
	if fn != nil {
		fn()
	}
}
