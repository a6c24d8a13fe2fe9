// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

// Sentinel errors for backend failures. Callers branch with errors.Is.
var (
	// ErrAuthFailed indicates a 401. Outside login/register this also
	// triggers the session's auth-failure callback.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrInvalidRequest indicates a 4xx validation failure.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound indicates a missing resource (deleted conversation).
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates a 429 from the backend.
	ErrRateLimited = errors.New("rate limited")

	// ErrServerError indicates a 5xx backend failure.
	ErrServerError = errors.New("server error")
)

// APIError carries the status code and server-provided message alongside
// the sentinel it unwraps to.
type APIError struct {
	StatusCode int
	Message    string
	sentinel   error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.sentinel
}

// errorBody is the backend's error envelope. Both keys appear in the wild.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// newStatusError maps an HTTP status code and response body to an APIError
// wrapping the matching sentinel.
func newStatusError(statusCode int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}

	var sentinel error
	switch {
	case statusCode == 401:
		sentinel = ErrAuthFailed
	case statusCode == 404:
		sentinel = ErrNotFound
	case statusCode == 429:
		sentinel = ErrRateLimited
	case statusCode >= 500:
		sentinel = ErrServerError
	default:
		sentinel = ErrInvalidRequest
	}

	return &APIError{StatusCode: statusCode, Message: msg, sentinel: sentinel}
}

// UserMessage converts an API error into a short string suitable for a
// toast. Server-provided messages win over generic phrasing.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, ErrAuthFailed):
		return "Session expired. Please log in again."
	case errors.Is(err, ErrNotFound):
		return "Not found. It may have been deleted."
	case errors.Is(err, ErrRateLimited):
		return "Too many requests. Give it a moment."
	case errors.Is(err, ErrServerError):
		return "The service is having trouble. Try again shortly."
	case err != nil:
		return err.Error()
	default:
		return ""
	}
}
