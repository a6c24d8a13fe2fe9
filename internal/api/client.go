// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// MaxResponseSize caps response bodies at 10MB to bound memory use.
	MaxResponseSize = 10 * 1024 * 1024

	// DefaultTimeout bounds every request including uploads.
	DefaultTimeout = 60 * time.Second
)

// Shared HTTP client with connection pooling.
var httpClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	},
}

// =============================================================================
// CLIENT
// =============================================================================

// Client performs requests against the backend REST surface. It attaches
// the bearer token from the session context and routes 401s through the
// session's single auth-failure hook.
type Client struct {
	baseURL string
	timeout time.Duration
	session *SessionContext

	// limiter smooths request bursts (search-as-you-type, rapid sends).
	// It never queues beyond the burst; this is not a retry mechanism.
	limiter *rate.Limiter
}

// NewClient creates a client for the given base URL, e.g.
// "https://api.example.com/api".
func NewClient(baseURL string, session *SessionContext) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		session: session,
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

// Session returns the client's session context.
func (c *Client) Session() *SessionContext {
	return c.session
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// requestOpts tweaks per-call behavior.
type requestOpts struct {
	// inlineAuthError suppresses the global 401 hook so login/register can
	// show the failure inline instead of forcing a logout loop.
	inlineAuthError bool
}

// doJSON issues a request with an optional JSON body and decodes the JSON
// response into out (which may be nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, opts requestOpts) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out, opts)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any, opts requestOpts) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := newStatusError(resp.StatusCode, respBody)
		if resp.StatusCode == 401 && !opts.inlineAuthError {
			c.session.handleAuthFailure()
		}
		return statusErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// =============================================================================
// MULTIPART UPLOADS
// =============================================================================

// filePart names one file field for a multipart request.
type filePart struct {
	field string
	path  string
	name  string
}

// doMultipart issues a multipart POST with form fields and file parts, then
// decodes the JSON response into out. The body is assembled in memory;
// uploads are single medical documents, well under the response cap.
func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]string, files []filePart, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}

	for _, fp := range files {
		f, err := os.Open(fp.path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", fp.path, err)
		}
		name := fp.name
		if name == "" {
			name = filepath.Base(fp.path)
		}
		part, err := w.CreateFormFile(fp.field, name)
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return fmt.Errorf("failed to read %s: %w", fp.path, err)
		}
		f.Close()
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, &buf, w.FormDataContentType(), out, requestOpts{})
}
