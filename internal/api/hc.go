// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/healthinsight/insight-tui/internal/model"
)

// =============================================================================
// HEALTHCARE CREDENTIAL ENDPOINTS
// =============================================================================

// HCApplicationForm is the client-side application payload. Validation
// (required fields present, files exist) happens in the form component
// before submission.
type HCApplicationForm struct {
	FullName           string
	Qualification      string
	CompanyName        string
	ProfilePicturePath string
	IDDocumentPath     string
}

// SubmitHCApplication uploads a healthcare credential application.
func (c *Client) SubmitHCApplication(ctx context.Context, form HCApplicationForm) error {
	fields := map[string]string{
		"fullName":      form.FullName,
		"qualification": form.Qualification,
		"companyName":   form.CompanyName,
	}
	files := []filePart{
		{field: "profilePicture", path: form.ProfilePicturePath},
		{field: "aadhaarDocument", path: form.IDDocumentPath},
	}
	return c.doMultipart(ctx, "/hc/apply", fields, files, nil)
}

type hcApplicationWire struct {
	Status          string    `json:"status"`
	FullName        string    `json:"fullName"`
	Qualification   string    `json:"qualification"`
	CompanyName     string    `json:"companyName"`
	AppliedAt       time.Time `json:"appliedAt"`
	RejectionReason string    `json:"rejectionReason"`
}

type myApplicationResponse struct {
	HasApplication bool               `json:"hasApplication"`
	Application    *hcApplicationWire `json:"application"`
}

// MyHCApplication returns the user's application, or nil when none exists.
func (c *Client) MyHCApplication(ctx context.Context) (*model.HCApplication, error) {
	var resp myApplicationResponse
	if err := c.doJSON(ctx, http.MethodGet, "/hc/my-application", nil, &resp, requestOpts{}); err != nil {
		return nil, err
	}
	if !resp.HasApplication || resp.Application == nil {
		return nil, nil
	}
	app := resp.Application
	return &model.HCApplication{
		Status:          model.HCStatus(app.Status),
		FullName:        app.FullName,
		Qualification:   app.Qualification,
		CompanyName:     app.CompanyName,
		AppliedAt:       app.AppliedAt,
		RejectionReason: app.RejectionReason,
	}, nil
}

// CancelHCApplication withdraws a pending application.
func (c *Client) CancelHCApplication(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/hc/my-application", nil, nil, requestOpts{})
}
