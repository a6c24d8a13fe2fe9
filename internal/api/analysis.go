// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/healthinsight/insight-tui/internal/model"
)

// =============================================================================
// ANALYSIS ENDPOINTS
// =============================================================================

// AnalysisResult is the backend's insight for a pasted report or uploaded
// document.
type AnalysisResult struct {
	Insight  string `json:"insight"`
	ChatID   string `json:"chatId"`
	UserRole string `json:"userRole"`

	// Upload-only fields.
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

// AuthorRole returns the role the backend recorded for this analysis,
// defaulting to USER when absent.
func (r AnalysisResult) AuthorRole() model.UserRole {
	if r.UserRole == "" {
		return model.UserRoleUser
	}
	return model.UserRole(r.UserRole)
}

type analyzeReportRequest struct {
	ReportText string `json:"reportText"`
	ChatID     string `json:"chatId,omitempty"`
}

// AnalyzeReport sends pasted report text for analysis. chatID may be empty;
// the backend then allocates a conversation and returns its id.
func (c *Client) AnalyzeReport(ctx context.Context, reportText, chatID string) (AnalysisResult, error) {
	var resp AnalysisResult
	err := c.doJSON(ctx, http.MethodPost, "/analysis/report",
		analyzeReportRequest{ReportText: reportText, ChatID: chatID}, &resp, requestOpts{})
	return resp, err
}

// UploadAndAnalyze sends a staged file (plus an optional free-text note)
// for analysis. chatID may be empty for the same lazy-allocation behavior.
func (c *Client) UploadAndAnalyze(ctx context.Context, att model.Attachment, note, chatID string) (AnalysisResult, error) {
	fields := map[string]string{
		"chatId":     chatID,
		"reportText": note,
	}
	files := []filePart{{field: "file", path: att.Path, name: att.Name}}

	var resp AnalysisResult
	err := c.doMultipart(ctx, "/analysis/upload", fields, files, &resp)
	return resp, err
}
