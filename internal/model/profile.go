// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Profile is the authenticated user's account as reported by the backend.
// Polled periodically so a role change (HC approval) shows up without a
// re-login.
type Profile struct {
	Name  string
	Email string
	Role  UserRole
}

// =============================================================================
// HEALTHCARE CREDENTIAL APPLICATION
// =============================================================================

// HCStatus is the review state of a healthcare credential application.
type HCStatus string

const (
	HCStatusPending  HCStatus = "PENDING"
	HCStatusApproved HCStatus = "APPROVED"
	HCStatusRejected HCStatus = "REJECTED"
)

// HCApplication is a submitted healthcare credential application.
// Read-only from the client once submitted; the only mutation the client
// may perform is cancellation.
type HCApplication struct {
	Status          HCStatus
	FullName        string
	Qualification   string
	CompanyName     string
	AppliedAt       time.Time
	RejectionReason string
}
