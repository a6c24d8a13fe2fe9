// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the client-side data shapes: conversations,
// messages, pending attachments, user profiles, and healthcare credential
// applications. The backend owns persistence; everything here is the
// in-memory view the TUI renders from.
package model
