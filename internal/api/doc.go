// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the single point of contact with the health insight
// backend. It owns the HTTP adapter (bearer auth, error taxonomy, response
// size caps) and the typed call surfaces for the auth, chat, analysis, and
// healthcare credential endpoint groups.
//
// The adapter deliberately does not retry, queue, or deduplicate in-flight
// requests; failures surface to the caller, which rolls back optimistic
// state and shows a toast.
package api
