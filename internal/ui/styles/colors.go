// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive pairs keep both dark and light terminals readable.
var (
	Teal   = lipgloss.AdaptiveColor{Light: "#0f766e", Dark: "#2dd4bf"}
	Purple = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"}
	Amber  = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"}
	Rose   = lipgloss.AdaptiveColor{Light: "#be123c", Dark: "#fb7185"}
	Green  = lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#4ade80"}

	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1f2937", Dark: "#e5e7eb"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#4b5563", Dark: "#9ca3af"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#6b7280"}
	TextInverse   = lipgloss.AdaptiveColor{Light: "#f9fafb", Dark: "#111827"}

	Surface    = lipgloss.AdaptiveColor{Light: "#f3f4f6", Dark: "#1f2937"}
	SurfaceDim = lipgloss.AdaptiveColor{Light: "#e5e7eb", Dark: "#111827"}
	Overlay    = lipgloss.AdaptiveColor{Light: "#d1d5db", Dark: "#374151"}
)
