// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App    lipgloss.Style
	Header lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	PendingMessage  lipgloss.Style
	AttachmentChip  lipgloss.Style

	// ==========================================================================
	// FINDING SEVERITY STYLES (HC/ADMIN only)
	// ==========================================================================

	FindingBorderline lipgloss.Style
	FindingCritical   lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar            lipgloss.Style
	BucketHeading      lipgloss.Style
	SidebarItem        lipgloss.Style
	SidebarItemActive  lipgloss.Style
	SidebarMenu        lipgloss.Style
	SidebarMenuItem    lipgloss.Style
	SidebarSearchEmpty lipgloss.Style

	// ==========================================================================
	// STATUS / AUTH STYLES
	// ==========================================================================

	StatusBar   lipgloss.Style
	RoleBadge   lipgloss.Style
	FormLabel   lipgloss.Style
	FormError   lipgloss.Style
	Spinner     lipgloss.Style
	SuccessText lipgloss.Style
	ErrorText   lipgloss.Style
	WarningText lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Padding(0, 1)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Teal).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2).
		MarginRight(4)

	t.PendingMessage = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.AttachmentChip = lipgloss.NewStyle().
		Foreground(Purple).
		Background(Surface).
		Padding(0, 1)

	// Finding severities: borderline is emphasized, critical shouts.
	t.FindingBorderline = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.FindingCritical = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true).
		Underline(true)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.BucketHeading = lipgloss.NewStyle().
		Foreground(TextMuted).
		Bold(true).
		MarginTop(1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.SidebarItemActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal).
		Padding(0, 1)

	t.SidebarMenu = lipgloss.NewStyle().
		Background(Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.SidebarMenuItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SidebarSearchEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.RoleBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1).
		Bold(true)

	t.FormLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.FormError = lipgloss.NewStyle().
		Foreground(Rose)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Teal)

	t.SuccessText = lipgloss.NewStyle().Foreground(Green)
	t.ErrorText = lipgloss.NewStyle().Foreground(Rose)
	t.WarningText = lipgloss.NewStyle().Foreground(Amber)
}

// SeverityStyle returns the style for a finding severity tier, or a
// zero style for normal findings.
func (t *Theme) SeverityStyle(critical bool) lipgloss.Style {
	if critical {
		return t.FindingCritical
	}
	return t.FindingBorderline
}
