// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI pieces: toasts, confirmation
// prompts, the user menu, and the healthcare credential application form.
package components

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/healthinsight/insight-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind determines styling and default duration.
type ToastKind int

const (
	ToastStatus ToastKind = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// defaultDuration returns how long a toast stays up before auto-dismissal.
// Errors linger longest so they can be read.
func (k ToastKind) defaultDuration() time.Duration {
	switch k {
	case ToastError:
		return 8 * time.Second
	case ToastWarning:
		return 6 * time.Second
	default:
		return 4 * time.Second
	}
}

// Toast is one non-blocking notification.
type Toast struct {
	ID       string
	Kind     ToastKind
	Message  string
	Deadline time.Time
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

const maxToasts = 5

// ToastManager holds the active toast stack, newest first. Safe for use
// from command goroutines.
type ToastManager struct {
	mu     sync.Mutex
	toasts []Toast
}

// NewToastManager creates an empty manager.
func NewToastManager() *ToastManager {
	return &ToastManager{}
}

// Push adds a toast with the kind's default duration.
func (tm *ToastManager) Push(kind ToastKind, message string) string {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	t := Toast{
		ID:       uuid.NewString(),
		Kind:     kind,
		Message:  message,
		Deadline: time.Now().Add(kind.defaultDuration()),
	}
	tm.toasts = append([]Toast{t}, tm.toasts...)
	if len(tm.toasts) > maxToasts {
		tm.toasts = tm.toasts[:maxToasts]
	}
	return t.ID
}

// Dismiss removes a toast by id.
func (tm *ToastManager) Dismiss(id string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for i, t := range tm.toasts {
		if t.ID == id {
			tm.toasts = append(tm.toasts[:i], tm.toasts[i+1:]...)
			return
		}
	}
}

// Tick drops expired toasts and reports whether any remain.
func (tm *ToastManager) Tick(now time.Time) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	kept := tm.toasts[:0]
	for _, t := range tm.toasts {
		if t.Deadline.After(now) {
			kept = append(kept, t)
		}
	}
	tm.toasts = kept
	return len(tm.toasts) > 0
}

// Active returns a copy of the current stack.
func (tm *ToastManager) Active() []Toast {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	out := make([]Toast, len(tm.toasts))
	copy(out, tm.toasts)
	return out
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// ToastTickMsg advances toast expiry.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd schedules the next expiry check.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// RENDERING
// =============================================================================

// RenderToastStack overlays the active toasts in the bottom-right corner
// of a width x height cell area. Returns "" when there is nothing to show.
func (tm *ToastManager) RenderToastStack(theme *styles.Theme, width, height int) string {
	toasts := tm.Active()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		var style lipgloss.Style
		prefix := ""
		switch t.Kind {
		case ToastError:
			style = theme.ErrorText
			prefix = "✗ "
		case ToastWarning:
			style = theme.WarningText
			prefix = "! "
		case ToastSuccess:
			style = theme.SuccessText
			prefix = "✓ "
		default:
			style = theme.StatusBar
		}
		box := lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(styles.Overlay).
			Padding(0, 1).
			Render(style.Render(prefix + t.Message))
		rendered = append(rendered, box)
	}

	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	return lipgloss.Place(width, height, lipgloss.Right, lipgloss.Bottom, stack)
}
