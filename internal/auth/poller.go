// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/healthinsight/insight-tui/internal/api"
)

// =============================================================================
// PROFILE POLLER
// =============================================================================

// PollTickMsg fires when the next profile refresh is due.
type PollTickMsg struct {
	Time time.Time
}

// Poller refreshes the profile on a fixed interval so role changes made
// server-side (an HC approval, a revocation) reach the UI without a restart.
type Poller struct {
	mu       sync.Mutex
	client   *api.Client
	interval time.Duration
	paused   bool
}

// NewPoller creates a poller. Intervals below a second are clamped.
func NewPoller(client *api.Client, interval time.Duration) *Poller {
	if interval < time.Second {
		interval = time.Second
	}
	return &Poller{client: client, interval: interval}
}

// SetInterval adjusts the polling cadence, taking effect on the next tick.
func (p *Poller) SetInterval(interval time.Duration) {
	if interval < time.Second {
		interval = time.Second
	}
	p.mu.Lock()
	p.interval = interval
	p.mu.Unlock()
}

// Pause stops profile fetches without stopping the tick loop. Used while
// signed out so the poller never fires unauthenticated requests.
func (p *Poller) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

// Resume re-enables fetches.
func (p *Poller) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
}

// TickCmd schedules the next poll tick.
func (p *Poller) TickCmd() tea.Cmd {
	p.mu.Lock()
	interval := p.interval
	p.mu.Unlock()
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return PollTickMsg{Time: t}
	})
}

// HandleTick fetches the profile when active and always schedules the next
// tick, so a pause and resume never needs to restart the loop.
func (p *Poller) HandleTick() tea.Cmd {
	p.mu.Lock()
	paused := p.paused
	client := p.client
	p.mu.Unlock()

	if paused {
		return p.TickCmd()
	}

	fetch := func() tea.Msg {
		profile, err := client.Profile(context.Background())
		return ProfileLoadedMsg{Profile: profile, Err: err}
	}
	return tea.Batch(fetch, p.TickCmd())
}
