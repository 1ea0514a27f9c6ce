// Package sync schedules periodic reloads of the task list and tracks the
// state of the last reload for the header.
package sync

import (
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SyncState represents the current state of a reload.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the outcome of the most recent reload.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// TickMsg is a tea.Msg asking the application to reload.
type TickMsg struct {
	At  time.Time
	gen int
}

// Poller emits TickMsg on a fixed interval and records reload state. A
// zero interval disables ticking; Begin and Finish still track manual
// reloads.
type Poller struct {
	interval time.Duration
	mu       gosync.Mutex
	status   SyncStatus
	gen      int
	running  bool
}

// New creates a Poller ticking every interval.
func New(interval time.Duration) *Poller {
	return &Poller{interval: interval}
}

// Interval returns the tick interval.
func (p *Poller) Interval() time.Duration { return p.interval }

// Start begins a new tick chain, superseding any previous one.
func (p *Poller) Start() tea.Cmd {
	if p.interval <= 0 {
		return nil
	}
	p.mu.Lock()
	p.gen++
	p.running = true
	gen := p.gen
	p.mu.Unlock()
	return p.schedule(gen)
}

// SetInterval replaces the tick interval and restarts the chain. Ticks of
// the previous chain are ignored.
func (p *Poller) SetInterval(d time.Duration) tea.Cmd {
	p.mu.Lock()
	p.interval = d
	p.running = false
	p.gen++
	p.mu.Unlock()
	return p.Start()
}

// Stop halts ticking. Ticks already in flight are ignored.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.gen++
}

// Next reports whether msg belongs to the live tick chain and returns the
// command for the following tick.
func (p *Poller) Next(msg TickMsg) (bool, tea.Cmd) {
	p.mu.Lock()
	live := p.running && msg.gen == p.gen
	p.mu.Unlock()
	if !live {
		return false, nil
	}
	return true, p.schedule(msg.gen)
}

func (p *Poller) schedule(gen int) tea.Cmd {
	return tea.Tick(p.interval, func(t time.Time) tea.Msg {
		return TickMsg{At: t, gen: gen}
	})
}

// Begin marks a reload as in flight. It returns false when one already is.
func (p *Poller) Begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status.State == SyncRunning {
		return false
	}
	p.status.State = SyncRunning
	return true
}

// Finish records the result of the reload started by Begin.
func (p *Poller) Finish(err error, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.status.State = SyncError
		p.status.Error = err
		return
	}
	p.status = SyncStatus{State: SyncIdle, LastSync: at}
}

// Status returns a copy of the current reload state.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Summary describes the reload state for the header.
func (p *Poller) Summary(now time.Time) string {
	s := p.Status()
	switch s.State {
	case SyncRunning:
		return "loading..."
	case SyncError:
		return "⚠ server unreachable"
	}
	if s.LastSync.IsZero() {
		return "not loaded"
	}
	return "synced " + relativeTime(now.Sub(s.LastSync))
}

func relativeTime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
