package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/manoj-chat/internal/session"
)

type snapshotMsg session.Snapshot

type alertMsg struct {
	title   string
	message string
}

// Bridge forwards session notifications into a running program. It is the
// session's Notifier and its Subscribe callback. Messages sent before a
// program is attached are dropped.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

// Attach routes further notifications to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

// Alert implements session.Notifier.
func (b *Bridge) Alert(title, message string) {
	b.send(alertMsg{title: title, message: message})
}

// Snapshot is passed to Session.Subscribe.
func (b *Bridge) Snapshot(s session.Snapshot) {
	b.send(snapshotMsg(s))
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
