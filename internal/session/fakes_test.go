package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iksnae/manoj-chat/internal"
	"github.com/iksnae/manoj-chat/internal/store"
)

var errConnection = &internal.GatewayError{Op: "send", Err: errors.New("connection refused")}

// fakeGateway answers with the configured functions and counts calls.
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	list     func(identity string) ([]internal.ChatSummary, error)
	fetch    func(chatID int64, identity string) ([]internal.Message, error)
	newConv  func(text, identity string) (*internal.NewConversation, error)
	existing func(chatID int64, text, identity string) ([]internal.Message, error)
	send     func(text string) (string, error)
}

func (g *fakeGateway) record(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls == nil {
		g.calls = make(map[string]int)
	}
	g.calls[name]++
}

func (g *fakeGateway) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *fakeGateway) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}

func (g *fakeGateway) ListConversations(ctx context.Context, identity string) ([]internal.ChatSummary, error) {
	g.record("list")
	if g.list == nil {
		return []internal.ChatSummary{}, nil
	}
	return g.list(identity)
}

func (g *fakeGateway) FetchMessages(ctx context.Context, chatID int64, identity string) ([]internal.Message, error) {
	g.record("fetch")
	if g.fetch == nil {
		return []internal.Message{}, nil
	}
	return g.fetch(chatID, identity)
}

func (g *fakeGateway) SendToNewConversation(ctx context.Context, text, identity string) (*internal.NewConversation, error) {
	g.record("new")
	return g.newConv(text, identity)
}

func (g *fakeGateway) SendToExistingConversation(ctx context.Context, chatID int64, text, identity string) ([]internal.Message, error) {
	g.record("existing")
	return g.existing(chatID, text, identity)
}

func (g *fakeGateway) Send(ctx context.Context, text string) (string, error) {
	g.record("send")
	return g.send(text)
}

// alerts records every alert raised.
type alerts struct {
	mu     sync.Mutex
	raised []string
}

func (a *alerts) Alert(title, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.raised = append(a.raised, title+": "+message)
}

func (a *alerts) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.raised...)
}

// failingStore wraps a MessageStore and fails Clear.
type failingStore struct {
	*store.MessageStore
}

func (failingStore) Clear(ctx context.Context) error {
	return errors.New("disk full")
}

// sequentialIDs returns msg-1, msg-2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("msg-%d", n)
	}
}

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}
