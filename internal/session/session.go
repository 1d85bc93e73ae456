// Package session owns the state of one chat view: the active conversation,
// its messages and the in-flight flags. It orchestrates the message store and
// the backend gateway in response to user intents.
//
// A Session runs in one of two modes. ModeLocal keeps a single anonymous
// conversation persisted in the store. ModeRemote keeps conversations on the
// backend, scoped by the identity key.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iksnae/manoj-chat/internal"
	"github.com/rs/zerolog"
)

var (
	// ErrEmptyInput is returned by Send for empty or whitespace-only input.
	ErrEmptyInput = errors.New("message is empty")
	// ErrBusy is returned while a send is in flight.
	ErrBusy = errors.New("a request is already in flight")
	// ErrNotReady is returned by Send while messages are still loading.
	ErrNotReady = errors.New("session is still loading")
	// ErrClearNotRequested is returned by ConfirmClear without a pending RequestClear.
	ErrClearNotRequested = errors.New("clear was not requested")
	// ErrRemoteOnly is returned by conversation operations in ModeLocal.
	ErrRemoteOnly = errors.New("only available for remote conversations")
)

// Alert texts raised through the Notifier.
const (
	ConnectionAlertTitle   = "Connection Error"
	ConnectionAlertMessage = "Unable to connect to the chat server. Please check your connection and try again."
	ClearAlertTitle        = "Clear Chat"
	ClearConfirmMessage    = "Are you sure you want to clear all messages? This action cannot be undone."
	ClearFailedMessage     = "Failed to clear chat history."
)

// GreetingID is the id of the first-run greeting.
const GreetingID = "1"

// Mode selects how the conversation is backed.
type Mode int

const (
	ModeLocal Mode = iota
	ModeRemote
)

func (m Mode) String() string {
	switch m {
	case ModeLocal:
		return "local"
	case ModeRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// State is the session's position in its lifecycle.
type State int

const (
	StateInitializing State = iota
	StateIdle
	StateSending
	StateErrorDisplayed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateErrorDisplayed:
		return "error"
	default:
		return "unknown"
	}
}

// Gateway is the subset of the backend client the session uses.
type Gateway interface {
	ListConversations(ctx context.Context, identity string) ([]internal.ChatSummary, error)
	FetchMessages(ctx context.Context, chatID int64, identity string) ([]internal.Message, error)
	SendToNewConversation(ctx context.Context, text, identity string) (*internal.NewConversation, error)
	SendToExistingConversation(ctx context.Context, chatID int64, text, identity string) ([]internal.Message, error)
	Send(ctx context.Context, text string) (string, error)
}

// Store persists the local conversation.
type Store interface {
	Load(ctx context.Context) ([]internal.Message, bool)
	Save(ctx context.Context, messages []internal.Message) error
	Clear(ctx context.Context) error
}

// IdentityProvider supplies the key that scopes remote conversations.
type IdentityProvider interface {
	IdentityKey() (string, bool)
}

// Notifier shows a one-shot, user-visible alert.
type Notifier interface {
	Alert(title, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, message string)

// Alert implements Notifier.
func (f NotifierFunc) Alert(title, message string) {
	f(title, message)
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Mode  Mode
	State State
	// ActiveConversationID is 0 for an unsaved new conversation.
	ActiveConversationID int64
	Messages             []internal.Message
	Conversations        []internal.ChatSummary
	Pending              bool
	Initializing         bool
	ClearRequested       bool
}

// Session is safe for concurrent use. Network and storage calls run
// without the lock held.
type Session struct {
	mode     Mode
	gateway  Gateway
	store    Store
	identity IdentityProvider
	notifier Notifier
	now      func() time.Time
	newID    func() string
	logger   zerolog.Logger

	mu             sync.Mutex
	state          State
	activeID       int64
	messages       []internal.Message
	conversations  []internal.ChatSummary
	pending        bool
	initializing   bool
	initialized    bool
	clearRequested bool
	fetchSeq       uint64
	listeners      map[int]func(Snapshot)
	nextListener   int
}

// Option configures a Session.
type Option func(*Session)

func WithGateway(g Gateway) Option {
	return func(s *Session) { s.gateway = g }
}

func WithStore(st Store) Option {
	return func(s *Session) { s.store = st }
}

func WithIdentity(p IdentityProvider) Option {
	return func(s *Session) { s.identity = p }
}

func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator replaces the message id source (random UUIDs by default).
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// New creates a session in the Initializing state. Both modes need a
// Gateway; ModeLocal also needs a Store.
func New(mode Mode, opts ...Option) (*Session, error) {
	s := &Session{
		mode:         mode,
		now:          time.Now,
		newID:        uuid.NewString,
		logger:       internal.Logger().With().Str("component", "session").Logger(),
		state:        StateInitializing,
		initializing: true,
		listeners:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case mode != ModeLocal && mode != ModeRemote:
		return nil, errors.New("unknown session mode")
	case s.gateway == nil:
		return nil, errors.New("session needs a gateway")
	case mode == ModeLocal && s.store == nil:
		return nil, errors.New("local session needs a store")
	}
	if s.identity == nil {
		s.identity = noIdentity{}
	}
	if s.notifier == nil {
		s.notifier = NotifierFunc(func(string, string) {})
	}
	return s, nil
}

type noIdentity struct{}

func (noIdentity) IdentityKey() (string, bool) { return "", false }

// Mode returns the backing mode chosen at construction.
func (s *Session) Mode() Mode {
	return s.mode
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Mode:                 s.mode,
		State:                s.state,
		ActiveConversationID: s.activeID,
		Messages:             append([]internal.Message(nil), s.messages...),
		Conversations:        append([]internal.ChatSummary(nil), s.conversations...),
		Pending:              s.pending,
		Initializing:         s.initializing,
		ClearRequested:       s.clearRequested,
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change, without the lock held.
// The returned function unsubscribes.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// Init performs the first load. In ModeLocal the persisted conversation is
// loaded, or the greeting is seeded and persisted when nothing usable is
// stored. In ModeRemote the conversation titles are listed; a conversation
// selected or started before the list arrives is left in place. Calling Init
// again is a no-op.
func (s *Session) Init(ctx context.Context) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	seq := s.fetchSeq
	s.mu.Unlock()

	var messages []internal.Message
	var conversations []internal.ChatSummary

	switch s.mode {
	case ModeLocal:
		loaded, ok := s.store.Load(ctx)
		if ok {
			messages = loaded
		} else {
			messages = []internal.Message{internal.NewAssistantMessage(GreetingID, internal.GreetingText, s.now())}
			s.persist(ctx, messages)
		}
	case ModeRemote:
		conversations = s.listConversations(ctx)
	}

	s.mu.Lock()
	s.conversations = conversations
	// A conversation switched to while loading owns messages and the
	// loading flag from here on.
	if seq == s.fetchSeq {
		s.messages = messages
		s.initializing = false
		s.state = StateIdle
	}
	s.mu.Unlock()
	s.notify()
}

// Send submits input. Whitespace is trimmed; empty input returns
// ErrEmptyInput without touching any state. The user message is shown (and
// in ModeLocal persisted) before the backend answers.
//
// A backend failure appends the connection error message, raises the
// connection alert once and returns the failure; the session stays usable.
// Sending into an existing remote conversation without an identity key is
// skipped and returns internal.ErrMissingIdentity without an alert.
func (s *Session) Send(ctx context.Context, input string) error {
	text := strings.TrimSpace(input)
	if text == "" {
		return ErrEmptyInput
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.initializing {
		s.mu.Unlock()
		return ErrNotReady
	}
	userMsg := internal.NewUserMessage(s.newID(), text, s.now())
	base := append(append([]internal.Message(nil), s.messages...), userMsg)
	s.messages = base
	s.pending = true
	s.state = StateSending
	activeID := s.activeID
	s.mu.Unlock()
	s.notify()

	switch {
	case s.mode == ModeLocal:
		s.persist(ctx, base)
		return s.sendLocal(ctx, text, base)
	case activeID == 0:
		return s.sendNewConversation(ctx, text, userMsg, base)
	default:
		return s.sendExistingConversation(ctx, activeID, text, base)
	}
}

func (s *Session) sendLocal(ctx context.Context, text string, base []internal.Message) error {
	reply, err := s.gateway.Send(ctx, text)
	if err != nil {
		return s.fail(ctx, base, err)
	}

	final := append(base, s.assistantMessage(reply))
	s.finish(final)
	s.persist(ctx, final)
	s.notify()
	return nil
}

func (s *Session) sendNewConversation(ctx context.Context, text string, userMsg internal.Message, base []internal.Message) error {
	identity, hasIdentity := s.identity.IdentityKey()
	if !hasIdentity {
		s.logger.Debug().Msg("no identity key, starting conversation without google_id")
	}

	result, err := s.gateway.SendToNewConversation(ctx, text, identity)
	if err != nil {
		return s.fail(ctx, base, err)
	}

	s.mu.Lock()
	s.messages = []internal.Message{userMsg, s.assistantMessage(result.ReplyText)}
	if result.Chat.ID != 0 {
		s.activeID = result.Chat.ID
	} else {
		s.logger.Warn().Msg("backend did not return a conversation id; the conversation stays unsaved")
	}
	s.pending = false
	s.state = StateIdle
	s.mu.Unlock()
	s.notify()

	if hasIdentity {
		_ = s.RefreshConversations(ctx)
	}
	return nil
}

func (s *Session) sendExistingConversation(ctx context.Context, chatID int64, text string, base []internal.Message) error {
	identity, ok := s.identity.IdentityKey()
	if !ok {
		s.logger.Warn().Int64("chat_id", chatID).Msg("no identity key, message not sent")
		s.finish(base)
		s.notify()
		return internal.ErrMissingIdentity
	}

	messages, err := s.gateway.SendToExistingConversation(ctx, chatID, text, identity)
	if err != nil {
		return s.fail(ctx, base, err)
	}

	// The server list is authoritative and replaces the view wholesale.
	s.finish(messages)
	s.notify()
	return nil
}

// fail records a send failure: the error bubble is appended to base, the
// alert is raised once and the session returns to Idle.
func (s *Session) fail(ctx context.Context, base []internal.Message, cause error) error {
	s.logger.Warn().Err(cause).Msg("send failed")

	final := append(base, internal.NewAssistantMessage(s.newID(), internal.ConnectionErrorText, s.now()))
	s.mu.Lock()
	s.messages = final
	s.pending = false
	s.state = StateErrorDisplayed
	s.mu.Unlock()

	if s.mode == ModeLocal {
		s.persist(ctx, final)
	}
	s.notify()
	s.notifier.Alert(ConnectionAlertTitle, ConnectionAlertMessage)

	s.mu.Lock()
	if s.state == StateErrorDisplayed {
		s.state = StateIdle
	}
	s.mu.Unlock()
	s.notify()
	return cause
}

func (s *Session) finish(messages []internal.Message) {
	s.mu.Lock()
	s.messages = messages
	s.pending = false
	s.state = StateIdle
	s.mu.Unlock()
}

func (s *Session) assistantMessage(raw string) internal.Message {
	return internal.NewAssistantMessage(s.newID(), internal.FormatResponseText(raw), s.now())
}

// SelectConversation switches to chatID. The current messages are cleared
// before the fetch starts and replaced wholesale with its result, which is
// empty on failure. A result that arrives after another switch is dropped.
func (s *Session) SelectConversation(ctx context.Context, chatID int64) error {
	if s.mode != ModeRemote {
		return ErrRemoteOnly
	}
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return ErrBusy
	}
	s.activeID = chatID
	s.messages = nil
	s.initializing = true
	s.state = StateInitializing
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()
	s.notify()

	identity, _ := s.identity.IdentityKey()
	messages, err := s.gateway.FetchMessages(ctx, chatID, identity)
	if err != nil {
		s.logFetchError(err, chatID)
		messages = []internal.Message{}
	}

	s.mu.Lock()
	if seq != s.fetchSeq {
		s.mu.Unlock()
		s.logger.Debug().Int64("chat_id", chatID).Msg("dropping stale conversation fetch")
		return nil
	}
	s.messages = messages
	s.initializing = false
	s.state = StateIdle
	s.mu.Unlock()
	s.notify()
	return err
}

func (s *Session) logFetchError(err error, chatID int64) {
	if errors.Is(err, internal.ErrMissingIdentity) {
		s.logger.Debug().Int64("chat_id", chatID).Msg("no identity key, conversation not fetched")
		return
	}
	s.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to fetch conversation")
}

// NewChat starts an unsaved conversation. Nothing is sent or persisted until
// the first message.
func (s *Session) NewChat() error {
	if s.mode != ModeRemote {
		return ErrRemoteOnly
	}
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return ErrBusy
	}
	s.activeID = 0
	s.messages = nil
	s.fetchSeq++
	s.initializing = false
	s.state = StateIdle
	s.mu.Unlock()
	s.notify()
	return nil
}

// RequestClear opens the clear confirmation. Messages are untouched until
// ConfirmClear.
func (s *Session) RequestClear() {
	s.mu.Lock()
	s.clearRequested = true
	s.mu.Unlock()
	s.notify()
}

// CancelClear dismisses the clear confirmation.
func (s *Session) CancelClear() {
	s.mu.Lock()
	s.clearRequested = false
	s.mu.Unlock()
	s.notify()
}

// ConfirmClear performs a requested clear. ModeLocal wipes the store and
// reseeds the greeting. ModeRemote empties the local view only; the
// backend keeps its history.
func (s *Session) ConfirmClear(ctx context.Context) error {
	s.mu.Lock()
	if !s.clearRequested {
		s.mu.Unlock()
		return ErrClearNotRequested
	}
	if s.pending {
		s.mu.Unlock()
		return ErrBusy
	}
	s.clearRequested = false
	s.mu.Unlock()

	if s.mode == ModeRemote {
		if s.store != nil {
			if err := s.store.Clear(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("failed to clear stored messages")
			}
		}
		s.mu.Lock()
		s.messages = nil
		s.mu.Unlock()
		s.notify()
		return nil
	}

	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear chat history")
		s.notify()
		s.notifier.Alert(ClearAlertTitle, ClearFailedMessage)
		return err
	}

	greeting := []internal.Message{internal.NewAssistantMessage(s.newID(), internal.GreetingText, s.now())}
	s.mu.Lock()
	s.messages = greeting
	s.mu.Unlock()
	s.persist(ctx, greeting)
	s.notify()
	return nil
}

// RefreshConversations re-lists the conversation titles. Without an identity
// key the list is left as is.
func (s *Session) RefreshConversations(ctx context.Context) error {
	if s.mode != ModeRemote {
		return ErrRemoteOnly
	}
	if _, ok := s.identity.IdentityKey(); !ok {
		s.logger.Debug().Msg("no identity key, conversation list not refreshed")
		return internal.ErrMissingIdentity
	}
	conversations := s.listConversations(ctx)

	s.mu.Lock()
	s.conversations = conversations
	s.mu.Unlock()
	s.notify()
	return nil
}

// listConversations returns the titles, empty on any failure.
func (s *Session) listConversations(ctx context.Context) []internal.ChatSummary {
	identity, ok := s.identity.IdentityKey()
	if !ok {
		s.logger.Debug().Msg("no identity key, skipping conversation list")
		return []internal.ChatSummary{}
	}
	conversations, err := s.gateway.ListConversations(ctx, identity)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list conversations")
		return []internal.ChatSummary{}
	}
	return conversations
}

// persist saves messages in ModeLocal. Failures are logged only.
func (s *Session) persist(ctx context.Context, messages []internal.Message) {
	if s.store == nil || s.mode != ModeLocal {
		return
	}
	if err := s.store.Save(ctx, messages); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist messages")
	}
}
