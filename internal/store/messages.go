package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iksnae/manoj-chat/internal"
)

// MessagesKey is the single slot holding the local conversation.
const MessagesKey = "chat_messages"

// storedMessage is the persisted shape of one message.
type storedMessage struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsUser    bool   `json:"isUser"`
	Timestamp string `json:"timestamp"`
}

// MessageStore reads and writes the local conversation through a Backend.
type MessageStore struct {
	backend Backend
	key     string
}

// NewMessageStore creates a MessageStore over backend
func NewMessageStore(backend Backend) *MessageStore {
	return &MessageStore{backend: backend, key: MessagesKey}
}

// Backend returns the underlying key-value backend
func (s *MessageStore) Backend() Backend {
	return s.backend
}

// Load returns the persisted conversation. The boolean is false when nothing
// usable is stored: a missing key, an unreadable backend and undecodable data
// are all logged and reported the same way.
func (s *MessageStore) Load(ctx context.Context) ([]internal.Message, bool) {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		internal.LogWarn("Failed to read stored messages: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	messages, err := DecodeMessages([]byte(raw))
	if err != nil {
		internal.LogWarn("Ignoring corrupt stored messages: %v", err)
		return nil, false
	}
	if len(messages) == 0 {
		return nil, false
	}
	return messages, true
}

// Save replaces the persisted conversation with messages
func (s *MessageStore) Save(ctx context.Context, messages []internal.Message) error {
	data, err := EncodeMessages(messages)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, s.key, string(data))
}

// Clear removes the persisted conversation
func (s *MessageStore) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx, s.key)
}

// Close releases the backend
func (s *MessageStore) Close() error {
	return s.backend.Close()
}

// EncodeMessages renders messages in the persisted JSON form.
func EncodeMessages(messages []internal.Message) ([]byte, error) {
	stored := make([]storedMessage, 0, len(messages))
	for _, m := range messages {
		stored = append(stored, storedMessage{
			ID:        m.ID,
			Text:      m.Text,
			IsUser:    m.IsUser(),
			Timestamp: internal.FormatTimestamp(m.CreatedAt),
		})
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, &internal.ParseError{Source: "store", Key: MessagesKey, Err: err}
	}
	return data, nil
}

// DecodeMessages parses the persisted JSON form. A JSON null or a malformed
// document is an error. A message whose timestamp does not parse keeps the
// zero time.
func DecodeMessages(data []byte) ([]internal.Message, error) {
	var stored []storedMessage
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, &internal.ParseError{Source: "store", Key: MessagesKey, Err: err}
	}
	if stored == nil {
		return nil, &internal.ParseError{Source: "store", Key: MessagesKey, Err: fmt.Errorf("stored value is null")}
	}

	messages := make([]internal.Message, 0, len(stored))
	for i, sm := range stored {
		at, err := internal.ParseTimestamp(sm.Timestamp)
		if err != nil {
			internal.LogDebug("Stored message %d has an unparseable timestamp %q", i, sm.Timestamp)
			at = time.Time{}
		}
		author := internal.AuthorAssistant
		if sm.IsUser {
			author = internal.AuthorUser
		}
		messages = append(messages, internal.Message{
			ID:        sm.ID,
			Text:      sm.Text,
			Author:    author,
			CreatedAt: at,
		})
	}
	return messages, nil
}
