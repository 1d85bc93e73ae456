package internal

import (
	"fmt"
	"strings"
	"time"
)

const (
	// GreetingText seeds an empty conversation.
	GreetingText = "Hello! How can I help you today?"
	// ConnectionErrorText is appended as an assistant message when a send fails.
	ConnectionErrorText = "Sorry, there was an error connecting to the server. Please try again."
)

// Author identifies who wrote a message
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// ParseAuthor maps a backend role to an Author. Anything that is not the
// user is rendered as the assistant.
func ParseAuthor(role string) Author {
	if strings.EqualFold(strings.TrimSpace(role), string(AuthorUser)) {
		return AuthorUser
	}
	return AuthorAssistant
}

// Message is one chat bubble of the active conversation
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Author    Author    `json:"author" yaml:"author"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// IsUser reports whether the message was written by the user
func (m Message) IsUser() bool {
	return m.Author == AuthorUser
}

// NewUserMessage creates a user-authored message
func NewUserMessage(id, text string, at time.Time) Message {
	return Message{ID: id, Text: text, Author: AuthorUser, CreatedAt: at}
}

// NewAssistantMessage creates an assistant-authored message
func NewAssistantMessage(id, text string, at time.Time) Message {
	return Message{ID: id, Text: text, Author: AuthorAssistant, CreatedAt: at}
}

// ChatSummary identifies a server-side conversation without its messages
type ChatSummary struct {
	ID        int64      `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	CreatedAt *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// NewConversation is what the backend returns when a first message creates a
// conversation. ReplyText is the extracted, unformatted assistant reply.
type NewConversation struct {
	Chat      ChatSummary
	ReplyText string
}

// Transcript is an exportable view of a message list
type Transcript struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title,omitempty" yaml:"title,omitempty"`
	Source     string    `json:"source" yaml:"source"` // "local" or "remote"
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Messages   []Message `json:"messages" yaml:"messages"`
}

// isoMillis matches JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t as a UTC ISO-8601 string with millisecond precision
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTimestamp accepts ISO-8601 strings as well as the naive and RFC 1123
// forms Python backends commonly emit.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", s)
}

// FormatCreated renders a creation time for list views, coarser the older it is
func FormatCreated(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}
