package gateway

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/iksnae/manoj-chat/internal"
)

// wireMessage is a message as the backend sends it.
type wireMessage struct {
	ID        json.RawMessage `json:"id"`
	Content   string          `json:"content"`
	Role      string          `json:"role"`
	CreatedAt string          `json:"created_at"`
}

type messagesPayload struct {
	Messages []wireMessage `json:"messages"`
}

// messages converts the payload into display messages. Assistant text is
// passed through the response formatter.
func (p messagesPayload) messages() []internal.Message {
	out := make([]internal.Message, 0, len(p.Messages))
	for i, wm := range p.Messages {
		id := rawID(wm.ID)
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		author := internal.ParseAuthor(wm.Role)
		text := wm.Content
		if author == internal.AuthorAssistant {
			text = internal.FormatResponseText(text)
		}
		out = append(out, internal.Message{
			ID:        id,
			Text:      text,
			Author:    author,
			CreatedAt: parseWireTime(wm.CreatedAt),
		})
	}
	return out
}

// wireTitle is a conversation summary as the backend sends it.
type wireTitle struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

func (t wireTitle) summary() internal.ChatSummary {
	s := internal.ChatSummary{ID: t.ID, Title: t.Title}
	if at := parseWireTime(t.CreatedAt); !at.IsZero() {
		s.CreatedAt = &at
	}
	return s
}

// rawID renders a JSON number or string id as text.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}

// parseChatID accepts a positive integer id given as a JSON number or string.
func parseChatID(raw json.RawMessage) (int64, bool) {
	id, err := strconv.ParseInt(rawID(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseWireTime returns the zero time for missing or unparseable values.
func parseWireTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := internal.ParseTimestamp(s)
	if err != nil {
		internal.LogDebug("Unparseable timestamp from backend: %q", s)
		return time.Time{}
	}
	return t
}
