// Package gateway is the HTTP client for the chat backend.
//
// Every call is a single request/response exchange: no caching, no retries.
// Failures come back as *internal.GatewayError so transport errors never
// reach callers unwrapped.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iksnae/manoj-chat/internal"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is used when no backend origin is configured.
const DefaultBaseURL = "http://127.0.0.1:5000"

// maxTitleRunes bounds titles derived from the first user message.
const maxTitleRunes = 50

// Client talks to one backend origin.
type Client struct {
	base   string
	http   *http.Client
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero means no client-imposed timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{},
		logger: internal.Logger().With().Str("component", "gateway").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend origin
func (c *Client) BaseURL() string {
	return c.base
}

// ListConversations returns the caller's conversation titles. On any failure
// the slice is empty (never nil) and the error says why.
func (c *Client) ListConversations(ctx context.Context, identity string) ([]internal.ChatSummary, error) {
	const op = "list_conversations"
	if identity == "" {
		return []internal.ChatSummary{}, internal.ErrMissingIdentity
	}

	var payload struct {
		Titles []wireTitle `json:"titles"`
	}
	if err := c.postJSON(ctx, op, "/api/title", map[string]string{"google_id": identity}, &payload); err != nil {
		return []internal.ChatSummary{}, err
	}

	chats := make([]internal.ChatSummary, 0, len(payload.Titles))
	for _, t := range payload.Titles {
		chats = append(chats, t.summary())
	}
	return chats, nil
}

// FetchMessages returns the messages of one conversation, formatted for
// display. On any failure the slice is empty (never nil).
func (c *Client) FetchMessages(ctx context.Context, chatID int64, identity string) ([]internal.Message, error) {
	const op = "fetch_messages"
	if identity == "" {
		return []internal.Message{}, internal.ErrMissingIdentity
	}

	body := map[string]interface{}{"chat_id": chatID, "google_id": identity}
	var payload messagesPayload
	if err := c.postJSON(ctx, op, "/api/chat/messages", body, &payload); err != nil {
		return []internal.Message{}, err
	}
	return payload.messages(), nil
}

// SendToExistingConversation appends text to a conversation and returns the
// server's complete, authoritative message list.
func (c *Client) SendToExistingConversation(ctx context.Context, chatID int64, text, identity string) ([]internal.Message, error) {
	const op = "send_existing"
	if identity == "" {
		return nil, internal.ErrMissingIdentity
	}

	body := map[string]interface{}{"chat_id": chatID, "google_id": identity, "message": text}
	var payload messagesPayload
	if err := c.postJSON(ctx, op, "/api/chat/message", body, &payload); err != nil {
		return nil, err
	}
	return payload.messages(), nil
}

// SendToNewConversation starts a conversation with text. identity may be
// empty, in which case google_id is omitted from the request. A response
// without a conversation id yields Chat.ID == 0.
func (c *Client) SendToNewConversation(ctx context.Context, text, identity string) (*internal.NewConversation, error) {
	const op = "send_new"
	body := map[string]string{"message": text}
	if identity != "" {
		body["google_id"] = identity
	}

	raw, err := c.post(ctx, op, "/api/chat", body)
	if err != nil {
		return nil, err
	}
	reply, err := internal.ExtractReply(raw)
	if err != nil {
		return nil, &internal.GatewayError{Op: op, Err: err}
	}

	result := &internal.NewConversation{ReplyText: reply}

	var meta struct {
		ChatID json.RawMessage `json:"chat_id"`
		ID     json.RawMessage `json:"id"`
		Title  string          `json:"title"`
	}
	// Bare-string replies carry no metadata.
	if json.Unmarshal(raw, &meta) == nil {
		if id, ok := parseChatID(meta.ChatID); ok {
			result.Chat.ID = id
		} else if id, ok := parseChatID(meta.ID); ok {
			result.Chat.ID = id
		}
		result.Chat.Title = meta.Title
	}
	if result.Chat.Title == "" {
		result.Chat.Title = DeriveTitle(text)
	}
	if result.Chat.ID == 0 {
		c.logger.Debug().Msg("new conversation response carried no chat id")
	}
	return result, nil
}

// Send posts text to the anonymous single-conversation endpoint and returns
// the raw, unformatted reply text.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	const op = "send"
	raw, err := c.post(ctx, op, "/api/chat", map[string]string{"message": text})
	if err != nil {
		return "", err
	}
	reply, err := internal.ExtractReply(raw)
	if err != nil {
		return "", &internal.GatewayError{Op: op, Err: err}
	}
	return reply, nil
}

// Ping checks that the backend origin answers HTTP. Any status below 500
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	const op = "ping"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/", nil)
	if err != nil {
		return &internal.GatewayError{Op: op, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &internal.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return &internal.GatewayError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("server error")}
	}
	return nil
}

// post sends body as JSON and returns the raw response of a 2xx reply.
func (c *Client) post(ctx context.Context, op, path string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &internal.GatewayError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(data))
	if err != nil {
		return nil, &internal.GatewayError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Str("op", op).Err(err).Msg("request failed")
		return nil, &internal.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.logger.Debug().
		Str("op", op).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request done")
	if err != nil {
		return nil, &internal.GatewayError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &internal.GatewayError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("HTTP error: %s", http.StatusText(resp.StatusCode))}
	}
	return raw, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, body, out interface{}) error {
	raw, err := c.post(ctx, op, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &internal.GatewayError{Op: op, Err: &internal.ParseError{Source: "gateway", Key: path, Err: err}}
	}
	return nil
}

// DeriveTitle shortens the first user message into a conversation title.
func DeriveTitle(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= maxTitleRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:maxTitleRunes])) + "..."
}
