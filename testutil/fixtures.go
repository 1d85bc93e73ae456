package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// StoredMessagesJSON is a persisted conversation in the local storage format
const StoredMessagesJSON = `[
	{"id":"1","text":"Hello! How can I help you today?","isUser":false,"timestamp":"2024-01-01T12:00:00.000Z"},
	{"id":"1704110460000","text":"What is Go?","isUser":true,"timestamp":"2024-01-01T12:01:00.000Z"},
	{"id":"1704110460001","text":"Go is a programming language.","isUser":false,"timestamp":"2024-01-01T12:01:02.500Z"}
]`

// CorruptMessagesJSON cannot be decoded as a message list
const CorruptMessagesJSON = `[{"id":"1","text":"unterminated`

// TitlesResponseJSON is a backend response to POST /api/title
const TitlesResponseJSON = `{"titles":[
	{"id":42,"title":"Go questions","created_at":"2024-01-01T00:00:00Z"},
	{"id":7,"title":"Travel plans","created_at":"Mon, 01 Jan 2024 00:00:00 GMT"},
	{"id":3,"title":"Untimed"}
]}`

// MessagesResponseJSON is a backend response to POST /api/chat/messages
const MessagesResponseJSON = `{"messages":[
	{"id":1,"content":"hi","role":"user","created_at":"2024-01-01T00:00:00Z"},
	{"id":2,"content":"**Hello** there","role":"assistant","created_at":"2024-01-01T00:00:01Z"}
]}`

// WriteFileFixture writes data to a file under dir and returns its path
func WriteFileFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", path, err)
	}
	return path
}
