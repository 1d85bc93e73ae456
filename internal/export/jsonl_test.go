package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/manoj-chat/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	tests := []struct {
		name       string
		transcript *internal.Transcript
		want       []string
	}{
		{
			name:       "empty transcript",
			transcript: internal.CreateTestTranscriptWithMessages("test1", []internal.Message{}),
			want:       []string{},
		},
		{
			name:       "transcript with messages",
			transcript: internal.CreateTestTranscript("test2"),
			want: []string{
				`"author":"user"`,
				`"author":"assistant"`,
				`"timestamp":"2024-01-01T12:00:00.000Z"`,
			},
		},
		{
			name: "message without timestamp",
			transcript: internal.CreateTestTranscriptWithMessages("test3", []internal.Message{
				{ID: "1", Author: internal.AuthorUser, Text: "Hello"},
			}),
			want: []string{
				`"author":"user"`,
				`"text":"Hello"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONLExporter{}

			if err := exporter.Export(tt.transcript, &buf); err != nil {
				t.Fatalf("JSONLExporter.Export() error = %v", err)
			}

			output := buf.String()
			if len(tt.transcript.Messages) == 0 {
				if output != "" {
					t.Errorf("Empty transcript should produce empty output, got: %q", output)
				}
				return
			}

			lines := strings.Split(strings.TrimSpace(output), "\n")
			if len(lines) != len(tt.transcript.Messages) {
				t.Errorf("got %d lines, want %d", len(lines), len(tt.transcript.Messages))
			}
			for i, line := range lines {
				var msg map[string]interface{}
				if err := json.Unmarshal([]byte(line), &msg); err != nil {
					t.Errorf("Line %d is not valid JSON: %v", i, err)
				}
				if _, ok := msg["author"]; !ok {
					t.Errorf("Line %d missing 'author' field", i)
				}
			}
			for _, wantStr := range tt.want {
				if !strings.Contains(output, wantStr) {
					t.Errorf("Output should contain %q, got %q", wantStr, output)
				}
			}
			if tt.name == "message without timestamp" && strings.Contains(output, "timestamp") {
				t.Errorf("zero timestamp should be omitted, got %q", output)
			}
		})
	}
}

func TestJSONLExporter_Extension(t *testing.T) {
	exporter := &JSONLExporter{}
	if got := exporter.Extension(); got != "jsonl" {
		t.Errorf("JSONLExporter.Extension() = %v, want jsonl", got)
	}
}
