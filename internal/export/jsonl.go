package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/manoj-chat/internal"
)

// JSONLExporter exports transcripts in JSONL format (one message per line)
type JSONLExporter struct{}

type jsonlLine struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Export writes one JSON object per message
func (e *JSONLExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range transcript.Messages {
		line := jsonlLine{
			ID:     msg.ID,
			Author: string(msg.Author),
			Text:   msg.Text,
		}
		if !msg.CreatedAt.IsZero() {
			line.Timestamp = internal.FormatTimestamp(msg.CreatedAt)
		}

		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
