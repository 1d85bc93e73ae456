package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/manoj-chat/internal"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export exports a transcript to Markdown format
func (e *MarkdownExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	title := transcript.Title
	if title == "" {
		title = "Chat " + transcript.ID
	}
	_, _ = fmt.Fprintf(w, "# %s\n\n", title)
	_, _ = fmt.Fprintf(w, "**Source:** %s  \n", transcript.Source)
	if !transcript.ExportedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", internal.FormatTimestamp(transcript.ExportedAt))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(transcript.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range transcript.Messages {
		timestamp := ""
		if !msg.CreatedAt.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", internal.FormatTimestamp(msg.CreatedAt))
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Author, timestamp, escapeMarkdown(msg.Text))

		if i < len(transcript.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
