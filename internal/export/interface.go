package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/manoj-chat/internal"
)

// Exporter writes one transcript in a single file format
type Exporter interface {
	Export(transcript *internal.Transcript, w io.Writer) error
	Extension() string
}

// NewExporter returns the exporter for format, matched case-insensitively
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, markdown, yaml, yml, json)", format)
	}
}
