package export

import (
	"io"

	"github.com/iksnae/manoj-chat/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter writes the transcript document as YAML
type YAMLExporter struct{}

// Export exports a transcript to YAML format
func (e *YAMLExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(transcript)); err != nil {
		return err
	}
	return enc.Close()
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
