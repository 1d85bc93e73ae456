package export

import (
	"time"

	"github.com/iksnae/manoj-chat/internal"
)

// documentFormat tags JSON and YAML exports so they can be told apart from
// other JSON lying around.
const documentFormat = "manoj-chat.transcript/v1"

// document is the structured export shape shared by JSON and YAML. Times are
// rendered the way the local store writes them.
type document struct {
	Format     string            `json:"format" yaml:"format"`
	ID         string            `json:"id" yaml:"id"`
	Title      string            `json:"title,omitempty" yaml:"title,omitempty"`
	Source     string            `json:"source" yaml:"source"`
	ExportedAt string            `json:"exported_at,omitempty" yaml:"exported_at,omitempty"`
	Stats      documentStats     `json:"stats" yaml:"stats"`
	Messages   []documentMessage `json:"messages" yaml:"messages"`
}

type documentStats struct {
	Messages  int    `json:"messages" yaml:"messages"`
	User      int    `json:"user" yaml:"user"`
	Assistant int    `json:"assistant" yaml:"assistant"`
	FirstAt   string `json:"first_at,omitempty" yaml:"first_at,omitempty"`
	LastAt    string `json:"last_at,omitempty" yaml:"last_at,omitempty"`
}

type documentMessage struct {
	ID        string          `json:"id" yaml:"id"`
	Author    internal.Author `json:"author" yaml:"author"`
	Text      string          `json:"text" yaml:"text"`
	CreatedAt string          `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

func newDocument(t *internal.Transcript) document {
	doc := document{
		Format:     documentFormat,
		ID:         t.ID,
		Title:      t.Title,
		Source:     t.Source,
		ExportedAt: timestamp(t.ExportedAt),
		Messages:   make([]documentMessage, 0, len(t.Messages)),
	}

	var first, last time.Time
	for _, m := range t.Messages {
		if m.IsUser() {
			doc.Stats.User++
		} else {
			doc.Stats.Assistant++
		}
		if !m.CreatedAt.IsZero() {
			if first.IsZero() || m.CreatedAt.Before(first) {
				first = m.CreatedAt
			}
			if m.CreatedAt.After(last) {
				last = m.CreatedAt
			}
		}
		doc.Messages = append(doc.Messages, documentMessage{
			ID:        m.ID,
			Author:    m.Author,
			Text:      m.Text,
			CreatedAt: timestamp(m.CreatedAt),
		})
	}
	doc.Stats.Messages = len(t.Messages)
	doc.Stats.FirstAt = timestamp(first)
	doc.Stats.LastAt = timestamp(last)
	return doc
}

// timestamp is empty for the zero time.
func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return internal.FormatTimestamp(t)
}
