package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ReplyExtractor pulls the assistant text out of one known payload shape.
type ReplyExtractor struct {
	Name    string
	Extract func(payload interface{}) (string, bool)
}

// ReplyExtractors are tried in order; the first match wins.
var ReplyExtractors = []ReplyExtractor{
	{Name: "string", Extract: extractBareString},
	fieldExtractor("reply"),
	fieldExtractor("response"),
	fieldExtractor("message"),
}

func extractBareString(payload interface{}) (string, bool) {
	s, ok := payload.(string)
	return s, ok
}

func fieldExtractor(field string) ReplyExtractor {
	return ReplyExtractor{
		Name: field,
		Extract: func(payload interface{}) (string, bool) {
			obj, ok := payload.(map[string]interface{})
			if !ok {
				return "", false
			}
			s, ok := obj[field].(string)
			if !ok || s == "" {
				return "", false
			}
			return s, true
		},
	}
}

// ExtractReply decodes a chat reply payload. It accepts a bare JSON string or
// an object carrying "reply", "response" or "message", and falls back to the
// compact JSON of the payload itself. Only invalid JSON is an error.
func ExtractReply(payload []byte) (string, error) {
	var decoded interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", &ParseError{Source: "gateway", Key: "reply", Err: err}
	}

	for _, extractor := range ReplyExtractors {
		if text, ok := extractor.Extract(decoded); ok {
			return text, nil
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, payload); err != nil {
		return "", &ParseError{Source: "gateway", Key: "reply", Err: fmt.Errorf("compact payload: %w", err)}
	}
	return buf.String(), nil
}
