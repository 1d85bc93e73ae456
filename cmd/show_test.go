package cmd

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/manoj-chat/internal"
)

func TestShowCommand(t *testing.T) {
	dir := isolate(t)
	signIn(t, dir, "g-1")
	srv := newFakeServer(t, map[string]route{
		"/api/chat/messages": {http.StatusOK, conversationJSON},
	})

	res := execute(t, "", "show", "7", "--api-url", srv.URL, "--state-dir", dir)
	if res.err != nil {
		t.Fatalf("show error = %v", res.err)
	}
	for _, want := range []string{"Conversation 7", "Plan a trip", "Where to?", "Great choice", "[4/4]"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("output missing %q:\n%s", want, res.stdout)
		}
	}

	reqs := srv.requestsTo("/api/chat/messages")
	if len(reqs) != 1 || reqs[0].Body["chat_id"] != float64(7) || reqs[0].Body["google_id"] != "g-1" {
		t.Errorf("fetch requests = %+v", reqs)
	}
}

func TestShowCommand_Limit(t *testing.T) {
	dir := isolate(t)
	signIn(t, dir, "g-1")
	srv := newFakeServer(t, map[string]route{
		"/api/chat/messages": {http.StatusOK, conversationJSON},
	})

	res := execute(t, "", "show", "7", "-n", "1", "--api-url", srv.URL, "--state-dir", dir)
	if res.err != nil {
		t.Fatalf("show error = %v", res.err)
	}
	if !strings.Contains(res.stdout, "Plan a trip") || strings.Contains(res.stdout, "Lisbon") {
		t.Errorf("output should contain only the first message:\n%s", res.stdout)
	}
	if !strings.Contains(res.stdout, "3 more message(s)") {
		t.Errorf("output should mention the hidden messages:\n%s", res.stdout)
	}
}

func TestShowCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing id", []string{"show"}},
		{"non-numeric id", []string{"show", "abc"}},
		{"zero id", []string{"show", "0"}},
		{"not signed in", []string{"show", "7"}},
		{"bad since", []string{"show", "7", "--since", "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			if tt.name == "bad since" {
				signIn(t, dir, "g-1")
			}
			srv := newFakeServer(t, map[string]route{
				"/api/chat/messages": {http.StatusOK, conversationJSON},
			})
			res := execute(t, "", append(tt.args, "--api-url", srv.URL, "--state-dir", dir)...)
			if res.err == nil {
				t.Error("show should fail")
			}
		})
	}
}

func TestHistoryCommand(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		dir := isolate(t)
		res := execute(t, "", "history", "--state-dir", dir)
		if res.err != nil {
			t.Fatalf("history error = %v", res.err)
		}
		if !strings.Contains(res.stdout, "No local history yet") {
			t.Errorf("output = %q", res.stdout)
		}
	})

	t.Run("stored messages", func(t *testing.T) {
		dir := isolate(t)
		seedHistory(t, dir, internal.CreateTestMessages(4))

		res := execute(t, "", "history", "--state-dir", dir)
		if res.err != nil {
			t.Fatalf("history error = %v", res.err)
		}
		for _, want := range []string{"Local conversation", "question 1", "answer 2", "You", "Assistant"} {
			if !strings.Contains(res.stdout, want) {
				t.Errorf("output missing %q:\n%s", want, res.stdout)
			}
		}
	})

	t.Run("since filter", func(t *testing.T) {
		dir := isolate(t)
		seedHistory(t, dir, internal.CreateTestMessages(4))

		res := execute(t, "", "history", "--state-dir", dir, "--since", "2024-01-01T12:02:00Z")
		if res.err != nil {
			t.Fatalf("history error = %v", res.err)
		}
		if strings.Contains(res.stdout, "question 1") || !strings.Contains(res.stdout, "question 2") {
			t.Errorf("output should start at the third message:\n%s", res.stdout)
		}
	})
}

func TestFilterSince(t *testing.T) {
	messages := internal.CreateTestMessages(3)
	messages = append(messages, internal.NewAssistantMessage("undated", "no time", time.Time{}))

	got := filterSince(messages, messages[1].CreatedAt)
	if len(got) != 2 {
		t.Fatalf("filterSince() kept %d messages, want 2", len(got))
	}
	if got[0].ID != messages[1].ID || got[1].ID != messages[2].ID {
		t.Errorf("filterSince() = %+v", got)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"short line untouched", "hello  world", 80, "hello  world"},
		{"wraps on spaces", "aaa bbb ccc", 7, "aaa bbb\nccc"},
		{"keeps line breaks", "one\ntwo", 80, "one\ntwo"},
		{"long word stays whole", "abcdefghij xy", 5, "abcdefghij\nxy"},
		{"no width", "aaa bbb", 0, "aaa bbb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapText(tt.text, tt.width); got != tt.want {
				t.Errorf("wrapText() = %q, want %q", got, tt.want)
			}
		})
	}
}
