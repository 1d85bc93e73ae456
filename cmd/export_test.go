package cmd

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/manoj-chat/internal"
	"github.com/iksnae/manoj-chat/testutil"
)

func TestExportCommand_Local(t *testing.T) {
	tests := []struct {
		format string
		file   string
		want   string
	}{
		{"md", "chat_local.md", "# Manoj Chat"},
		{"markdown", "chat_local.md", "question 1"},
		{"jsonl", "chat_local.jsonl", "answer 1"},
		{"yaml", "chat_local.yaml", "source: local"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := isolate(t)
			out := t.TempDir()
			seedHistory(t, dir, internal.CreateTestMessages(2))

			res := execute(t, "", "export", "--format", tt.format, "--out", out, "--state-dir", dir)
			if res.err != nil {
				t.Fatalf("export error = %v", res.err)
			}
			data, err := os.ReadFile(filepath.Join(out, tt.file))
			if err != nil {
				t.Fatalf("export file not written: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("export missing %q:\n%s", tt.want, data)
			}
			if !strings.Contains(res.stdout, "Export complete") {
				t.Errorf("stdout = %q", res.stdout)
			}
		})
	}
}

func TestExportCommand_Remote(t *testing.T) {
	dir := isolate(t)
	signIn(t, dir, "g-1")
	out := t.TempDir()
	srv := newFakeServer(t, map[string]route{
		"/api/chat/messages": {http.StatusOK, conversationJSON},
	})

	res := execute(t, "", "export", "-f", "json", "-o", out, "--chat", "7", "--api-url", srv.URL, "--state-dir", dir)
	if res.err != nil {
		t.Fatalf("export error = %v", res.err)
	}

	data, err := os.ReadFile(filepath.Join(out, "chat_7.json"))
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	var transcript internal.Transcript
	testutil.JSONUnmarshal(t, data, &transcript)
	if transcript.Source != "remote" || len(transcript.Messages) != 4 {
		t.Errorf("transcript = %+v", transcript)
	}
}

func TestExportCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"invalid format", []string{"export", "--format", "invalid"}, nil},
		{"no local history", []string{"export"}, nil},
		{"remote without sign-in", []string{"export", "--chat", "7"}, errNotSignedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			res := execute(t, "", append(tt.args, "--out", t.TempDir(), "--state-dir", dir)...)
			if res.err == nil {
				t.Fatal("export should fail")
			}
			if tt.wantErr != nil && !errors.Is(res.err, tt.wantErr) {
				t.Errorf("error = %v, want %v", res.err, tt.wantErr)
			}
		})
	}
}
