package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/iksnae/manoj-chat/internal"
	"github.com/iksnae/manoj-chat/internal/config"
	"github.com/iksnae/manoj-chat/internal/identity"
	"github.com/iksnae/manoj-chat/internal/store"
	"github.com/spf13/cobra"
)

// resetFlags puts every flag variable back to its default. Cobra keeps parsed
// values between Execute calls on the same command tree.
func resetFlags() {
	verbose, apiURL, storeDriver, stateDir, configPath, ephemeral = false, "", "", "", "", false
	chatRemote = false
	sendRemote, sendChatID = false, 0
	limit, since = 0, ""
	clearYes = false
	loginToken = ""
	format, outputDir, exportChatID = "jsonl", "./exports", 0
	cfg = nil

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		for _, name := range []string{"help", "version"} {
			if f := c.Flags().Lookup(name); f != nil {
				_ = f.Value.Set("false")
			}
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}

type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command with args and stdin.
func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))

	err := rootCmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// isolate keeps the user's home, config and MANOJ_CHAT_* variables out of a
// test and returns a fresh state directory.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		config.EnvAPIURL, config.EnvLegacyAPIURL, config.EnvStore,
		config.EnvRedisURL, config.EnvLogLevel, config.EnvStateDir,
	} {
		t.Setenv(key, "")
	}
	return t.TempDir()
}

type recordedRequest struct {
	Path string
	Body map[string]interface{}
}

// fakeServer is a chat backend answering fixed bodies per path.
type fakeServer struct {
	URL string

	mu       sync.Mutex
	requests []recordedRequest
}

type route struct {
	status int
	body   string
}

func newFakeServer(t *testing.T, routes map[string]route) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Path: r.URL.Path}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		fs.mu.Lock()
		fs.requests = append(fs.requests, rec)
		fs.mu.Unlock()

		rt, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rt.status)
		_, _ = io.WriteString(w, rt.body)
	}))
	t.Cleanup(srv.Close)
	fs.URL = srv.URL
	return fs
}

// requestsTo returns the recorded requests for path.
func (fs *fakeServer) requestsTo(path string) []recordedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var out []recordedRequest
	for _, r := range fs.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func fileStore(t *testing.T, dir string) *store.MessageStore {
	t.Helper()
	backend, err := store.NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}
	return store.NewMessageStore(backend)
}

func seedHistory(t *testing.T, dir string, messages []internal.Message) {
	t.Helper()
	if err := fileStore(t, dir).Save(context.Background(), messages); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

func loadHistory(t *testing.T, dir string) []internal.Message {
	t.Helper()
	messages, _ := fileStore(t, dir).Load(context.Background())
	return messages
}

func openJar(t *testing.T, dir string) *identity.CookieJar {
	t.Helper()
	jar, err := identity.OpenJar(filepath.Join(dir, identity.CookieFile))
	if err != nil {
		t.Fatalf("OpenJar() error = %v", err)
	}
	return jar
}

func signIn(t *testing.T, dir, googleID string) {
	t.Helper()
	if err := openJar(t, dir).Set(identity.SessionCookie, googleID, identity.Lifetime); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
}
