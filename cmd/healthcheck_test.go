package cmd

import (
	"net/http"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/iksnae/manoj-chat/internal/config"
)

func TestHealthcheckCommand(t *testing.T) {
	tests := []struct {
		name  string
		store string
		setup func(t *testing.T)
	}{
		{name: "file store", store: "file"},
		{name: "sqlite store", store: "sqlite"},
		{name: "memory store", store: "memory"},
		{
			name:  "redis store",
			store: "redis",
			setup: func(t *testing.T) {
				mr := miniredis.RunT(t)
				t.Setenv(config.EnvRedisURL, "redis://"+mr.Addr())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			if tt.setup != nil {
				tt.setup(t)
			}
			srv := newFakeServer(t, map[string]route{
				"/": {http.StatusOK, `{"status": "ok"}`},
			})

			res := execute(t, "", "healthcheck", "--store", tt.store, "--api-url", srv.URL, "--state-dir", dir)
			if res.err != nil {
				t.Fatalf("healthcheck error = %v\n%s", res.err, res.stdout)
			}
			for _, want := range []string{"Store read/write OK", "Chat server reachable", "Not signed in", "Health check passed"} {
				if !strings.Contains(res.stdout, want) {
					t.Errorf("output missing %q:\n%s", want, res.stdout)
				}
			}
		})
	}
}

func TestHealthcheckCommand_Verbose(t *testing.T) {
	dir := isolate(t)
	signIn(t, dir, "g-9")
	srv := newFakeServer(t, map[string]route{
		"/": {http.StatusNotFound, ``},
	})

	res := execute(t, "", "healthcheck", "-v", "--api-url", srv.URL, "--state-dir", dir)
	if res.err != nil {
		t.Fatalf("healthcheck error = %v\n%s", res.err, res.stdout)
	}
	for _, want := range []string{"State dir: " + dir, "Chat server: " + srv.URL, "Identity: g-9", "Signed in"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("output missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestHealthcheckCommand_ServerDown(t *testing.T) {
	dir := isolate(t)
	srv := newFakeServer(t, map[string]route{
		"/": {http.StatusServiceUnavailable, ``},
	})

	res := execute(t, "", "healthcheck", "--api-url", srv.URL, "--state-dir", dir)
	if res.err == nil {
		t.Fatal("healthcheck should fail when the server is down")
	}
	if !strings.Contains(res.stdout, "Chat server unreachable") || !strings.Contains(res.stdout, "Store read/write OK") {
		t.Errorf("output:\n%s", res.stdout)
	}
}
