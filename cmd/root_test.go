package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/manoj-chat/internal/config"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantErr    bool
		wantOutput string
	}{
		{
			name:       "version flag",
			args:       []string{"--version"},
			wantOutput: "dev (commit: unknown, built: unknown)",
		},
		{
			name:       "help flag",
			args:       []string{"--help"},
			wantOutput: "manoj-chat chat",
		},
		{
			name:    "unknown command",
			args:    []string{"nonexistent-command"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			res := execute(t, "", tt.args...)
			if (res.err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", res.err, tt.wantErr)
			}
			if !strings.Contains(res.stdout, tt.wantOutput) {
				t.Errorf("output = %q, want it to contain %q", res.stdout, tt.wantOutput)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"chat", "send", "conversations", "show", "history", "clear", "export", "healthcheck", "login", "logout"}
	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q is not registered", name)
		}
	}
}

func TestResolveConfig(t *testing.T) {
	t.Run("flags override environment", func(t *testing.T) {
		dir := isolate(t)
		t.Setenv(config.EnvAPIURL, "http://from-env:5000")
		t.Setenv(config.EnvStore, "file")
		resetFlags()
		t.Cleanup(resetFlags)

		apiURL = "http://from-flag:5000"
		storeDriver = "sqlite"
		stateDir = dir

		c, err := resolveConfig()
		if err != nil {
			t.Fatalf("resolveConfig() error = %v", err)
		}
		if c.API.URL != "http://from-flag:5000" {
			t.Errorf("API.URL = %q, want flag value", c.API.URL)
		}
		if c.Store.Driver != "sqlite" {
			t.Errorf("Store.Driver = %q, want sqlite", c.Store.Driver)
		}
		if c.Store.SQLitePath != filepath.Join(dir, "manoj-chat.db") {
			t.Errorf("Store.SQLitePath = %q, want it inside %s", c.Store.SQLitePath, dir)
		}
	})

	t.Run("environment applies without flags", func(t *testing.T) {
		isolate(t)
		t.Setenv(config.EnvLegacyAPIURL, "http://legacy:5000")
		resetFlags()
		t.Cleanup(resetFlags)

		c, err := resolveConfig()
		if err != nil {
			t.Fatalf("resolveConfig() error = %v", err)
		}
		if c.API.URL != "http://legacy:5000" {
			t.Errorf("API.URL = %q, want legacy env value", c.API.URL)
		}
		if c.Store.Driver != "file" {
			t.Errorf("Store.Driver = %q, want file", c.Store.Driver)
		}
	})

	t.Run("ephemeral forces the memory store", func(t *testing.T) {
		isolate(t)
		resetFlags()
		t.Cleanup(resetFlags)
		storeDriver = "sqlite"
		ephemeral = true

		c, err := resolveConfig()
		if err != nil {
			t.Fatalf("resolveConfig() error = %v", err)
		}
		if c.Store.Driver != "memory" {
			t.Errorf("Store.Driver = %q, want memory", c.Store.Driver)
		}
	})

	t.Run("invalid settings are rejected", func(t *testing.T) {
		tests := []struct {
			name  string
			setup func(t *testing.T)
		}{
			{"unknown driver", func(t *testing.T) { storeDriver = "postgres" }},
			{"redis without url", func(t *testing.T) { storeDriver = "redis" }},
			{"unknown log level", func(t *testing.T) { t.Setenv(config.EnvLogLevel, "chatty") }},
			{"missing config file", func(t *testing.T) { configPath = filepath.Join(t.TempDir(), "absent.yaml") }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				isolate(t)
				resetFlags()
				t.Cleanup(resetFlags)
				tt.setup(t)

				if _, err := resolveConfig(); err == nil {
					t.Error("resolveConfig() should fail")
				}
			})
		}
	})
}
