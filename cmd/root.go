package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/manoj-chat/internal"
	"github.com/iksnae/manoj-chat/internal/config"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	apiURL      string
	storeDriver string
	stateDir    string
	configPath  string
	ephemeral   bool
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// cfg is resolved by the root command before any subcommand runs.
var cfg *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "manoj-chat",
	Short: "Chat with the Manoj assistant from your terminal",
	Long: `A terminal client for the Manoj chat assistant.

Conversations are either kept on this machine or, once you sign in,
stored by the chat server and grouped under your account.

Features:
  • Interactive chat with typing indicator and history
  • Local history in a file, SQLite or Redis store
  • Server-side conversations with titles
  • Export history (JSONL, Markdown, YAML, JSON)

Quick Start:
  manoj-chat chat                         # Chat with local history
  manoj-chat login --token <id-token>     # Sign in
  manoj-chat chat --remote                # Chat with server-side conversations
  manoj-chat send "Hello"                 # One-shot message

Configuration is read from ~/.manoj-chat/config.yaml, a .env file and
MANOJ_CHAT_* environment variables. Flags override all of them.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveConfig()
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// resolveConfig layers the config file, .env, environment and flags.
func resolveConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		internal.LogWarn("Failed to read .env: %v", err)
	}

	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.LookupEnv)

	if apiURL != "" {
		c.API.URL = apiURL
	}
	if stateDir != "" {
		c.SetStateDir(stateDir)
	}
	if storeDriver != "" {
		c.Store.Driver = storeDriver
	}
	if ephemeral {
		c.Store.Driver = "memory"
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := internal.ParseLogLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	internal.SetLogLevel(level)
	if verbose {
		internal.SetVerbose(true)
	}
	if c.Path != "" {
		internal.LogDebug("Loaded config from %s", c.Path)
	}
	return c, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Chat server origin (default http://127.0.0.1:5000)")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "Local history store: file, sqlite, redis or memory")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Directory for history, cookies and logs (default ~/.manoj-chat)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.manoj-chat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep history in memory only for this run")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
