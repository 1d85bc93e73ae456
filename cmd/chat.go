package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/iksnae/manoj-chat/internal"
	"github.com/iksnae/manoj-chat/internal/tui"
	"github.com/spf13/cobra"
)

const logFileName = "manoj-chat.log"

var chatRemote bool

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat",
	Long: `Open the interactive chat view.

Without --remote the conversation is kept in the local store and survives
restarts. With --remote conversations live on the chat server and are listed
by title; this requires signing in with 'manoj-chat login'.

Inside the chat, type a message and press enter, or use:
  /new         start a new conversation (remote)
  /list        toggle the conversation list (remote)
  /open <id>   open a conversation (remote)
  /clear       clear the conversation
  /quit        leave`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				internal.LogWarn("Failed to close store: %v", err)
			}
		}()

		// The view owns the terminal; logs go to a file until it exits.
		restore := redirectLogs(a.cfg.StateDir)
		defer restore()

		bridge := &tui.Bridge{}
		s, err := a.newSession(modeFor(chatRemote), bridge)
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), s, bridge)
	},
}

func redirectLogs(dir string) func() {
	var w io.Writer = io.Discard
	var f *os.File
	if err := os.MkdirAll(dir, 0700); err == nil {
		f, err = os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err == nil {
			w = f
		}
	}
	internal.SetLogOutput(w)
	return func() {
		internal.SetLogOutput(os.Stderr)
		if f != nil {
			_ = f.Close()
		}
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&chatRemote, "remote", false, "Use server-side conversations")
}
