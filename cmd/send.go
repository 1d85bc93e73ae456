package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iksnae/manoj-chat/internal"
	"github.com/iksnae/manoj-chat/internal/session"
	"github.com/iksnae/manoj-chat/internal/tui"
	"github.com/spf13/cobra"
)

var (
	sendRemote bool
	sendChatID int64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <message...>",
	Short: "Send one message and print the reply",
	Long: `Send a single message and print the assistant's reply.

The message is added to the local history unless --remote is given. With
--remote a new server-side conversation is started, or the conversation
given by --chat is continued.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if sendChatID != 0 && !sendRemote {
			return errors.New("--chat requires --remote")
		}
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return session.ErrEmptyInput
		}
		if len([]rune(text)) > tui.MaxInputLength {
			return fmt.Errorf("message is longer than %d characters", tui.MaxInputLength)
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				internal.LogWarn("Failed to close store: %v", err)
			}
		}()

		errOut := cmd.ErrOrStderr()
		notifier := session.NotifierFunc(func(title, message string) {
			internal.PrintError(errOut, fmt.Sprintf("%s: %s", title, message))
		})
		s, err := a.newSession(modeFor(sendRemote), notifier)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		s.Init(ctx)
		if sendChatID != 0 {
			if err := s.SelectConversation(ctx, sendChatID); err != nil {
				return fmt.Errorf("failed to open conversation %d: %w", sendChatID, err)
			}
		}

		sendErr := internal.ShowProgress(ctx, "Typing...", func() error {
			return s.Send(ctx, text)
		})

		snap := s.Snapshot()
		if n := len(snap.Messages); n > 0 && !snap.Messages[n-1].IsUser() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), snap.Messages[n-1].Text)
		}
		if sendErr != nil {
			return sendErr
		}
		if sendRemote && sendChatID == 0 && snap.ActiveConversationID != 0 {
			internal.PrintInfo(errOut, fmt.Sprintf("Conversation %d (continue with --chat %d)", snap.ActiveConversationID, snap.ActiveConversationID))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().BoolVar(&sendRemote, "remote", false, "Send to a server-side conversation")
	sendCmd.Flags().Int64Var(&sendChatID, "chat", 0, "Continue the server-side conversation with this ID")
}
