package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/manoj-chat/internal"
	"github.com/iksnae/manoj-chat/internal/session"
	"github.com/spf13/cobra"
)

var clearYes bool

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the local conversation",
	Long: `Delete the locally stored conversation and start over with the greeting.
Server-side conversations are not affected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !clearYes {
			ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("%s: %s", session.ClearAlertTitle, session.ClearConfirmMessage))
			if err != nil {
				return err
			}
			if !ok {
				internal.PrintInfo(out, "Cancelled")
				return nil
			}
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		errOut := cmd.ErrOrStderr()
		s, err := a.newSession(session.ModeLocal, session.NotifierFunc(func(title, message string) {
			internal.PrintError(errOut, fmt.Sprintf("%s: %s", title, message))
		}))
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		s.Init(ctx)
		s.RequestClear()
		if err := s.ConfirmClear(ctx); err != nil {
			return err
		}

		internal.PrintSuccess(out, "Chat history cleared")
		return nil
	},
}

// confirm asks a y/N question on out and reads the answer from in.
// Anything but "y" or "yes" declines, including end of input.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Do not ask for confirmation")
}
