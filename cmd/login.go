package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iksnae/manoj-chat/internal"
	"github.com/iksnae/manoj-chat/internal/identity"
	"github.com/spf13/cobra"
)

var loginToken string

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with a Google ID token",
	Long: `Sign in by handing a Google ID token to the chat server.

On success the account is remembered for 7 days and server-side
conversations become available (chat --remote, conversations, show).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(loginToken)
		if token == "" {
			return errors.New("--token is required")
		}

		claims, err := identity.InspectIDToken(token, time.Now())
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		internal.LogDebug("ID token for %s", displayName(claims.Email, claims.Subject))

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		result, err := a.gateway.VerifyGoogleToken(cmd.Context(), token)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := identity.Deposit(a.jar, token, result); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Signed in as %s", displayName(result.User.Name, claims.Name, result.User.Email, claims.Email, result.User.GoogleID)))
		return nil
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		if err := a.jar.Clear(); err != nil {
			return fmt.Errorf("failed to clear cookies: %w", err)
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

func displayName(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return "unknown user"
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Google ID token")
}
