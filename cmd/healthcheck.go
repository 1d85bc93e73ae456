package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const healthcheckKey = "healthcheck"

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, storage and the chat server",
	Long: `Check the health of manoj-chat by verifying:
  • Configuration
  • Local store read/write access
  • Chat server reachability
  • Sign-in state

Use --verbose for details on each step.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		_, _ = fmt.Fprintln(out, sectionStyle.Render("🔍 Manoj Chat Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: Configuration
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		a, err := newApp(cfg)
		if err != nil {
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Failed to initialize:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer func() { _ = a.Close() }()
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if verbose {
			source := a.cfg.Path
			if source == "" {
				source = "(defaults)"
			}
			detail(out, "Config file: %s", source)
			detail(out, "Chat server: %s", a.cfg.API.URL)
			detail(out, "State dir: %s", a.cfg.StateDir)
		}
		_, _ = fmt.Fprintln(out)

		// Step 2: Store round trip
		_, _ = fmt.Fprintln(out, infoStyle.Render(fmt.Sprintf("Step 2: Testing %s store...", a.cfg.Store.Driver)))
		storeOK := true
		if err := storeRoundTrip(cmd, a); err != nil {
			storeOK = false
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Store is not usable:"), err)
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Store read/write OK"))
			if messages, ok := a.store.Load(ctx); ok {
				detail(out, "Local history: %d message(s)", len(messages))
			} else {
				detail(out, "Local history: empty")
			}
		}
		_, _ = fmt.Fprintln(out)

		// Step 3: Chat server
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Contacting chat server..."))
		serverOK := true
		started := time.Now()
		if err := a.gateway.Ping(ctx); err != nil {
			serverOK = false
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Chat server unreachable:"), err)
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Chat server reachable"))
			if verbose {
				detail(out, "%s answered in %s", a.gateway.BaseURL(), time.Since(started).Round(time.Millisecond))
			}
		}
		_, _ = fmt.Fprintln(out)

		// Step 4: Identity
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 4: Checking sign-in..."))
		if key, err := a.identityKey(); err == nil {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Signed in"))
			if verbose {
				detail(out, "Identity: %s", key)
			}
		} else {
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Not signed in (remote conversations unavailable)"))
		}
		_, _ = fmt.Fprintln(out)

		// Summary
		_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		_, _ = fmt.Fprintln(out)
		switch {
		case storeOK && serverOK:
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
			return nil
		case storeOK:
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Local chat works, but the chat server cannot be reached"))
			return fmt.Errorf("health check failed: chat server unreachable")
		default:
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed: store unusable")
		}
	},
}

func storeRoundTrip(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	backend := a.store.Backend()
	want := time.Now().UTC().Format(time.RFC3339Nano)
	if err := backend.Set(ctx, healthcheckKey, want); err != nil {
		return err
	}
	got, ok, err := backend.Get(ctx, healthcheckKey)
	if err != nil {
		return err
	}
	if !ok || got != want {
		return fmt.Errorf("read back %q, wrote %q", got, want)
	}
	return backend.Delete(ctx, healthcheckKey)
}

func detail(out io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(out, "   "+format+"\n", args...)
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
