package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// ShowProgress runs fn while a spinner with message is drawn on stderr.
// Outside a terminal the message is logged and fn runs without decoration.
// The spinner stops when ctx is done, but fn is always waited for.
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		LogDebug(message)
		return fn()
	}
	return showProgressSpinner(ctx, os.Stderr, message, fn)
}

func showProgressSpinner(ctx context.Context, w io.Writer, message string, fn func() error) error {
	frames := spinner.MiniDot.Frames
	done := make(chan error, 1)
	stop := make(chan struct{})
	spinnerDone := make(chan struct{})

	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(spinner.MiniDot.FPS)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				_, _ = fmt.Fprintf(w, "\r%s %s", progressStyle.Render(frames[i%len(frames)]), message)
			}
		}
	}()

	go func() {
		done <- fn()
	}()

	err := <-done
	close(stop)
	<-spinnerDone

	if err != nil {
		_, _ = fmt.Fprintf(w, "\r%s %s\n", errorStyle.Render("✗"), message)
		return err
	}
	_, _ = fmt.Fprintf(w, "\r%s %s\n", successStyle.Render("✓"), message)
	return nil
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	if isTerminal(w) {
		_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render("✓"), message)
	} else {
		_, _ = fmt.Fprintln(w, message)
	}
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	if isTerminal(w) {
		_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render("✗"), message)
	} else {
		_, _ = fmt.Fprintf(w, "ERROR: %s\n", message)
	}
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string) {
	if isTerminal(w) {
		_, _ = fmt.Fprintf(w, "%s %s\n", progressStyle.Render("ℹ"), message)
	} else {
		_, _ = fmt.Fprintln(w, message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	if isTerminal(w) {
		_, _ = fmt.Fprintf(w, "%s %s\n", warningStyle.Render("⚠"), message)
	} else {
		_, _ = fmt.Fprintf(w, "WARNING: %s\n", message)
	}
}
