package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/manoj-chat/internal"
	"github.com/spf13/cobra"
)

var (
	limit int
	since string
)

var (
	// Styles for show and history
	conversationHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <chat-id>",
	Short: "Show the messages of a server-side conversation",
	Long: `Display the messages of one of your server-side conversations.
Use 'manoj-chat conversations' to see the available IDs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseChatID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		key, err := a.identityKey()
		if err != nil {
			return err
		}

		messages, err := a.gateway.FetchMessages(cmd.Context(), chatID, key)
		if err != nil {
			return fmt.Errorf("failed to load conversation %d: %w", chatID, err)
		}

		return displayMessages(cmd.OutOrStdout(), fmt.Sprintf("Conversation %d", chatID), messages)
	},
}

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the local conversation",
	Long:  `Display the conversation kept in the local store.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		messages, ok := a.store.Load(cmd.Context())
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render("💬 No local history yet"))
			return nil
		}
		return displayMessages(cmd.OutOrStdout(), "Local conversation", messages)
	},
}

func parseChatID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid chat id %q: must be a positive number", s)
	}
	return id, nil
}

func displayMessages(out io.Writer, heading string, messages []internal.Message) error {
	toShow := messages
	if since != "" {
		sinceTime, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return fmt.Errorf("invalid --since timestamp format (expected RFC3339): %w", err)
		}
		toShow = filterSince(messages, sinceTime)
	}

	_, _ = fmt.Fprintln(out, conversationHeaderStyle.Render(fmt.Sprintf("💬 %s", heading)))

	total := len(toShow)
	if limit > 0 && limit < total {
		toShow = toShow[:limit]
	}
	for i, msg := range toShow {
		displayMessage(out, i+1, msg, total)
	}

	if limit > 0 && limit < total {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, hintStyle.Render(fmt.Sprintf("... (%d more message(s))", total-limit)))
	}
	return nil
}

func filterSince(messages []internal.Message, since time.Time) []internal.Message {
	filtered := make([]internal.Message, 0, len(messages))
	for _, msg := range messages {
		if !msg.CreatedAt.IsZero() && !msg.CreatedAt.Before(since) {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

func displayMessage(out io.Writer, index int, msg internal.Message, total int) {
	actorStyle := assistantMessageStyle
	actorLabel := "🤖 Assistant"
	if msg.IsUser() {
		actorStyle = userMessageStyle
		actorLabel = "👤 You"
	}

	header := actorStyle.Render(actorLabel) + " " + timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	if !msg.CreatedAt.IsZero() {
		header += " " + timestampStyle.Render(msg.CreatedAt.Local().Format("15:04:05"))
	}
	_, _ = fmt.Fprintln(out, header)

	content := strings.TrimSpace(msg.Text)
	if content == "" {
		_, _ = fmt.Fprintln(out, messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
		return
	}
	_, _ = fmt.Fprintln(out, messageContentStyle.Render(wrapText(content, 80)))
}

// wrapText wraps each line of text at width, breaking on spaces.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	wrapped := make([]string, 0, len(lines))
	for _, line := range lines {
		if len([]rune(line)) <= width {
			wrapped = append(wrapped, line)
			continue
		}
		words := strings.Fields(line)
		if len(words) == 0 {
			wrapped = append(wrapped, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			if len([]rune(current))+1+len([]rune(word)) > width {
				wrapped = append(wrapped, current)
				current = word
				continue
			}
			current += " " + word
		}
		wrapped = append(wrapped, current)
	}
	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
	for _, c := range []*cobra.Command{showCmd, historyCmd} {
		c.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show (0 = all)")
		c.Flags().StringVar(&since, "since", "", "Show messages since timestamp (RFC3339 format)")
	}
}
