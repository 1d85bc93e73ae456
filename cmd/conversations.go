package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/manoj-chat/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)
)

const maxListedTitleRunes = 50

// conversationsCmd represents the conversations command
var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"list", "ls"},
	Short:   "List your server-side conversations",
	Long:    `List the titles of the conversations stored for the signed-in user.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		key, err := a.identityKey()
		if err != nil {
			return err
		}

		chats, err := a.gateway.ListConversations(cmd.Context(), key)
		if err != nil {
			return fmt.Errorf("failed to list conversations: %w", err)
		}

		displayConversations(cmd.OutOrStdout(), chats, time.Now())
		return nil
	},
}

func displayConversations(out io.Writer, chats []internal.ChatSummary, now time.Time) {
	if len(chats) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("📋 No conversations yet"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d conversation(s)", len(chats))))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Created")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 72))

	for _, chat := range chats {
		title := chat.Title
		if title == "" {
			title = "Untitled"
		}
		if r := []rune(title); len(r) > maxListedTitleRunes {
			title = string(r[:maxListedTitleRunes-3]) + "..."
		}

		created := "—"
		if chat.CreatedAt != nil && !chat.CreatedAt.IsZero() {
			created = internal.FormatCreated(chat.CreatedAt.Local(), now)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t\n",
			idStyle.Render(strconv.FormatInt(chat.ID, 10)),
			title,
			dateStyle.Render(created),
		)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, hintStyle.Render("Tip: manoj-chat show <id> prints a conversation, manoj-chat send --remote --chat <id> continues it"))
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
}
