// Package tui is the interactive chat view. It renders session snapshots and
// turns key presses into session intents; all state lives in the session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/manoj-chat/internal"
	"github.com/iksnae/manoj-chat/internal/session"
)

// MaxInputLength caps a single message.
const MaxInputLength = 500

const (
	title       = "Manoj Chat"
	placeholder = "Type your message..."
	typingText  = "Typing..."
	loadingText = "Loading chat..."
	helpText    = "/new  /list  /open <id>  /clear  /quit   (pgup/pgdn scroll, esc dismiss)"
)

// commands are the slash commands the view handles itself. Anything else,
// "/etc/hosts?" included, is sent as a message.
var commands = map[string]bool{
	"/quit":  true,
	"/exit":  true,
	"/clear": true,
	"/new":   true,
	"/list":  true,
	"/open":  true,
	"/help":  true,
}

// opDoneMsg reports the end of a session operation started from the view.
// input is the submitted text of a send.
type opDoneMsg struct {
	op    string
	input string
	err   error
}

// Model is the bubbletea model of the chat view.
type Model struct {
	ctx     context.Context
	session *session.Session

	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model

	snap     session.Snapshot
	alert    string
	status   string
	showList bool

	width  int
	height int
	ready  bool
}

// New creates the view for s. s is initialized when the program starts.
func New(ctx context.Context, s *session.Session) Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = MaxInputLength
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		ctx:       ctx,
		session:   s,
		textinput: ti,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		snap:      s.Snapshot(),
		status:    helpText,
		showList:  s.Mode() == session.ModeRemote,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.run("init", func() error {
			m.session.Init(m.ctx)
			return nil
		}),
	)
}

// run executes a session call off the event loop; the session reports
// state changes back through the Bridge.
func (m Model) run(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn()}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.snap.ClearRequested {
			return m.updateConfirm(msg)
		}

		switch msg.Type {
		case tea.KeyEsc:
			if m.alert != "" {
				m.alert = ""
				return m, nil
			}
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleSubmit()
		case tea.KeyPgUp, tea.KeyPgDown:
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

		if !m.snap.Pending {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}
		return m, tiCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.refresh()
		return m, nil

	case snapshotMsg:
		m.snap = session.Snapshot(msg)
		m.refresh()
		return m, nil

	case alertMsg:
		m.alert = msg.title + ": " + msg.message
		return m, nil

	case opDoneMsg:
		m.status = describeResult(msg, m.snap)
		if msg.op == "send" && rejected(msg.err) && m.textinput.Value() == "" {
			m.textinput.SetValue(msg.input)
			m.textinput.CursorEnd()
		}
		return m, nil

	case spinner.TickMsg:
		var spCmd tea.Cmd
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, spCmd
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		return m, m.run("clear", func() error { return m.session.ConfirmClear(m.ctx) })
	case "n", "esc":
		return m, m.run("cancel", func() error {
			m.session.CancelClear()
			return nil
		})
	}
	return m, nil
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.snap.Pending {
		return m, nil
	}
	input := m.textinput.Value()
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return m, nil
	}
	if fields := strings.Fields(trimmed); commands[fields[0]] {
		m.textinput.Reset()
		return m.handleCommand(trimmed)
	}

	// The session may still turn the message away; the input comes back then.
	m.textinput.Reset()
	m.alert = ""
	send := func() tea.Msg {
		return opDoneMsg{op: "send", input: input, err: m.session.Send(m.ctx, input)}
	}
	return m, tea.Batch(m.spinner.Tick, send)
}

// rejected reports whether Send refused the message without taking it.
func rejected(err error) bool {
	return errors.Is(err, session.ErrBusy) || errors.Is(err, session.ErrNotReady)
}

func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit":
		return m, tea.Quit

	case "/clear":
		return m, m.run("request-clear", func() error {
			m.session.RequestClear()
			return nil
		})

	case "/new":
		return m, m.run("new", m.session.NewChat)

	case "/list":
		m.showList = !m.showList
		return m, m.run("list", func() error { return m.session.RefreshConversations(m.ctx) })

	case "/open":
		if len(fields) != 2 {
			m.status = "usage: /open <conversation id>"
			return m, nil
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || id <= 0 {
			m.status = fmt.Sprintf("invalid conversation id %q", fields[1])
			return m, nil
		}
		return m, m.run("open", func() error { return m.session.SelectConversation(m.ctx, id) })

	case "/help":
		m.status = helpText
		return m, nil
	}
	return m, nil
}

// describeResult turns an operation result into the status line. Send
// failures are already shown as an alert and an error bubble.
func describeResult(msg opDoneMsg, snap session.Snapshot) string {
	switch {
	case msg.err == nil:
		if msg.op == "list" {
			return fmt.Sprintf("%d conversations", len(snap.Conversations))
		}
		return helpText
	case errors.Is(msg.err, internal.ErrMissingIdentity):
		return "not signed in: run `manoj-chat login` first"
	case errors.Is(msg.err, session.ErrRemoteOnly):
		return "conversations are only available with --remote"
	case errors.Is(msg.err, session.ErrBusy):
		return "wait for the current reply"
	case errors.Is(msg.err, session.ErrNotReady):
		return loadingText
	case msg.op == "send":
		return helpText
	default:
		return fmt.Sprintf("%s failed: %v", msg.op, msg.err)
	}
}

func (m *Model) layout() {
	reserved := 6 // header, status, input and spacing
	if m.showList && m.snap.Mode == session.ModeRemote {
		reserved += min(len(m.snap.Conversations), 5) + 1
	}
	m.viewport.Width = max(m.width, 20)
	m.viewport.Height = max(m.height-reserved, 3)
	m.textinput.Width = max(m.width-4, 10)
}

func (m *Model) refresh() {
	m.layout()
	m.viewport.SetContent(renderMessages(m.snap.Messages, m.viewport.Width))
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(m.header()))
	b.WriteString("\n")

	if m.snap.Initializing {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), loadingText))
	} else {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	if m.showList && m.snap.Mode == session.ModeRemote {
		b.WriteString(renderConversations(m.snap.Conversations, m.snap.ActiveConversationID))
	}

	if m.snap.Pending {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), typingText))
	}
	if m.alert != "" {
		b.WriteString(alertStyle.Render(m.alert + "  (esc)"))
		b.WriteString("\n")
	}

	if m.snap.ClearRequested {
		b.WriteString(confirmStyle.Render(fmt.Sprintf("%s: %s (y/n)", session.ClearAlertTitle, session.ClearConfirmMessage)))
		b.WriteString("\n")
	} else {
		b.WriteString(m.textinput.View())
		b.WriteString("\n")
	}

	b.WriteString(statusStyle.Render(m.status))
	return b.String()
}

func (m Model) header() string {
	h := title
	if m.snap.Mode == session.ModeRemote {
		if m.snap.ActiveConversationID == 0 {
			h += " · new chat"
		} else {
			h += fmt.Sprintf(" · #%d", m.snap.ActiveConversationID)
			for _, c := range m.snap.Conversations {
				if c.ID == m.snap.ActiveConversationID {
					h += " " + c.Title
					break
				}
			}
		}
	}
	return h
}

// renderMessages draws user bubbles on the right and assistant bubbles on
// the left, each followed by its local time.
func renderMessages(messages []internal.Message, width int) string {
	if width <= 0 {
		width = 80
	}
	bubbleWidth := max(width*4/5, 10)

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		stamp := ""
		if !msg.CreatedAt.IsZero() {
			stamp = timeStyle.Render(msg.CreatedAt.Local().Format("15:04"))
		}

		if msg.IsUser() {
			bubble := userBubbleStyle.Width(min(lipgloss.Width(msg.Text)+2, bubbleWidth)).Render(msg.Text)
			block := lipgloss.JoinVertical(lipgloss.Right, bubble, stamp)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, block))
		} else {
			bubble := assistantBubbleStyle.Width(min(lipgloss.Width(msg.Text)+2, bubbleWidth)).Render(msg.Text)
			b.WriteString(lipgloss.JoinVertical(lipgloss.Left, bubble, stamp))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderConversations(chats []internal.ChatSummary, active int64) string {
	if len(chats) == 0 {
		return statusStyle.Render("no conversations") + "\n"
	}
	var b strings.Builder
	for i, c := range chats {
		if i == 5 {
			b.WriteString(statusStyle.Render(fmt.Sprintf("  … %d more (manoj-chat conversations)", len(chats)-5)))
			b.WriteString("\n")
			break
		}
		line := fmt.Sprintf("  %d  %s", c.ID, c.Title)
		if c.ID == active {
			line = activeChatStyle.Render("▸" + line[1:])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// Run starts the interactive view for s and blocks until the user quits.
// bridge must be the Notifier s was created with.
func Run(ctx context.Context, s *session.Session, bridge *Bridge) error {
	p := tea.NewProgram(New(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p)
	unsubscribe := s.Subscribe(bridge.Snapshot)
	defer unsubscribe()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
