package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/GAYIVORE/studybuddy-cli/internal/models"
	"github.com/GAYIVORE/studybuddy-cli/internal/session"
)

const maxVisibleMessages = 50

// uiEvent carries a session notification into the chat view.
type uiEvent struct {
	kind       string // "notify", "message", "processing", "connection"
	text       string
	severity   session.Severity
	message    models.Message
	processing bool
	connection session.ConnectionStatus
}

// chatUI implements session.UI by forwarding events into the
// running bubbletea program via a channel.
type chatUI struct {
	events chan uiEvent
}

func (u *chatUI) Notify(text string, sev session.Severity, _ time.Duration) {
	u.events <- uiEvent{kind: "notify", text: text, severity: sev}
}

func (u *chatUI) RenderMessage(msg models.Message) {
	u.events <- uiEvent{kind: "message", message: msg}
}

func (u *chatUI) SetProcessing(on bool) {
	u.events <- uiEvent{kind: "processing", processing: on}
}

func (u *chatUI) SetConnectionStatus(status session.ConnectionStatus) {
	u.events <- uiEvent{kind: "connection", connection: status}
}

type sessionEventMsg uiEvent

// turnDoneMsg signals that a Send or Clear finished.
type turnDoneMsg struct {
	err error
}

type probeDoneMsg struct{}

type notice struct {
	text     string
	severity session.Severity
}

type chatModel struct {
	ctrl     *session.Controller
	events   chan uiEvent
	input    textinput.Model
	theme    Theme
	messages []models.Message
	notices  []notice

	connection session.ConnectionStatus
	processing bool
	quitting   bool
}

func newChatModel(ctrl *session.Controller, events chan uiEvent) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask me anything... (/quit to leave)"
	ti.CharLimit = session.MaxMessageLength

	return chatModel{
		ctrl:       ctrl,
		events:     events,
		input:      ti,
		theme:      defaultTheme,
		messages:   ctrl.Messages(),
		connection: session.StatusChecking,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		m.input.Focus(),
		m.waitForEvent(),
		m.probe(),
	)
}

// waitForEvent blocks on the session event channel; each delivered
// event re-arms itself in Update.
func (m chatModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return sessionEventMsg(<-m.events)
	}
}

func (m chatModel) probe() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		m.ctrl.Probe(ctx)
		return probeDoneMsg{}
	}
}

func (m chatModel) send(text string) tea.Cmd {
	return func() tea.Msg {
		return turnDoneMsg{err: m.ctrl.Send(context.Background(), text)}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.submit()
		}

	case sessionEventMsg:
		m.apply(uiEvent(msg))
		return m, m.waitForEvent()

	case turnDoneMsg:
		if msg.err != nil {
			m.pushNotice(msg.err.Error(), session.SeverityError)
		}
		return m, nil

	case probeDoneMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.SetValue("")

	if strings.HasPrefix(text, "/") {
		return m.runSlashCommand(text)
	}
	if m.processing {
		m.pushNotice("Please wait for the current response.", session.SeverityWarning)
		return m, nil
	}
	return m, m.send(text)
}

func (m chatModel) runSlashCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	switch fields[0] {
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	case "/mode":
		if len(fields) < 2 {
			m.pushNotice(fmt.Sprintf("Current mode: %s. Usage: /mode general|study|research", m.ctrl.Mode()), session.SeverityInfo)
			return m, nil
		}
		if err := m.ctrl.SetMode(models.Mode(fields[1])); err != nil {
			m.pushNotice(err.Error(), session.SeverityError)
			return m, nil
		}
		m.pushNotice(fmt.Sprintf("Switched to %s mode.", fields[1]), session.SeveritySuccess)
		return m, nil

	case "/rag":
		enabled := !m.ctrl.KnowledgeBaseEnabled()
		m.ctrl.SetKnowledgeBase(enabled)
		if enabled {
			m.pushNotice("Knowledge base enabled.", session.SeveritySuccess)
		} else {
			m.pushNotice("Knowledge base disabled.", session.SeverityInfo)
		}
		return m, nil

	case "/clear":
		m.messages = nil
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			m.ctrl.Clear(ctx, false)
			return turnDoneMsg{}
		}

	case "/export":
		path, err := m.ctrl.Export(".")
		if err != nil {
			m.pushNotice(fmt.Sprintf("Export failed: %s", err), session.SeverityError)
		} else {
			m.pushNotice(fmt.Sprintf("Conversation saved to %s", path), session.SeveritySuccess)
		}
		return m, nil

	default:
		m.pushNotice(fmt.Sprintf("Unknown command %s", fields[0]), session.SeverityWarning)
		return m, nil
	}
}

func (m *chatModel) apply(ev uiEvent) {
	switch ev.kind {
	case "notify":
		m.pushNotice(ev.text, ev.severity)
	case "message":
		m.messages = append(m.messages, ev.message)
		if len(m.messages) > maxVisibleMessages {
			m.messages = m.messages[len(m.messages)-maxVisibleMessages:]
		}
	case "processing":
		m.processing = ev.processing
	case "connection":
		m.connection = ev.connection
	}
}

func (m *chatModel) pushNotice(text string, sev session.Severity) {
	m.notices = append(m.notices, notice{text: text, severity: sev})
	if len(m.notices) > 3 {
		m.notices = m.notices[len(m.notices)-3:]
	}
}

func (m chatModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m chatModel) renderContent() string {
	if m.quitting {
		return m.theme.hintStyle().Render("Bye! Your conversation is saved.\n")
	}

	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteString("\n\n")

	if len(m.messages) == 0 {
		b.WriteString(m.theme.hintStyle().Render(models.WelcomeMessage))
		b.WriteString("\n")
	}
	for _, msg := range m.messages {
		b.WriteString(m.renderChatMessage(msg))
		b.WriteString("\n")
	}

	if m.processing {
		b.WriteString(m.theme.hintStyle().Render("StudyBuddy is thinking..."))
		b.WriteString("\n")
	}
	for _, n := range m.notices {
		b.WriteString(m.noticeStyle(n.severity).Render(n.text))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.theme.hintStyle().Render("enter to send · /mode /rag /clear /export /quit"))
	b.WriteString("\n")
	return b.String()
}

func (m chatModel) headerLine() string {
	var conn string
	switch m.connection {
	case session.StatusConnected:
		conn = m.theme.successStyle().Render("● connected")
	case session.StatusDisconnected:
		conn = m.theme.errorStyle().Render("● disconnected")
	default:
		conn = m.theme.hintStyle().Render("● checking...")
	}

	kb := "off"
	if m.ctrl.KnowledgeBaseEnabled() {
		kb = "on"
	}
	info := m.theme.statusStyle().Render(fmt.Sprintf("mode: %s · knowledge base: %s", m.ctrl.Mode(), kb))
	return fmt.Sprintf("StudyBuddy  %s  %s", conn, info)
}

func (m chatModel) renderChatMessage(msg models.Message) string {
	name := msg.Sender.DisplayName()
	var label string
	if msg.Sender == models.SenderUser {
		label = m.theme.userStyle().Render(name + ":")
	} else {
		label = m.theme.tutorStyle().Render(name + ":")
	}
	return fmt.Sprintf("%s %s", label, msg.Content)
}

func (m chatModel) noticeStyle(sev session.Severity) lipgloss.Style {
	switch sev {
	case session.SeveritySuccess:
		return m.theme.successStyle()
	case session.SeverityWarning:
		return m.theme.warningStyle()
	case session.SeverityError:
		return m.theme.errorStyle()
	default:
		return m.theme.statusStyle()
	}
}
