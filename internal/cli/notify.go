package cli

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/GAYIVORE/studybuddy-cli/internal/models"
	"github.com/GAYIVORE/studybuddy-cli/internal/session"
)

// terminalUI is the presentation collaborator for one-shot commands: it
// prints notifications to stderr, messages to stdout, and remembers the
// connection status for the status line.
type terminalUI struct {
	mu         sync.Mutex
	theme      Theme
	plain      bool
	connection session.ConnectionStatus
}

func newTerminalUI() *terminalUI {
	return &terminalUI{
		theme:      defaultTheme,
		plain:      !term.IsTerminal(int(os.Stdout.Fd())),
		connection: session.StatusChecking,
	}
}

// Notify prints one transient diagnostic line. The duration hint is
// meaningless on a scrolling terminal and is ignored.
func (u *terminalUI) Notify(message string, severity session.Severity, _ time.Duration) {
	if u.plain {
		fmt.Fprintln(os.Stderr, message)
		return
	}
	var style = u.theme.statusStyle()
	switch severity {
	case session.SeveritySuccess:
		style = u.theme.successStyle()
	case session.SeverityWarning:
		style = u.theme.warningStyle()
	case session.SeverityError:
		style = u.theme.errorStyle()
	}
	fmt.Fprintln(os.Stderr, style.Render(message))
}

// RenderMessage prints a message with its sender label.
func (u *terminalUI) RenderMessage(msg models.Message) {
	label := msg.Sender.DisplayName()
	if u.plain {
		fmt.Printf("%s: %s\n", label, msg.Content)
		return
	}
	style := u.theme.userStyle()
	if msg.Sender == models.SenderAssistant {
		style = u.theme.tutorStyle()
	}
	fmt.Printf("%s %s\n", style.Render(label+":"), msg.Content)
}

// SetProcessing is a no-op for one-shot commands; cobra blocks until the
// turn completes anyway.
func (u *terminalUI) SetProcessing(bool) {}

// SetConnectionStatus records the last probe result.
func (u *terminalUI) SetConnectionStatus(status session.ConnectionStatus) {
	u.mu.Lock()
	u.connection = status
	u.mu.Unlock()
}

// Connection returns the last recorded probe result.
func (u *terminalUI) Connection() session.ConnectionStatus {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.connection
}
