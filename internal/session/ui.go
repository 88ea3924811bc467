package session

import (
	"time"

	"github.com/GAYIVORE/studybuddy-cli/internal/models"
)

// Severity classifies a transient user notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ConnectionStatus reflects the outcome of the last health probe.
type ConnectionStatus string

const (
	StatusChecking     ConnectionStatus = "checking"
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// UI is the presentation collaborator the core notifies. Implementations own
// layout and styling; the core only emits these events.
type UI interface {
	Notify(message string, severity Severity, duration time.Duration)
	RenderMessage(msg models.Message)
	SetProcessing(processing bool)
	SetConnectionStatus(status ConnectionStatus)
}

// NopUI discards all presentation events. Useful as a default and in tests.
type NopUI struct{}

func (NopUI) Notify(string, Severity, time.Duration) {}
func (NopUI) RenderMessage(models.Message) {}
func (NopUI) SetProcessing(bool) {}
func (NopUI) SetConnectionStatus(ConnectionStatus) {}
