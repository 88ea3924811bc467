// Package session orchestrates user-initiated actions against the
// conversation model, the upload pipeline, and the remote StudyBuddy API.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/GAYIVORE/studybuddy-cli/internal/client"
	"github.com/GAYIVORE/studybuddy-cli/internal/metrics"
	"github.com/GAYIVORE/studybuddy-cli/internal/models"
)

// MaxMessageLength is the longest message accepted for a chat turn.
const MaxMessageLength = 2000

// FallbackMessage is appended as the assistant's reply whenever the remote
// chat call fails, so a turn never ends without a visible response.
const FallbackMessage = "⚠️ I'm having trouble reaching the StudyBuddy server right now. Please check that the backend is running and try again in a moment."

// notifyDuration is the display time hint passed with transient notifications.
const notifyDuration = 3 * time.Second

// Validation errors returned by Send before any network activity.
var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", MaxMessageLength)
	ErrBusy           = errors.New("a chat turn is already in progress")
)

// ChatAPI is the remote collaborator surface the controller consumes.
type ChatAPI interface {
	Health(ctx context.Context) (*client.HealthStatus, error)
	Chat(ctx context.Context, req client.ChatRequest) (*client.ChatResponse, error)
	ClearHistory(ctx context.Context) (int, error)
}

// SettingsStore is the durable layer behind settings and chat history.
type SettingsStore interface {
	models.Saver
	LoadSettings() (models.Settings, bool)
	SaveSettings(settings models.Settings)
	LoadConversation() []models.Message
}

// Controller owns the session state for the duration of the process: the
// conversation log, settings, mode, and knowledge-base toggle. All methods
// are safe for concurrent use; the conversation is only touched under the
// controller's lock.
type Controller struct {
	mu sync.Mutex

	api      ChatAPI
	store    SettingsStore
	conv     *models.Conversation
	settings models.Settings
	ui       UI
	logger   *slog.Logger
	stats    *metrics.Collector

	mode       models.Mode
	useKB      bool
	processing bool
	uploads    []models.UploadedFileRecord
}

// New creates a controller, loading settings and restoring the persisted
// conversation. A nil ui is replaced with NopUI; a nil logger with
// slog.Default().
func New(api ChatAPI, st SettingsStore, ui UI, logger *slog.Logger) *Controller {
	if ui == nil {
		ui = NopUI{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	settings, ok := st.LoadSettings()
	if !ok {
		settings = models.DefaultSettings()
	}

	conv := models.NewConversation(st)
	conv.Restore(st.LoadConversation())

	return &Controller{
		api:      api,
		store:    st,
		conv:     conv,
		settings: settings,
		ui:       ui,
		logger:   logger,
		stats:    metrics.NewCollector(),
		mode:     models.ModeGeneral,
	}
}

// SetUI replaces the presentation collaborator, e.g. when an interactive
// view takes over from the plain terminal.
func (c *Controller) SetUI(ui UI) {
	if ui == nil {
		ui = NopUI{}
	}
	c.mu.Lock()
	c.ui = ui
	c.mu.Unlock()
}

// notifier snapshots the current presentation collaborator.
func (c *Controller) notifier() UI {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ui
}

// Send runs one chat turn: validate, optimistically append the user message,
// call the remote API, and append either the assistant reply or the fixed
// fallback. The processing flag is cleared on every path by a single defer.
//
// A validation failure or a busy session returns an error and touches
// nothing; once the turn starts it always completes with a visible response
// and returns nil.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		c.notifier().Notify("Please type a message first.", SeverityWarning, notifyDuration)
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		c.notifier().Notify(fmt.Sprintf("Message is too long (max %d characters).", MaxMessageLength),
			SeverityWarning, notifyDuration)
		return ErrMessageTooLong
	}

	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return ErrBusy
	}
	c.processing = true
	mode := c.mode
	useKB := c.useKB
	c.mu.Unlock()

	c.notifier().SetProcessing(true)
	defer func() {
		c.mu.Lock()
		c.processing = false
		c.mu.Unlock()
		c.notifier().SetProcessing(false)
	}()

	c.appendAndRender(text, models.SenderUser, models.Metadata{Mode: mode, RagUsed: useKB})

	var resp *client.ChatResponse
	err := c.stats.Time(metrics.OpChat, func() error {
		var chatErr error
		resp, chatErr = c.api.Chat(ctx, client.ChatRequest{
			Message: text,
			Mode:    string(mode),
			UseRAG:  useKB,
		})
		return chatErr
	})
	if err != nil {
		c.logger.Warn("chat turn failed", "mode", mode, "error", err)
		c.appendAndRender(FallbackMessage, models.SenderAssistant, models.Metadata{Mode: mode})
		c.notifier().Notify("Connection problem - showing offline reply.", SeverityError, notifyDuration)
		return nil
	}

	c.logger.Debug("chat turn completed",
		"mode", resp.Mode, "model", resp.Model,
		"message_id", resp.MessageID, "conversation_length", resp.ConversationLength)

	c.appendAndRender(resp.Response, models.SenderAssistant, models.Metadata{
		Mode:    models.Mode(resp.Mode),
		Model:   resp.Model,
		RagUsed: resp.RAGUsed,
	})
	return nil
}

// appendAndRender appends under the lock and hands the created message to
// the presentation layer.
func (c *Controller) appendAndRender(content string, sender models.Sender, meta models.Metadata) {
	c.mu.Lock()
	msg := c.conv.Append(content, sender, meta)
	c.mu.Unlock()
	c.notifier().RenderMessage(msg)
}

// Probe checks server reachability. The result only drives the connection
// indicator; a failed probe never blocks any other operation.
func (c *Controller) Probe(ctx context.Context) ConnectionStatus {
	c.notifier().SetConnectionStatus(StatusChecking)

	var health *client.HealthStatus
	err := c.stats.Time(metrics.OpHealth, func() error {
		var probeErr error
		health, probeErr = c.api.Health(ctx)
		return probeErr
	})
	if err != nil {
		c.logger.Debug("health probe failed", "error", err)
		c.notifier().SetConnectionStatus(StatusDisconnected)
		return StatusDisconnected
	}

	c.logger.Debug("health probe ok", "status", health.Status, "api_connection", health.APIConnection)
	c.notifier().SetConnectionStatus(StatusConnected)
	return StatusConnected
}

// Mode returns the active conversational mode.
func (c *Controller) Mode() models.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches the active mode. Switching is local and instantaneous.
func (c *Controller) SetMode(mode models.Mode) error {
	if !models.ValidMode(mode) {
		return fmt.Errorf("unknown mode %q", mode)
	}
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	return nil
}

// KnowledgeBaseEnabled reports whether chat turns request RAG context.
func (c *Controller) KnowledgeBaseEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.useKB
}

// SetKnowledgeBase toggles RAG usage. Local and independent of any in-flight
// request.
func (c *Controller) SetKnowledgeBase(enabled bool) {
	c.mu.Lock()
	c.useKB = enabled
	c.mu.Unlock()
}

// RecordUpload stores the metadata of a successful ingestion and enables the
// knowledge base on the first success if it was disabled.
func (c *Controller) RecordUpload(rec models.UploadedFileRecord) {
	c.mu.Lock()
	c.uploads = append(c.uploads, rec)
	enabled := c.useKB
	c.useKB = true
	c.mu.Unlock()

	if !enabled {
		c.notifier().Notify("Knowledge base enabled - answers will use your documents.",
			SeverityInfo, notifyDuration)
	}
}

// UploadedFiles returns the records of this session's successful ingestions.
func (c *Controller) UploadedFiles() []models.UploadedFileRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.UploadedFileRecord, len(c.uploads))
	copy(out, c.uploads)
	return out
}

// Messages returns the ordered conversation log.
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.Messages()
}

// MessageCount returns the number of messages in the log.
func (c *Controller) MessageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.Len()
}

// Clear discards the conversation and its persisted snapshot. When remote is
// true the server transcript is cleared too, best-effort.
func (c *Controller) Clear(ctx context.Context, remote bool) {
	c.mu.Lock()
	c.conv.Clear()
	c.mu.Unlock()

	if remote {
		if cleared, err := c.api.ClearHistory(ctx); err != nil {
			c.logger.Warn("failed to clear server transcript", "error", err)
			c.notifier().Notify("Local chat cleared; server transcript could not be cleared.",
				SeverityWarning, notifyDuration)
		} else {
			c.logger.Info("server transcript cleared", "messages", cleared)
		}
	}
	c.notifier().Notify("Chat history cleared.", SeveritySuccess, notifyDuration)
}

// Settings returns the current settings snapshot.
func (c *Controller) Settings() models.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SaveSettings replaces and persists the settings.
func (c *Controller) SaveSettings(settings models.Settings) {
	c.mu.Lock()
	c.settings = settings
	c.mu.Unlock()
	c.store.SaveSettings(settings)
}

// ResetSettings restores and persists the defaults.
func (c *Controller) ResetSettings() models.Settings {
	defaults := models.DefaultSettings()
	c.SaveSettings(defaults)
	return defaults
}

// Stats returns a snapshot of this session's operation timings.
func (c *Controller) Stats() metrics.Snapshot {
	return c.stats.Snapshot()
}

// Metrics exposes the collector so collaborators (the upload pipeline) can
// record their own timings into the same snapshot.
func (c *Controller) Metrics() *metrics.Collector {
	return c.stats
}
