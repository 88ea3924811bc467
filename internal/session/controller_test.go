package session_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GAYIVORE/studybuddy-cli/internal/client"
	"github.com/GAYIVORE/studybuddy-cli/internal/models"
	"github.com/GAYIVORE/studybuddy-cli/internal/session"
)

// fakeAPI scripts the remote collaborator. It records the conversation
// length observed at the moment Chat is called, so tests can assert the
// user message was appended before the network call.
type fakeAPI struct {
	mu            sync.Mutex
	chatErr       error
	healthErr     error
	reply         string
	chatCalls     int
	lenAtChat     int
	clearCalls    int
	onChatMessage func(req client.ChatRequest)

	ctrl *session.Controller
}

func (f *fakeAPI) Chat(ctx context.Context, req client.ChatRequest) (*client.ChatResponse, error) {
	f.mu.Lock()
	f.chatCalls++
	if f.ctrl != nil {
		f.lenAtChat = f.ctrl.MessageCount()
	}
	if f.onChatMessage != nil {
		f.onChatMessage(req)
	}
	f.mu.Unlock()

	if f.chatErr != nil {
		return nil, f.chatErr
	}
	reply := f.reply
	if reply == "" {
		reply = "a helpful answer"
	}
	return &client.ChatResponse{
		Response: reply,
		Mode:     req.Mode,
		Model:    "gemini-2.5-flash-lite",
		RAGUsed:  req.UseRAG,
	}, nil
}

func (f *fakeAPI) Health(ctx context.Context) (*client.HealthStatus, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &client.HealthStatus{Status: "ok"}, nil
}

func (f *fakeAPI) ClearHistory(ctx context.Context) (int, error) {
	f.mu.Lock()
	f.clearCalls++
	f.mu.Unlock()
	return 3, nil
}

// memoryStore is an in-memory SettingsStore.
type memoryStore struct {
	settings    *models.Settings
	messages    []models.Message
	clearCalled bool
}

func (s *memoryStore) LoadSettings() (models.Settings, bool) {
	if s.settings == nil {
		return models.Settings{}, false
	}
	return *s.settings, true
}

func (s *memoryStore) SaveSettings(settings models.Settings) { s.settings = &settings }
func (s *memoryStore) LoadConversation() []models.Message    { return s.messages }
func (s *memoryStore) SaveConversation(messages []models.Message) {
	s.messages = append([]models.Message(nil), messages...)
}
func (s *memoryStore) ClearConversation() {
	s.messages = nil
	s.clearCalled = true
}

func newController(t *testing.T, api *fakeAPI, st *memoryStore) *session.Controller {
	t.Helper()
	if st == nil {
		st = &memoryStore{}
	}
	c := session.New(api, st, nil, nil)
	api.ctrl = c
	return c
}

func TestSendAppendsUserBeforeRemoteCall(t *testing.T) {
	api := &fakeAPI{}
	c := newController(t, api, nil)

	err := c.Send(context.Background(), "What is a closure?")
	require.NoError(t, err)

	assert.Equal(t, 1, api.lenAtChat, "user message must be in the log when Chat is called")

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.SenderUser, msgs[0].Sender)
	assert.Equal(t, "What is a closure?", msgs[0].Content)
	assert.Equal(t, models.SenderAssistant, msgs[1].Sender)
	assert.Equal(t, "a helpful answer", msgs[1].Content)
	assert.Equal(t, "gemini-2.5-flash-lite", msgs[1].Metadata.Model)
}

func TestSendTrimsWhitespace(t *testing.T) {
	api := &fakeAPI{onChatMessage: func(req client.ChatRequest) {
		assert.Equal(t, "hello", req.Message)
	}}
	c := newController(t, api, nil)

	require.NoError(t, c.Send(context.Background(), "  hello  \n"))
}

func TestSendRejectsEmpty(t *testing.T) {
	api := &fakeAPI{}
	c := newController(t, api, nil)

	err := c.Send(context.Background(), "   \t ")
	assert.ErrorIs(t, err, session.ErrEmptyMessage)
	assert.Zero(t, api.chatCalls, "validation failure must not reach the network")
	assert.Zero(t, c.MessageCount(), "validation failure must not append")
}

func TestSendRejectsTooLong(t *testing.T) {
	api := &fakeAPI{}
	c := newController(t, api, nil)

	err := c.Send(context.Background(), strings.Repeat("x", session.MaxMessageLength+1))
	assert.ErrorIs(t, err, session.ErrMessageTooLong)
	assert.Zero(t, api.chatCalls)
	assert.Zero(t, c.MessageCount())
}

func TestSendAcceptsExactLimit(t *testing.T) {
	api := &fakeAPI{}
	c := newController(t, api, nil)

	err := c.Send(context.Background(), strings.Repeat("x", session.MaxMessageLength))
	require.NoError(t, err)
	assert.Equal(t, 1, api.chatCalls)
}

func TestSendLimitCountsRunesNotBytes(t *testing.T) {
	api := &fakeAPI{}
	c := newController(t, api, nil)

	// Multibyte characters up to the limit are fine even though the byte
	// count is far larger.
	err := c.Send(context.Background(), strings.Repeat("ü", session.MaxMessageLength))
	require.NoError(t, err)
}

func TestSendFailureAppendsFallback(t *testing.T) {
	api := &fakeAPI{chatErr: fmt.Errorf("connection refused")}
	c := newController(t, api, nil)

	err := c.Send(context.Background(), "hello?")
	require.NoError(t, err, "a failed turn still completes")

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, session.FallbackMessage, msgs[1].Content)
	assert.Equal(t, models.SenderAssistant, msgs[1].Sender)

	// The session must be usable again after a failure.
	api.chatErr = nil
	require.NoError(t, c.Send(context.Background(), "retry"))
	assert.Equal(t, 4, c.MessageCount())
}

func TestSendBusyRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{onChatMessage: func(client.ChatRequest) {
		close(started)
		<-release
	}}
	c := newController(t, api, nil)

	done := make(chan error, 1)
	go func() {
		done <- c.Send(context.Background(), "slow question")
	}()

	<-started
	err := c.Send(context.Background(), "impatient question")
	assert.ErrorIs(t, err, session.ErrBusy)

	close(release)
	require.NoError(t, <-done)

	// Exactly one turn went through.
	assert.Equal(t, 1, api.chatCalls)
}

func TestConversationPersistsAcrossControllers(t *testing.T) {
	st := &memoryStore{}
	api := &fakeAPI{}
	c := newController(t, api, st)

	require.NoError(t, c.Send(context.Background(), "remember me"))
	require.Equal(t, 2, c.MessageCount())

	// A new controller over the same store restores the log.
	c2 := session.New(api, st, nil, nil)
	assert.Equal(t, 2, c2.MessageCount())

	// And ids continue above the restored maximum.
	require.NoError(t, c2.Send(context.Background(), "and me"))
	msgs := c2.Messages()
	assert.Greater(t, msgs[2].ID, msgs[1].ID)
}

func TestClear(t *testing.T) {
	st := &memoryStore{}
	api := &fakeAPI{}
	c := newController(t, api, st)

	require.NoError(t, c.Send(context.Background(), "hi"))
	c.Clear(context.Background(), false)

	assert.Zero(t, c.MessageCount())
	assert.True(t, st.clearCalled)
	assert.Zero(t, api.clearCalls, "local clear must not touch the server")
}

func TestClearRemote(t *testing.T) {
	api := &fakeAPI{}
	c := newController(t, api, nil)

	c.Clear(context.Background(), true)
	assert.Equal(t, 1, api.clearCalls)
}

func TestProbe(t *testing.T) {
	api := &fakeAPI{}
	c := newController(t, api, nil)
	assert.Equal(t, session.StatusConnected, c.Probe(context.Background()))

	api.healthErr = fmt.Errorf("no route to host")
	assert.Equal(t, session.StatusDisconnected, c.Probe(context.Background()))
}

func TestModeAndKnowledgeBase(t *testing.T) {
	api := &fakeAPI{onChatMessage: func(req client.ChatRequest) {
		assert.Equal(t, "research", req.Mode)
		assert.True(t, req.UseRAG)
	}}
	c := newController(t, api, nil)

	require.NoError(t, c.SetMode(models.ModeResearch))
	c.SetKnowledgeBase(true)
	require.NoError(t, c.Send(context.Background(), "deep question"))

	assert.Error(t, c.SetMode("expert"), "unknown mode must be rejected")
	assert.Equal(t, models.ModeResearch, c.Mode(), "rejected switch must not change the mode")
}

func TestRecordUploadEnablesKnowledgeBase(t *testing.T) {
	api := &fakeAPI{}
	c := newController(t, api, nil)

	assert.False(t, c.KnowledgeBaseEnabled())
	c.RecordUpload(models.UploadedFileRecord{Name: "notes.pdf", ChunkCount: 4, Timestamp: time.Now()})
	assert.True(t, c.KnowledgeBaseEnabled())
	require.Len(t, c.UploadedFiles(), 1)
}

func TestSettingsLifecycle(t *testing.T) {
	st := &memoryStore{}
	api := &fakeAPI{}
	c := newController(t, api, st)

	assert.Equal(t, models.DefaultSettings(), c.Settings(), "fresh store yields defaults")

	custom := c.Settings()
	custom.Theme = models.ThemeDark
	c.SaveSettings(custom)
	require.NotNil(t, st.settings)
	assert.Equal(t, models.ThemeDark, st.settings.Theme)

	c.ResetSettings()
	assert.Equal(t, models.DefaultSettings(), c.Settings())
}

func TestStatsRecordChatTimings(t *testing.T) {
	api := &fakeAPI{}
	c := newController(t, api, nil)

	require.NoError(t, c.Send(context.Background(), "hi"))
	api.chatErr = fmt.Errorf("boom")
	require.NoError(t, c.Send(context.Background(), "hi again"))

	snap := c.Stats()
	require.NotNil(t, snap.Chat)
	assert.EqualValues(t, 2, snap.Chat.Count)
	assert.EqualValues(t, 1, snap.Chat.Failures)
}
