// Package store persists session state as JSON snapshots in a local state
// directory. Loads tolerate missing and corrupt files, saves are best-effort:
// failures are logged and swallowed so persistence problems never block the
// interactive session.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/GAYIVORE/studybuddy-cli/internal/models"
)

// Fixed namespaces for the two durable snapshots.
const (
	settingsFile     = "settings.json"
	conversationFile = "chat_history.json"
)

// Store is a file-backed key/value layer for settings and chat history.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a store rooted at dir, creating the directory if needed.
// If logger is nil, slog.Default() is used.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// DefaultDir returns the default state directory (~/.studybuddy).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".studybuddy"), nil
}

// conversationSnapshot is the on-disk shape of the chat history.
type conversationSnapshot struct {
	SavedAt  time.Time        `json:"savedAt"`
	Messages []models.Message `json:"messages"`
}

// LoadSettings reads the persisted settings. The second return value reports
// whether a usable snapshot was found; a missing or corrupt file is treated
// as "no prior settings", never as a failure.
func (s *Store) LoadSettings() (models.Settings, bool) {
	var settings models.Settings
	if !s.read(settingsFile, &settings) {
		return models.Settings{}, false
	}
	return settings, true
}

// SaveSettings writes the settings snapshot. Errors are logged and swallowed.
func (s *Store) SaveSettings(settings models.Settings) {
	s.write(settingsFile, settings)
}

// LoadConversation reads the persisted chat history. A missing or corrupt
// snapshot yields an empty sequence.
func (s *Store) LoadConversation() []models.Message {
	var snap conversationSnapshot
	if !s.read(conversationFile, &snap) {
		return nil
	}
	return snap.Messages
}

// SaveConversation writes the full message sequence as one snapshot.
// Errors are logged and swallowed.
func (s *Store) SaveConversation(messages []models.Message) {
	s.write(conversationFile, conversationSnapshot{
		SavedAt:  time.Now(),
		Messages: messages,
	})
}

// ClearConversation removes the chat history snapshot.
func (s *Store) ClearConversation() {
	path := filepath.Join(s.dir, conversationFile)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to clear conversation snapshot", "path", path, "error", err)
	}
}

// read unmarshals a snapshot file into v. Returns false when the file is
// absent or its JSON is malformed; the latter is logged as a warning.
func (s *Store) read(name string, v any) bool {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read snapshot", "path", path, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("discarding corrupt snapshot", "path", path, "error", err)
		return false
	}
	return true
}

// write marshals v and atomically replaces the snapshot file. Quota and
// write failures are logged; the caller proceeds as if the save succeeded.
func (s *Store) write(name string, v any) {
	path := filepath.Join(s.dir, name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.logger.Warn("failed to encode snapshot", "path", path, "error", err)
		return
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		s.logger.Warn("failed to write snapshot", "path", path, "error", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.logger.Warn("failed to replace snapshot", "path", path, "error", err)
		_ = os.Remove(tmp)
	}
}
