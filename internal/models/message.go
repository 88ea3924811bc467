// Package models contains the data structures for the chat session: messages,
// the conversation log, settings, and knowledge-base upload records.
package models

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAssistant:
		return "StudyBuddy"
	default:
		return string(s)
	}
}

// Mode is a named conversational persona selecting remote-side behavior.
type Mode string

const (
	ModeGeneral  Mode = "general"
	ModeStudy    Mode = "study"
	ModeResearch Mode = "research"
)

// ValidMode reports whether m is one of the supported modes.
func ValidMode(m Mode) bool {
	switch m {
	case ModeGeneral, ModeStudy, ModeResearch:
		return true
	}
	return false
}

// Metadata carries per-message request context.
type Metadata struct {
	Mode    Mode   `json:"mode,omitempty"`
	Model   string `json:"model,omitempty"`
	RagUsed bool   `json:"ragUsed,omitempty"`
}

// Message is a single entry in the conversation log. Messages are immutable
// once created; identity is unique within a session and ids increase with
// insertion order.
type Message struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  Metadata  `json:"metadata,omitempty"`
}
