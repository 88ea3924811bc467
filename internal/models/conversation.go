package models

import "time"

// WelcomeMessage is the fixed greeting a fresh session is seeded with. It is
// presentation-only: Restore filters it out of persisted snapshots so a
// reloaded session does not greet the user twice.
const WelcomeMessage = "👋 Hi! I'm your AI StudyBuddy. Ask me anything, or upload your course material and I'll use it to help you study."

// Saver is the durability sink the conversation writes through. Every append
// is immediately followed by a save of the full sequence; there is no
// write-behind batching.
type Saver interface {
	SaveConversation(messages []Message)
	ClearConversation()
}

// Conversation is the ordered, append-only message log for one session.
// It is not safe for concurrent use; the session controller serializes
// access to it.
type Conversation struct {
	messages []Message
	nextID   int64
	saver    Saver
}

// NewConversation creates an empty conversation writing through saver.
// A nil saver disables persistence (used by tests).
func NewConversation(saver Saver) *Conversation {
	return &Conversation{nextID: 1, saver: saver}
}

// Append creates a message with a fresh id and the current timestamp, adds it
// to the log, persists the full sequence, and returns the created message.
func (c *Conversation) Append(content string, sender Sender, meta Metadata) Message {
	msg := Message{
		ID:        c.nextID,
		Content:   content,
		Sender:    sender,
		Timestamp: time.Now(),
		Metadata:  meta,
	}
	c.nextID++
	c.messages = append(c.messages, msg)
	if c.saver != nil {
		c.saver.SaveConversation(c.messages)
	}
	return msg
}

// Clear empties the log and removes the persisted snapshot.
func (c *Conversation) Clear() {
	c.messages = nil
	c.nextID = 1
	if c.saver != nil {
		c.saver.ClearConversation()
	}
}

// Restore replaces the log with a previously persisted sequence, dropping
// welcome placeholders, and re-seats the id counter above the restored
// maximum so future appends stay unique and monotonic.
func (c *Conversation) Restore(messages []Message) {
	c.messages = nil
	c.nextID = 1
	for _, msg := range messages {
		if msg.Content == WelcomeMessage {
			continue
		}
		c.messages = append(c.messages, msg)
		if msg.ID >= c.nextID {
			c.nextID = msg.ID + 1
		}
	}
}

// Messages returns a copy of the ordered message sequence.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the log.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last returns the most recent message, or false if the log is empty.
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}
