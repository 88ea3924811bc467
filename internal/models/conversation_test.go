package models

import (
	"testing"
)

// recordingSaver counts write-through calls.
type recordingSaver struct {
	saves  int
	clears int
	last   []Message
}

func (s *recordingSaver) SaveConversation(messages []Message) {
	s.saves++
	s.last = messages
}

func (s *recordingSaver) ClearConversation() {
	s.clears++
}

func TestAppendOrderAndIDs(t *testing.T) {
	c := NewConversation(nil)

	first := c.Append("one", SenderUser, Metadata{})
	second := c.Append("two", SenderAssistant, Metadata{Mode: ModeStudy})
	third := c.Append("three", SenderUser, Metadata{})

	if first.ID != 1 || second.ID != 2 || third.ID != 3 {
		t.Errorf("ids not monotonic from 1: got %d, %d, %d", first.ID, second.ID, third.ID)
	}

	msgs := c.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Len = %d, want 3", len(msgs))
	}
	for i, want := range []string{"one", "two", "three"} {
		if msgs[i].Content != want {
			t.Errorf("messages[%d] = %q, want %q", i, msgs[i].Content, want)
		}
	}
}

func TestAppendPersistsEachTime(t *testing.T) {
	saver := &recordingSaver{}
	c := NewConversation(saver)

	c.Append("a", SenderUser, Metadata{})
	c.Append("b", SenderAssistant, Metadata{})

	if saver.saves != 2 {
		t.Errorf("saves = %d, want 2", saver.saves)
	}
	if len(saver.last) != 2 {
		t.Errorf("last snapshot has %d messages, want 2", len(saver.last))
	}
}

func TestClear(t *testing.T) {
	saver := &recordingSaver{}
	c := NewConversation(saver)

	c.Append("a", SenderUser, Metadata{})
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
	if saver.clears != 1 {
		t.Errorf("clears = %d, want 1", saver.clears)
	}

	// Ids restart after a clear.
	msg := c.Append("b", SenderUser, Metadata{})
	if msg.ID != 1 {
		t.Errorf("id after Clear = %d, want 1", msg.ID)
	}
}

func TestRestoreFiltersWelcome(t *testing.T) {
	c := NewConversation(nil)
	c.Restore([]Message{
		{ID: 1, Content: WelcomeMessage, Sender: SenderAssistant},
		{ID: 2, Content: "real question", Sender: SenderUser},
		{ID: 3, Content: "real answer", Sender: SenderAssistant},
	})

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (welcome filtered)", c.Len())
	}
	if msg, _ := c.Last(); msg.Content != "real answer" {
		t.Errorf("Last = %q, want %q", msg.Content, "real answer")
	}
}

func TestRestoreReseatsIDCounter(t *testing.T) {
	c := NewConversation(nil)
	c.Restore([]Message{
		{ID: 5, Content: "q", Sender: SenderUser},
		{ID: 7, Content: "a", Sender: SenderAssistant},
	})

	msg := c.Append("next", SenderUser, Metadata{})
	if msg.ID != 8 {
		t.Errorf("id after restore = %d, want 8", msg.ID)
	}
}

func TestLastOnEmpty(t *testing.T) {
	c := NewConversation(nil)
	if _, ok := c.Last(); ok {
		t.Error("Last on empty conversation should report false")
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	c := NewConversation(nil)
	c.Append("a", SenderUser, Metadata{})

	msgs := c.Messages()
	msgs[0].Content = "mutated"

	if got, _ := c.Last(); got.Content != "a" {
		t.Errorf("internal log mutated through Messages copy: %q", got.Content)
	}
}

func TestValidMode(t *testing.T) {
	for _, mode := range []Mode{ModeGeneral, ModeStudy, ModeResearch} {
		if !ValidMode(mode) {
			t.Errorf("ValidMode(%q) = false, want true", mode)
		}
	}
	if ValidMode("expert") {
		t.Error(`ValidMode("expert") = true, want false`)
	}
}
