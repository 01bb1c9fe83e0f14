package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Conversation is the append-only aggregate of chat entries.
// Insertion order is significant and preserved.
type Conversation struct {
	ID        string
	Entries   []Entry
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewConversation creates a new empty conversation.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.New().String(),
		Entries:   make([]Entry, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds an entry to the conversation.
func (c *Conversation) Append(entry Entry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid entry: %w", err)
	}

	c.Entries = append(c.Entries, entry)
	c.UpdatedAt = time.Now()
	return nil
}

// GetEntries returns all entries in insertion order.
func (c *Conversation) GetEntries() []Entry {
	// Return a copy to prevent external modifications
	entries := make([]Entry, len(c.Entries))
	copy(entries, c.Entries)
	return entries
}

// GetLastEntry returns the last entry, or nil if the conversation is empty.
func (c *Conversation) GetLastEntry() *Entry {
	if len(c.Entries) == 0 {
		return nil
	}
	entry := c.Entries[len(c.Entries)-1]
	return &entry
}

// Messages returns the canonical message list for the conversation,
// in insertion order.
func (c *Conversation) Messages() []Message {
	messages := make([]Message, len(c.Entries))
	for i, entry := range c.Entries {
		messages[i] = entry.Message
	}
	return messages
}

// EntryCount returns the number of entries in the conversation.
func (c *Conversation) EntryCount() int {
	return len(c.Entries)
}

// TokensByRole sums entry token counts for the given role.
func (c *Conversation) TokensByRole(role MessageRole) int {
	total := 0
	for _, entry := range c.Entries {
		if entry.Role == role {
			total += entry.Tokens
		}
	}
	return total
}

// Clear removes all entries from the conversation.
func (c *Conversation) Clear() {
	c.Entries = make([]Entry, 0)
	c.UpdatedAt = time.Now()
}
