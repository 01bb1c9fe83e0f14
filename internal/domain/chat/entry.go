package chat

import "time"

// Entry is a single record in a conversation: a canonical message together
// with the time it was recorded and its token count. Entries are never
// mutated after creation; the conversation is an append-only sequence.
type Entry struct {
	Message
	Timestamp time.Time
	Tokens    int
}

// NewEntry creates an entry for the given message with the current timestamp.
func NewEntry(msg Message, tokens int) Entry {
	return Entry{
		Message:   msg,
		Timestamp: time.Now(),
		Tokens:    tokens,
	}
}

// NewUserEntry creates a user entry with the given token count.
func NewUserEntry(content string, tokens int) Entry {
	return NewEntry(NewUserMessage(content), tokens)
}

// NewAssistantEntry creates an assistant entry with the given token count.
func NewAssistantEntry(content string, tokens int) Entry {
	return NewEntry(NewAssistantMessage(content), tokens)
}
