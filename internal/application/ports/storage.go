package ports

import (
	"github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/domain/prompt"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/domain/session"
)

// PromptStore persists prompt records.
// Get and the other id-based operations return (nil, nil) or a nil error
// with no effect when the id is unknown; mapping absence to a domain
// not-found error is the application service's job.
type PromptStore interface {
	Save(p *prompt.Prompt) error
	Get(id string) (*prompt.Prompt, error)
	List() ([]*prompt.Prompt, error)
	Delete(id string) (bool, error)
}

// SettingsStore persists per-identity session settings so that switching
// back to a provider restores the values that were active before.
type SettingsStore interface {
	Save(settings session.Settings) error
	Get(id provider.Identity) (*session.Settings, error)
}

// ConversationStore persists finished conversations and their entries in
// insertion order.
type ConversationStore interface {
	SaveConversation(conv *chat.Conversation, title string) error
	LoadConversation(id string) (*chat.Conversation, error)
	ListConversations() ([]ConversationSummary, error)
}

// ConversationSummary is the listing row for a stored conversation.
type ConversationSummary struct {
	ID         string
	Title      string
	EntryCount int
}
