package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/chat"
	domainErrors "github.com/jbctechsolutions/parley/internal/domain/errors"
)

// Compile-time check that ConversationRepository implements ConversationStore.
var _ ports.ConversationStore = (*ConversationRepository)(nil)

// ConversationRepository implements ConversationStore using SQLite.
// Entries are append-only; insertion order is preserved by the
// autoincrement primary key.
type ConversationRepository struct {
	db *sql.DB
}

// NewConversationRepository creates a new conversation repository.
func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// SaveConversation persists a conversation and all of its entries.
// Saving an existing id replaces its entries wholesale.
func (r *ConversationRepository) SaveConversation(conv *chat.Conversation, title string) error {
	if conv.ID == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "conversation ID is required", nil)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO conversations (id, title, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title
	`, conv.ID, title, conv.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM conversation_entries WHERE conversation_id = ?`, conv.ID); err != nil {
		return fmt.Errorf("failed to clear previous entries: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO conversation_entries (conversation_id, role, content, tokens, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range conv.GetEntries() {
		_, err := stmt.Exec(conv.ID, string(entry.Role), entry.Content, entry.Tokens,
			entry.Timestamp.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit conversation: %w", err)
	}

	return nil
}

// LoadConversation retrieves a conversation and its entries in insertion order.
func (r *ConversationRepository) LoadConversation(id string) (*chat.Conversation, error) {
	var (
		conv      chat.Conversation
		createdAt string
	)
	err := r.db.QueryRow(`SELECT id, created_at FROM conversations WHERE id = ?`, id).
		Scan(&conv.ID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, domainErrors.NewError(domainErrors.CodeNotFound,
			fmt.Sprintf("conversation %q not found", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	conv.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT role, content, tokens, created_at
		FROM conversation_entries
		WHERE conversation_id = ?
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			role      string
			content   string
			tokens    int
			entryTime string
		)
		if err := rows.Scan(&role, &content, &tokens, &entryTime); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		timestamp, err := time.Parse(time.RFC3339Nano, entryTime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse entry time: %w", err)
		}

		conv.Entries = append(conv.Entries, chat.Entry{
			Message:   chat.Message{Role: chat.MessageRole(role), Content: content},
			Timestamp: timestamp,
			Tokens:    tokens,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	conv.UpdatedAt = conv.CreatedAt
	if last := conv.GetLastEntry(); last != nil {
		conv.UpdatedAt = last.Timestamp
	}

	return &conv, nil
}

// ListConversations returns a summary row for every stored conversation,
// most recent first.
func (r *ConversationRepository) ListConversations() ([]ports.ConversationSummary, error) {
	rows, err := r.db.Query(`
		SELECT c.id, c.title, COUNT(e.id)
		FROM conversations c
		LEFT JOIN conversation_entries e ON e.conversation_id = c.id
		GROUP BY c.id, c.title
		ORDER BY c.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var summaries []ports.ConversationSummary
	for rows.Next() {
		var s ports.ConversationSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.EntryCount); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}

	return summaries, nil
}
