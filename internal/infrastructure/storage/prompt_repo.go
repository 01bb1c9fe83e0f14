package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/prompt"
)

// Compile-time check that PromptRepository implements PromptStore.
var _ ports.PromptStore = (*PromptRepository)(nil)

// PromptRepository implements PromptStore using SQLite.
type PromptRepository struct {
	db *sql.DB
}

// NewPromptRepository creates a new prompt repository.
func NewPromptRepository(db *sql.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

// Save inserts or replaces a prompt record.
func (r *PromptRepository) Save(p *prompt.Prompt) error {
	query := `
		INSERT INTO prompts (id, name, content, tokens, is_template, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			content = excluded.content,
			tokens = excluded.tokens,
			is_template = excluded.is_template,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		p.ID,
		p.Name,
		p.Content,
		p.Tokens,
		boolToInt(p.IsTemplate),
		p.CreatedAt.Format(time.RFC3339Nano),
		p.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save prompt: %w", err)
	}

	return nil
}

// Get retrieves a prompt by id. An unknown id yields (nil, nil).
func (r *PromptRepository) Get(id string) (*prompt.Prompt, error) {
	query := `
		SELECT id, name, content, tokens, is_template, created_at, updated_at
		FROM prompts
		WHERE id = ?
	`

	p, err := scanPrompt(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prompt: %w", err)
	}

	return p, nil
}

// List returns every stored prompt ordered by creation time.
func (r *PromptRepository) List() ([]*prompt.Prompt, error) {
	query := `
		SELECT id, name, content, tokens, is_template, created_at, updated_at
		FROM prompts
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	defer rows.Close()

	var prompts []*prompt.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prompts: %w", err)
	}

	return prompts, nil
}

// Delete removes a prompt by id, reporting whether a row was deleted.
func (r *PromptRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM prompts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete prompt: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}

	return rows > 0, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

// scanPrompt scans one row into a prompt record.
func scanPrompt(row scanner) (*prompt.Prompt, error) {
	var (
		p          prompt.Prompt
		isTemplate int
		createdAt  string
		updatedAt  string
	)

	err := row.Scan(&p.ID, &p.Name, &p.Content, &p.Tokens, &isTemplate, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.IsTemplate = isTemplate != 0

	p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &p, nil
}

// boolToInt maps a bool onto SQLite's integer affinity.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
