// Package prompt implements the prompt library use cases: creating,
// editing, rendering, and deleting stored prompts and templates.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
	"github.com/jbctechsolutions/parley/internal/domain/prompt"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
)

// Service coordinates prompt persistence with the domain rules around the
// System Prompt and template rendering. Token counts on stored prompts are
// derived from the estimator and recomputed on every content change.
type Service struct {
	store     ports.PromptStore
	estimator provider.TokenEstimator
	now       func() time.Time
}

// NewService creates a prompt service over the given store and estimator.
func NewService(store ports.PromptStore, estimator provider.TokenEstimator) *Service {
	return &Service{
		store:     store,
		estimator: estimator,
		now:       time.Now,
	}
}

// EnsureSystemPrompt seeds the distinguished System Prompt record when it
// does not exist yet. An existing record, edited or not, is left alone.
func (s *Service) EnsureSystemPrompt() error {
	existing, err := s.store.Get(prompt.SystemPromptID)
	if err != nil {
		return fmt.Errorf("checking system prompt: %w", err)
	}
	if existing != nil {
		return nil
	}

	now := s.now()
	seeded := &prompt.Prompt{
		ID:        prompt.SystemPromptID,
		Name:      "System Prompt",
		Content:   prompt.DefaultSystemPromptContent,
		Tokens:    s.estimator.Estimate(prompt.DefaultSystemPromptContent),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(seeded); err != nil {
		return fmt.Errorf("seeding system prompt: %w", err)
	}
	return nil
}

// Create stores a new prompt. Name and content are trimmed; either being
// empty after trimming is a validation error. Whether the prompt acts as a
// template is derived solely from the presence of the placeholder token.
func (s *Service) Create(name, content string) (*prompt.Prompt, error) {
	name = strings.TrimSpace(name)
	content = strings.TrimSpace(content)
	if name == "" {
		return nil, errors.NewError(errors.CodeValidation, "prompt name is required", errors.ErrPromptNameRequired)
	}
	if content == "" {
		return nil, errors.NewError(errors.CodeValidation, "prompt content is required", errors.ErrPromptContentRequired)
	}

	now := s.now()
	p := &prompt.Prompt{
		ID:         uuid.New().String(),
		Name:       name,
		Content:    content,
		Tokens:     s.estimator.Estimate(content),
		IsTemplate: strings.Contains(content, prompt.PlaceholderToken),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Save(p); err != nil {
		return nil, fmt.Errorf("saving prompt: %w", err)
	}
	return p, nil
}

// Get returns the prompt with the given id.
func (s *Service) Get(id string) (*prompt.Prompt, error) {
	p, err := s.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("loading prompt: %w", err)
	}
	if p == nil {
		return nil, errors.NewError(errors.CodeNotFound,
			fmt.Sprintf("prompt %q not found", id), errors.ErrPromptNotFound)
	}
	return p, nil
}

// List returns every stored prompt, the System Prompt included.
func (s *Service) List() ([]*prompt.Prompt, error) {
	prompts, err := s.store.List()
	if err != nil {
		return nil, fmt.Errorf("listing prompts: %w", err)
	}
	return prompts, nil
}

// Update replaces the name and content of an existing prompt, recomputing
// the derived token count and template flag. The id and creation time are
// preserved. The System Prompt may be updated like any other prompt.
func (s *Service) Update(id, name, content string) (*prompt.Prompt, error) {
	name = strings.TrimSpace(name)
	content = strings.TrimSpace(content)
	if name == "" {
		return nil, errors.NewError(errors.CodeValidation, "prompt name is required", errors.ErrPromptNameRequired)
	}
	if content == "" {
		return nil, errors.NewError(errors.CodeValidation, "prompt content is required", errors.ErrPromptContentRequired)
	}

	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	existing.Name = name
	existing.Content = content
	existing.Tokens = s.estimator.Estimate(content)
	existing.IsTemplate = strings.Contains(content, prompt.PlaceholderToken)
	existing.UpdatedAt = s.now()

	if err := s.store.Save(existing); err != nil {
		return nil, fmt.Errorf("saving prompt: %w", err)
	}
	return existing, nil
}

// Delete removes a stored prompt. The System Prompt is protected and can
// never be deleted. Deleting an unknown id is a not-found error.
func (s *Service) Delete(id string) error {
	if id == prompt.SystemPromptID {
		return errors.NewError(errors.CodeValidation,
			"the system prompt cannot be deleted", errors.ErrSystemPromptProtected)
	}
	deleted, err := s.store.Delete(id)
	if err != nil {
		return fmt.Errorf("deleting prompt: %w", err)
	}
	if !deleted {
		return errors.NewError(errors.CodeNotFound,
			fmt.Sprintf("prompt %q not found", id), errors.ErrPromptNotFound)
	}
	return nil
}

// Render resolves the prompt with the given id against live user input.
func (s *Service) Render(id, userInput string) (string, error) {
	p, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return p.Render(userInput), nil
}

// SystemPromptContent returns the current System Prompt content, seeding
// the record first when necessary.
func (s *Service) SystemPromptContent() (string, error) {
	if err := s.EnsureSystemPrompt(); err != nil {
		return "", err
	}
	p, err := s.Get(prompt.SystemPromptID)
	if err != nil {
		return "", err
	}
	return p.Content, nil
}
