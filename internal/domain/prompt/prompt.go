// Package prompt provides domain entities for reusable prompt bodies.
package prompt

import (
	"strings"
	"time"
)

// SystemPromptID is the fixed identity of the distinguished System Prompt.
// The record is seeded at startup, always present, and edit-only.
const SystemPromptID = "system-prompt"

// PlaceholderToken is the reserved token inside template content that
// stands for live user input at use time.
const PlaceholderToken = "{{USER_INPUT}}"

// EmptyInputStandIn is substituted for the placeholder when the user input
// is empty, so rendered previews remain non-empty.
const EmptyInputStandIn = "[your message]"

// DefaultSystemPromptContent is the content the System Prompt is seeded with.
const DefaultSystemPromptContent = "You are a helpful assistant. Answer clearly and concisely."

// Prompt is a stored reusable prompt body, plain or parameterized.
type Prompt struct {
	ID         string // opaque, generated at creation, stable for the record's lifetime
	Name       string
	Content    string
	Tokens     int // derived, recomputed on every content edit
	IsTemplate bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsSystemPrompt reports whether this is the distinguished System Prompt record.
func (p *Prompt) IsSystemPrompt() bool {
	return p.ID == SystemPromptID
}

// Render resolves the prompt against live user input.
// Non-template prompts return their content unchanged; templates replace
// every placeholder occurrence with userInput, or with EmptyInputStandIn
// when userInput is empty.
func (p *Prompt) Render(userInput string) string {
	if !p.IsTemplate {
		return p.Content
	}

	substitution := userInput
	if substitution == "" {
		substitution = EmptyInputStandIn
	}
	return strings.ReplaceAll(p.Content, PlaceholderToken, substitution)
}

// HasPlaceholder reports whether the content contains the reserved placeholder.
func (p *Prompt) HasPlaceholder() bool {
	return strings.Contains(p.Content, PlaceholderToken)
}
