// Package provider contains domain types for LLM provider and model accounting.
package provider

// Identity selects which external LLM API family a request targets.
// It is a closed set; the adapter registry dispatches on it.
type Identity string

const (
	// IdentityOpenAI targets OpenAI-style chat completion endpoints.
	IdentityOpenAI Identity = "openai"
	// IdentityGemini targets Google-style generative language endpoints.
	IdentityGemini Identity = "gemini"
	// IdentityAnthropic targets Anthropic-style messages endpoints.
	IdentityAnthropic Identity = "anthropic"
	// IdentityCustom targets a user-supplied endpoint using the OpenAI wire shape.
	IdentityCustom Identity = "custom"
)

// Identities returns all provider identities in display order.
func Identities() []Identity {
	return []Identity{IdentityOpenAI, IdentityGemini, IdentityAnthropic, IdentityCustom}
}

// IsValid checks if the identity is a member of the closed set.
func (id Identity) IsValid() bool {
	switch id {
	case IdentityOpenAI, IdentityGemini, IdentityAnthropic, IdentityCustom:
		return true
	default:
		return false
	}
}

// String returns the string representation of the identity.
func (id Identity) String() string {
	return string(id)
}
