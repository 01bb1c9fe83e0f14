// Package session defines domain models for per-provider session settings.
package session

import "github.com/jbctechsolutions/parley/internal/domain/provider"

// Documented default model identifiers per provider family.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

// Documented default endpoint bases per provider family.
const (
	DefaultOpenAIBaseURL    = "https://api.openai.com/v1"
	DefaultGeminiBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
)

// Settings holds the live configuration for one provider identity:
// which credential, model, and endpoint base to use when sending.
type Settings struct {
	Identity   provider.Identity
	Credential string
	Model      string
	BaseURL    string
}

// DefaultSettings returns the documented defaults for the given identity.
// Credentials are never defaulted. The custom identity has no documented
// model or base URL; both stay empty until the user supplies them.
func DefaultSettings(id provider.Identity) Settings {
	switch id {
	case provider.IdentityOpenAI:
		return Settings{Identity: id, Model: DefaultOpenAIModel, BaseURL: DefaultOpenAIBaseURL}
	case provider.IdentityGemini:
		return Settings{Identity: id, Model: DefaultGeminiModel, BaseURL: DefaultGeminiBaseURL}
	case provider.IdentityAnthropic:
		return Settings{Identity: id, Model: DefaultAnthropicModel, BaseURL: DefaultAnthropicBaseURL}
	default:
		return Settings{Identity: id}
	}
}

// IsConfigured reports whether the settings carry a credential.
// It is purely derived; there is no stored configured flag.
func (s Settings) IsConfigured() bool {
	return s.Credential != ""
}
