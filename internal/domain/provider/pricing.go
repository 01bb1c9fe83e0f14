package provider

import "sync"

// Rate holds the cost rates for a specific model.
// Rates are USD per 1000 tokens.
type Rate struct {
	ModelID    string   // unique identifier for the model
	Identity   Identity // provider family the model belongs to
	InputRate  float64  // cost per 1000 input tokens
	OutputRate float64  // cost per 1000 output tokens
}

// DefaultRate is the designated fallback entry used for model identifiers
// that are not present in the table. Unknown models are billed at a
// mid-range rate rather than silently reported as free.
func DefaultRate() Rate {
	return Rate{
		ModelID:    "default",
		InputRate:  0.0025,
		OutputRate: 0.01,
	}
}

// PricingTable maps model identifiers to their cost rates.
// Lookup never fails: unknown identifiers resolve to the default entry.
type PricingTable struct {
	mu       sync.RWMutex
	rates    map[string]Rate
	fallback Rate
}

// NewPricingTable creates an empty table with the designated default entry.
func NewPricingTable() *PricingTable {
	return &PricingTable{
		rates:    make(map[string]Rate),
		fallback: DefaultRate(),
	}
}

// NewDefaultPricingTable creates a table pre-populated with the
// well-known model rates from DefaultModelPricing.
func NewDefaultPricingTable() *PricingTable {
	table := NewPricingTable()
	for _, rate := range DefaultModelPricing() {
		table.Register(rate)
	}
	return table
}

// Register adds a model rate to the table.
// If the model already exists, its rates are updated.
func (t *PricingTable) Register(rate Rate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rates[rate.ModelID] = rate
}

// Lookup returns the rate for the given model identifier, falling back to
// the default entry for unknown identifiers.
func (t *PricingTable) Lookup(modelID string) Rate {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if rate, ok := t.rates[modelID]; ok {
		return rate
	}
	return t.fallback
}

// Has reports whether the model identifier is registered in the table.
func (t *PricingTable) Has(modelID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rates[modelID]
	return ok
}

// ModelsByIdentity returns all model identifiers registered for a provider family.
func (t *PricingTable) ModelsByIdentity(id Identity) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var models []string
	for modelID, rate := range t.rates {
		if rate.Identity == id {
			models = append(models, modelID)
		}
	}
	return models
}

// Count returns the number of registered models.
func (t *PricingTable) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rates)
}

// DefaultModelPricing returns the rates for well-known models.
// Prices are per 1000 tokens in USD. To convert from provider pricing
// (typically per million tokens):
//
//	rate_per_1k = price_per_million / 1000
//
// Example: Claude Sonnet at $3/MTok input = 0.003 per 1K tokens.
// Sources:
//   - OpenAI: https://openai.com/api/pricing/
//   - Google: https://ai.google.dev/pricing
//   - Anthropic: https://docs.anthropic.com/en/docs/about-claude/models
func DefaultModelPricing() []Rate {
	return []Rate{
		// ============================================
		// OpenAI GPT models
		// ============================================

		// GPT-4o: $2.50/MTok input, $10/MTok output
		{ModelID: "gpt-4o", Identity: IdentityOpenAI, InputRate: 0.0025, OutputRate: 0.01},
		{ModelID: "gpt-4o-2024-11-20", Identity: IdentityOpenAI, InputRate: 0.0025, OutputRate: 0.01},
		// GPT-4o mini: $0.15/MTok input, $0.60/MTok output
		{ModelID: "gpt-4o-mini", Identity: IdentityOpenAI, InputRate: 0.00015, OutputRate: 0.0006},
		// GPT-4 Turbo: $10/MTok input, $30/MTok output
		{ModelID: "gpt-4-turbo", Identity: IdentityOpenAI, InputRate: 0.01, OutputRate: 0.03},
		// GPT-4: $30/MTok input, $60/MTok output
		{ModelID: "gpt-4", Identity: IdentityOpenAI, InputRate: 0.03, OutputRate: 0.06},
		// GPT-3.5 Turbo: $0.50/MTok input, $1.50/MTok output
		{ModelID: "gpt-3.5-turbo", Identity: IdentityOpenAI, InputRate: 0.0005, OutputRate: 0.0015},
		// o1: $15/MTok input, $60/MTok output
		{ModelID: "o1", Identity: IdentityOpenAI, InputRate: 0.015, OutputRate: 0.06},
		// o1-mini: $3/MTok input, $12/MTok output
		{ModelID: "o1-mini", Identity: IdentityOpenAI, InputRate: 0.003, OutputRate: 0.012},

		// ============================================
		// Google Gemini models
		// ============================================

		// Gemini 2.0 Flash: $0.10/MTok input, $0.40/MTok output
		{ModelID: "gemini-2.0-flash", Identity: IdentityGemini, InputRate: 0.0001, OutputRate: 0.0004},
		{ModelID: "gemini-2.0-flash-lite", Identity: IdentityGemini, InputRate: 0.000075, OutputRate: 0.0003},
		// Gemini 1.5 Pro: $1.25/MTok input, $5/MTok output
		{ModelID: "gemini-1.5-pro", Identity: IdentityGemini, InputRate: 0.00125, OutputRate: 0.005},
		// Gemini 1.5 Flash: $0.075/MTok input, $0.30/MTok output
		{ModelID: "gemini-1.5-flash", Identity: IdentityGemini, InputRate: 0.000075, OutputRate: 0.0003},

		// ============================================
		// Anthropic Claude models
		// ============================================

		// Sonnet 3.5: $3/MTok input, $15/MTok output
		{ModelID: "claude-3-5-sonnet-20241022", Identity: IdentityAnthropic, InputRate: 0.003, OutputRate: 0.015},
		{ModelID: "claude-3-5-sonnet-latest", Identity: IdentityAnthropic, InputRate: 0.003, OutputRate: 0.015},
		// Haiku 3.5: $0.80/MTok input, $4/MTok output
		{ModelID: "claude-3-5-haiku-20241022", Identity: IdentityAnthropic, InputRate: 0.0008, OutputRate: 0.004},
		{ModelID: "claude-3-5-haiku-latest", Identity: IdentityAnthropic, InputRate: 0.0008, OutputRate: 0.004},
		// Opus 3: $15/MTok input, $75/MTok output
		{ModelID: "claude-3-opus-20240229", Identity: IdentityAnthropic, InputRate: 0.015, OutputRate: 0.075},
		// Haiku 3: $0.25/MTok input, $1.25/MTok output
		{ModelID: "claude-3-haiku-20240307", Identity: IdentityAnthropic, InputRate: 0.00025, OutputRate: 0.00125},
	}
}
