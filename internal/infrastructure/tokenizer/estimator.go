// Package tokenizer provides heuristic token count estimation.
// It implements the domain TokenEstimator interface without a real
// tokenizer: counts are approximated from character and word density,
// which is accurate enough for usage accounting when a provider does not
// report authoritative numbers.
package tokenizer

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jbctechsolutions/parley/internal/domain/provider"
)

// Typical LLM tokenizers produce roughly one token per four characters of
// English text, and roughly four tokens per three words.
const (
	charsPerToken = 4.0
	tokensPerWord = 4.0 / 3.0
)

// Estimator estimates token counts from character and word density.
type Estimator struct{}

// Ensure Estimator implements provider.TokenEstimator.
var _ provider.TokenEstimator = (*Estimator)(nil)

// NewEstimator creates a new heuristic token estimator.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate returns the estimated token count for the given text.
// Empty text yields zero; any non-empty text yields at least one token.
// The estimate is deterministic and monotonic in character length.
func (e *Estimator) Estimate(text string) int {
	if text == "" {
		return 0
	}

	chars := float64(utf8.RuneCountInString(text))
	words := float64(len(strings.Fields(text)))

	estimate := math.Max(chars/charsPerToken, words*tokensPerWord)
	tokens := int(math.Round(estimate))
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// EstimateAll estimates the total token count for multiple text strings.
func (e *Estimator) EstimateAll(texts ...string) int {
	total := 0
	for _, text := range texts {
		total += e.Estimate(text)
	}
	return total
}
