package provider

// UsageTotals accumulates token usage across a conversation.
// Counts only grow; they reset to zero when the conversation is cleared.
type UsageTotals struct {
	InputTokens  int
	OutputTokens int
}

// AddInput folds input (user-side) tokens into the totals.
// Negative counts are ignored.
func (u *UsageTotals) AddInput(tokens int) {
	if tokens > 0 {
		u.InputTokens += tokens
	}
}

// AddOutput folds output (assistant-side) tokens into the totals.
// Negative counts are ignored.
func (u *UsageTotals) AddOutput(tokens int) {
	if tokens > 0 {
		u.OutputTokens += tokens
	}
}

// TotalTokens returns the combined input and output token count.
func (u UsageTotals) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// Reset zeroes both counters.
func (u *UsageTotals) Reset() {
	u.InputTokens = 0
	u.OutputTokens = 0
}
