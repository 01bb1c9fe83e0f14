package provider

// TokenEstimator provides token count estimation for text content.
// This interface allows different estimation strategies to be used
// without coupling the domain to a specific implementation. Estimates
// are used only when a provider does not report authoritative usage.
type TokenEstimator interface {
	// Estimate returns the estimated token count for the given text.
	Estimate(text string) int
}
