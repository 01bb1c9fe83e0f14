// Package gemini provides an adapter for Google-style generative language APIs.
package gemini

// Role tokens used by the generative language API. The canonical
// assistant role maps to "model" on this wire.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ModelNamespace prefixes bare model identifiers in the endpoint path.
const ModelNamespace = "models/"

// PlaceholderGreeting is substituted as a single user turn when filtering
// leaves the contents list empty; the API rejects empty requests.
const PlaceholderGreeting = "Hello"

// Part is a single piece of content within a turn.
type Part struct {
	Text string `json:"text"`
}

// Content is one conversation turn: a role plus its parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerateContentRequest is the request body for the generateContent endpoint.
type GenerateContentRequest struct {
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
	Contents          []Content `json:"contents"`
}

// Candidate is a single generated reply.
type Candidate struct {
	Content *Content `json:"content"`
}

// GenerateContentResponse is the response body from the generateContent endpoint.
// Usage is not reported on this path; token counts are always estimated.
type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}
