// Package anthropic provides an adapter for Anthropic-style messages APIs.
package anthropic

// Version is the fixed protocol version header value.
const Version = "2023-06-01"

// MaxTokens is the required generation cap sent with every request.
const MaxTokens = 1024

// Message represents a single message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessagesRequest is the request body for the messages endpoint.
// The system message travels in the top-level System field, not in the
// message list.
type MessagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// ContentBlock is one block of reply content.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MessagesResponse is the response body from the messages endpoint.
// Usage is not consumed on this path; token counts are always estimated.
type MessagesResponse struct {
	ID      string         `json:"id"`
	Role    string         `json:"role"`
	Model   string         `json:"model"`
	Content []ContentBlock `json:"content"`
}
