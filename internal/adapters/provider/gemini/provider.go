package gemini

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	adapter "github.com/jbctechsolutions/parley/internal/adapters/provider"
	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/domain/session"
)

// Adapter translates canonical conversations to the generative language
// wire shape. Authentication travels as a URL query parameter, not a
// header, and the system message becomes a separate system instruction.
type Adapter struct {
	transport *adapter.Transport
	estimator provider.TokenEstimator
}

// Ensure Adapter implements the port at compile time.
var _ ports.AdapterPort = (*Adapter)(nil)

// NewAdapter creates the adapter for the gemini identity.
func NewAdapter(transport *adapter.Transport, estimator provider.TokenEstimator) *Adapter {
	return &Adapter{
		transport: transport,
		estimator: estimator,
	}
}

// Identity returns the provider family this adapter serves.
func (a *Adapter) Identity() provider.Identity {
	return provider.IdentityGemini
}

// BuildRequest constructs the generateContent request. The model
// identifier is prefixed with the models/ namespace unless it already
// contains a path separator; the credential is carried in the key query
// parameter.
func (a *Adapter) BuildRequest(messages []chat.Message, settings session.Settings) (*ports.WireRequest, error) {
	if settings.Credential == "" {
		return nil, errors.NewError(errors.CodeConfiguration,
			"cannot send without an API key", errors.ErrMissingCredential)
	}

	var systemInstruction *Content
	contents := make([]Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleSystem:
			if systemInstruction == nil {
				systemInstruction = &Content{Parts: []Part{{Text: msg.Content}}}
			}
		case chat.RoleAssistant:
			contents = append(contents, Content{Role: RoleModel, Parts: []Part{{Text: msg.Content}}})
		default:
			contents = append(contents, Content{Role: RoleUser, Parts: []Part{{Text: msg.Content}}})
		}
	}

	// The API rejects an empty contents list, so substitute a single
	// greeting turn when filtering removed everything.
	if len(contents) == 0 {
		contents = append(contents, Content{Role: RoleUser, Parts: []Part{{Text: PlaceholderGreeting}}})
	}

	body, err := json.Marshal(&GenerateContentRequest{
		SystemInstruction: systemInstruction,
		Contents:          contents,
	})
	if err != nil {
		return nil, errors.NewError(errors.CodeProvider, "failed to marshal request", err)
	}

	modelPath := settings.Model
	if !strings.Contains(modelPath, "/") {
		modelPath = ModelNamespace + modelPath
	}

	endpoint := strings.TrimSuffix(settings.BaseURL, "/") + "/" + modelPath +
		":generateContent?key=" + url.QueryEscape(settings.Credential)

	return &ports.WireRequest{
		URL:     endpoint,
		Headers: map[string]string{},
		Body:    body,
	}, nil
}

// ParseResponse extracts the first candidate's first part text, defaulting
// to an empty string when the structure is absent at any level. This path
// never reports usage, so the token count is always estimated.
func (a *Adapter) ParseResponse(body []byte) *ports.Reply {
	var resp GenerateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return &ports.Reply{Content: "", OutputTokens: 0}
	}

	content := ""
	if len(resp.Candidates) > 0 {
		candidate := resp.Candidates[0]
		if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
			content = candidate.Content.Parts[0].Text
		}
	}

	return &ports.Reply{
		Content:      content,
		OutputTokens: a.estimator.Estimate(content),
	}
}

// Send performs one full exchange with the provider.
func (a *Adapter) Send(ctx context.Context, messages []chat.Message, settings session.Settings) (*ports.Reply, error) {
	req, err := a.BuildRequest(messages, settings)
	if err != nil {
		return nil, err
	}

	body, err := a.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	return a.ParseResponse(body), nil
}
