package openai

import (
	"context"
	"encoding/json"
	"strings"

	adapter "github.com/jbctechsolutions/parley/internal/adapters/provider"
	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/domain/session"
)

// Adapter translates canonical conversations to the OpenAI chat
// completions wire shape. It also serves the custom identity, which uses
// the same shape against a user-supplied base URL.
type Adapter struct {
	identity  provider.Identity
	transport *adapter.Transport
	estimator provider.TokenEstimator
}

// Ensure Adapter implements the port at compile time.
var _ ports.AdapterPort = (*Adapter)(nil)

// NewAdapter creates the adapter for the openai identity.
func NewAdapter(transport *adapter.Transport, estimator provider.TokenEstimator) *Adapter {
	return &Adapter{
		identity:  provider.IdentityOpenAI,
		transport: transport,
		estimator: estimator,
	}
}

// NewCustomAdapter creates the adapter for the custom identity.
// The wire shape is identical; only the endpoint base differs, and the
// model identifier is passed through opaquely.
func NewCustomAdapter(transport *adapter.Transport, estimator provider.TokenEstimator) *Adapter {
	a := NewAdapter(transport, estimator)
	a.identity = provider.IdentityCustom
	return a
}

// Identity returns the provider family this adapter serves.
func (a *Adapter) Identity() provider.Identity {
	return a.identity
}

// BuildRequest constructs the chat completions request: the full message
// list verbatim, the model identifier, and the fixed sampling temperature,
// authenticated with a bearer header.
func (a *Adapter) BuildRequest(messages []chat.Message, settings session.Settings) (*ports.WireRequest, error) {
	if settings.Credential == "" {
		return nil, errors.NewError(errors.CodeConfiguration,
			"cannot send without an API key", errors.ErrMissingCredential)
	}

	wireMessages := make([]Message, 0, len(messages))
	for _, msg := range messages {
		wireMessages = append(wireMessages, Message{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}

	body, err := json.Marshal(&ChatCompletionRequest{
		Model:       settings.Model,
		Messages:    wireMessages,
		Temperature: Temperature,
	})
	if err != nil {
		return nil, errors.NewError(errors.CodeProvider, "failed to marshal request", err)
	}

	return &ports.WireRequest{
		URL: strings.TrimSuffix(settings.BaseURL, "/") + "/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + settings.Credential,
		},
		Body: body,
	}, nil
}

// ParseResponse extracts the first choice's message content. The
// provider-reported completion token count takes precedence; when absent
// the count is estimated from the parsed content. Missing or malformed
// fields degrade to empty content.
func (a *Adapter) ParseResponse(body []byte) *ports.Reply {
	var resp ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return &ports.Reply{Content: "", OutputTokens: 0}
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	tokens := 0
	if resp.Usage != nil && resp.Usage.CompletionTokens > 0 {
		tokens = resp.Usage.CompletionTokens
	} else {
		tokens = a.estimator.Estimate(content)
	}

	return &ports.Reply{Content: content, OutputTokens: tokens}
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
