package anthropic

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

// Adapter translates canonical conversations to the messages API wire
// shape: a dedicated API-key header plus a fixed protocol-version header,
// with the system message extracted into a top-level field.
type Adapter struct {
	transport *adapter.Transport
	estimator provider.TokenEstimator
}

// Ensure Adapter implements the port at compile time.
var _ ports.AdapterPort = (*Adapter)(nil)

// NewAdapter creates the adapter for the anthropic identity.
func NewAdapter(transport *adapter.Transport, estimator provider.TokenEstimator) *Adapter {
	return &Adapter{
		transport: transport,
		estimator: estimator,
	}
}

// Identity returns the provider family this adapter serves.
func (a *Adapter) Identity() provider.Identity {
	return provider.IdentityAnthropic
}

// BuildRequest constructs the messages request. The first system message
// becomes the top-level system field; the remaining messages are sent
// as-is in order.
func (a *Adapter) BuildRequest(messages []chat.Message, settings session.Settings) (*ports.WireRequest, error) {
	if settings.Credential == "" {
		return nil, errors.NewError(errors.CodeConfiguration,
			"cannot send without an API key", errors.ErrMissingCredential)
	}

	var system string
	wireMessages := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == chat.RoleSystem {
			if system == "" {
				system = msg.Content
			}
			continue
		}
		wireMessages = append(wireMessages, Message{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}

	body, err := json.Marshal(&MessagesRequest{
		Model:     settings.Model,
		MaxTokens: MaxTokens,
		System:    system,
		Messages:  wireMessages,
	})
	if err != nil {
		return nil, errors.NewError(errors.CodeProvider, "failed to marshal request", err)
	}

	return &ports.WireRequest{
		URL: strings.TrimSuffix(settings.BaseURL, "/") + "/v1/messages",
		Headers: map[string]string{
			"x-api-key":         settings.Credential,
			"anthropic-version": Version,
		},
		Body: body,
	}, nil
}

// ParseResponse extracts the first content block's text, defaulting to an
// empty string when the block list is absent. This path does not consume
// provider usage, so the token count is always estimated.
func (a *Adapter) ParseResponse(body []byte) *ports.Reply {
	var resp MessagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return &ports.Reply{Content: "", OutputTokens: 0}
	}

	content := ""
	if len(resp.Content) > 0 {
		content = resp.Content[0].Text
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
