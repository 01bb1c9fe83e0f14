// Package ports defines the interfaces between the application layer and
// its adapters.
package ports

import (
	"context"

	"github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/domain/session"
)

// WireRequest is a fully constructed provider HTTP request: endpoint URL,
// header set, and JSON body. Field and header names inside Body are
// bit-exact contracts with the provider's real API.
type WireRequest struct {
	URL     string
	Headers map[string]string
	Body    []byte
}

// Reply is the canonical result parsed from a provider response.
// OutputTokens is the provider-reported completion count when the variant
// reports one, otherwise an estimate.
type Reply struct {
	Content      string
	OutputTokens int
}

// AdapterPort translates canonical conversations to one provider's wire
// shape and back. Implementations must not mutate the message slice they
// are given, and must fail with a configuration error before any network
// interaction when the credential is empty.
type AdapterPort interface {
	// Identity returns the provider family this adapter serves.
	Identity() provider.Identity

	// BuildRequest translates the canonical message list into this
	// provider's wire request using the given session settings.
	BuildRequest(messages []chat.Message, settings session.Settings) (*WireRequest, error)

	// ParseResponse extracts the canonical reply from a successful raw
	// response body. Malformed or missing fields degrade to empty content
	// rather than failing.
	ParseResponse(body []byte) *Reply

	// Send performs one full exchange: build, POST, parse. A non-2xx
	// status surfaces as a provider error carrying the status code and
	// raw payload.
	Send(ctx context.Context, messages []chat.Message, settings session.Settings) (*Reply, error)
}
