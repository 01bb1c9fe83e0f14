// Package chat implements the conversation accumulator: the send cycle
// that turns user input into provider exchanges and running usage totals.
package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jbctechsolutions/parley/internal/application/ports"
	appprompt "github.com/jbctechsolutions/parley/internal/application/prompt"
	appsession "github.com/jbctechsolutions/parley/internal/application/session"
	"github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/infrastructure/logging"
	"github.com/jbctechsolutions/parley/internal/infrastructure/tracing"
)

// AdapterResolver dispatches a provider identity to its adapter.
type AdapterResolver interface {
	Resolve(id provider.Identity) (ports.AdapterPort, error)
}

// Exchange is the outcome of one successful send: the assistant reply and
// the token accounting for this round trip.
type Exchange struct {
	Reply        string
	InputTokens  int
	OutputTokens int
	Cost         provider.CostBreakdown
}

// Service accumulates a conversation across provider exchanges. Entries are
// append-only; usage totals fold user tokens into input and assistant
// tokens into output. Callers serialize sends; the service holds exactly
// one live conversation at a time.
type Service struct {
	conversation *chat.Conversation
	totals       provider.UsageTotals
	resolver     AdapterResolver
	sessions     *appsession.Manager
	prompts      *appprompt.Service
	estimator    provider.TokenEstimator
	calculator   *provider.CostCalculator
	logger       *logging.Logger
	tracer       *tracing.Tracer
}

// NewService creates a conversation service. Logger and tracer may be nil,
// in which case the package defaults are used.
func NewService(
	resolver AdapterResolver,
	sessions *appsession.Manager,
	prompts *appprompt.Service,
	estimator provider.TokenEstimator,
	calculator *provider.CostCalculator,
	logger *logging.Logger,
	tracer *tracing.Tracer,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if tracer == nil {
		tracer = tracing.Default()
	}
	return &Service{
		conversation: chat.NewConversation(),
		resolver:     resolver,
		sessions:     sessions,
		prompts:      prompts,
		estimator:    estimator,
		calculator:   calculator,
		logger:       logger,
		tracer:       tracer,
	}
}

// Send records the user input, dispatches the conversation to the active
// provider, and records the assistant reply. The user entry is appended
// before the provider is contacted, so a failed exchange still leaves the
// input in the transcript; the failure itself is recorded as a synthetic
// assistant entry with the error text and zero tokens, and the error is
// returned to the caller. Usage totals are untouched until the provider
// answers: only a successful exchange accrues input and output tokens.
func (s *Service) Send(ctx context.Context, text string) (*Exchange, error) {
	settings := s.sessions.Active()
	ctx = logging.WithCorrelationID(ctx, uuid.New().String())
	ctx = logging.WithConversationID(ctx, s.conversation.ID)
	ctx = logging.WithProvider(ctx, string(settings.Identity))
	ctx, span := s.tracer.StartChatSpan(ctx, string(settings.Identity), settings.Model)

	inputTokens := s.estimator.Estimate(text)
	userEntry := chat.NewUserEntry(text, inputTokens)
	if err := s.conversation.Append(userEntry); err != nil {
		span.EndWithError(err)
		return nil, err
	}

	messages, err := s.outboundMessages()
	if err != nil {
		s.recordFailure(ctx, err)
		span.EndWithError(err)
		return nil, err
	}

	adapter, err := s.resolver.Resolve(settings.Identity)
	if err != nil {
		s.recordFailure(ctx, err)
		span.EndWithError(err)
		return nil, err
	}

	logging.LogProviderRequest(ctx, s.logger, string(settings.Identity), settings.Model, inputTokens)
	started := time.Now()

	pctx, providerSpan := s.tracer.StartProviderSpan(ctx, string(settings.Identity), settings.Model)
	providerSpan.SetRequestTokens(inputTokens)
	reply, err := adapter.Send(pctx, messages, settings)
	if err != nil {
		providerSpan.EndWithError(err)
		logging.LogProviderFailed(ctx, s.logger, string(settings.Identity), settings.Model, err, time.Since(started))
		s.recordFailure(ctx, err)
		span.EndWithError(err)
		return nil, err
	}
	providerSpan.SetResponseTokens(reply.OutputTokens)
	providerSpan.End()
	logging.LogProviderResponse(ctx, s.logger, string(settings.Identity), settings.Model, reply.OutputTokens, time.Since(started))

	assistantEntry := chat.NewAssistantEntry(reply.Content, reply.OutputTokens)
	if err := s.conversation.Append(assistantEntry); err != nil {
		span.EndWithError(err)
		return nil, err
	}
	s.totals.AddInput(inputTokens)
	s.totals.AddOutput(reply.OutputTokens)

	cost := s.calculator.Calculate(settings.Model, s.totals)
	logging.LogCostIncurred(ctx, s.logger, string(settings.Identity), settings.Model,
		cost.TotalCost, s.totals.InputTokens, s.totals.OutputTokens)

	span.SetTokens(s.totals.InputTokens, s.totals.OutputTokens)
	span.SetCost(cost.TotalCost)
	span.SetEntryCount(s.conversation.EntryCount())
	span.End()

	return &Exchange{
		Reply:        reply.Content,
		InputTokens:  inputTokens,
		OutputTokens: reply.OutputTokens,
		Cost:         cost,
	}, nil
}

// outboundMessages builds the canonical list for the provider: the current
// System Prompt content as a leading system message, then the conversation
// in insertion order.
func (s *Service) outboundMessages() ([]chat.Message, error) {
	systemContent, err := s.prompts.SystemPromptContent()
	if err != nil {
		return nil, err
	}
	history := s.conversation.Messages()
	messages := make([]chat.Message, 0, len(history)+1)
	messages = append(messages, chat.NewSystemMessage(systemContent))
	messages = append(messages, history...)
	return messages, nil
}

// recordFailure appends a synthetic assistant entry carrying the error
// text. Synthetic entries never contribute to usage totals.
func (s *Service) recordFailure(ctx context.Context, cause error) {
	entry := chat.NewAssistantEntry(cause.Error(), 0)
	if err := s.conversation.Append(entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to record error entry", "error", err)
	}
}

// Clear drops all conversation entries and zeroes the usage totals.
// Session settings and stored prompts are untouched.
func (s *Service) Clear() {
	s.conversation.Clear()
	s.totals.Reset()
}

// Conversation returns the live conversation aggregate.
func (s *Service) Conversation() *chat.Conversation {
	return s.conversation
}

// Totals returns the running usage totals for the conversation.
func (s *Service) Totals() provider.UsageTotals {
	return s.totals
}

// Cost returns the cost breakdown of the running totals priced against
// the active session's model.
func (s *Service) Cost() provider.CostBreakdown {
	return s.calculator.Calculate(s.sessions.Active().Model, s.totals)
}
