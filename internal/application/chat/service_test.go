package chat_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	appchat "github.com/jbctechsolutions/parley/internal/application/chat"
	"github.com/jbctechsolutions/parley/internal/application/ports"
	appprompt "github.com/jbctechsolutions/parley/internal/application/prompt"
	appsession "github.com/jbctechsolutions/parley/internal/application/session"
	"github.com/jbctechsolutions/parley/internal/domain/chat"
	domainerrors "github.com/jbctechsolutions/parley/internal/domain/errors"
	"github.com/jbctechsolutions/parley/internal/domain/prompt"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/domain/session"
	"github.com/jbctechsolutions/parley/internal/infrastructure/logging"
	"github.com/jbctechsolutions/parley/internal/infrastructure/tokenizer"
	"github.com/jbctechsolutions/parley/internal/infrastructure/tracing"
)

// scriptedAdapter replies with a fixed content and token count, recording
// the message list it was handed.
type scriptedAdapter struct {
	identity provider.Identity
	reply    *ports.Reply
	err      error
	gotMsgs  []chat.Message
	calls    int
}

func (a *scriptedAdapter) Identity() provider.Identity { return a.identity }

func (a *scriptedAdapter) BuildRequest(msgs []chat.Message, settings session.Settings) (*ports.WireRequest, error) {
	return &ports.WireRequest{}, nil
}

func (a *scriptedAdapter) ParseResponse(body []byte) *ports.Reply { return a.reply }

func (a *scriptedAdapter) Send(ctx context.Context, msgs []chat.Message, settings session.Settings) (*ports.Reply, error) {
	a.calls++
	a.gotMsgs = msgs
	if a.err != nil {
		return nil, a.err
	}
	return a.reply, nil
}

// singleResolver resolves every identity to the one adapter.
type singleResolver struct {
	adapter ports.AdapterPort
}

func (r *singleResolver) Resolve(provider.Identity) (ports.AdapterPort, error) {
	return r.adapter, nil
}

type failingResolver struct{}

func (failingResolver) Resolve(id provider.Identity) (ports.AdapterPort, error) {
	return nil, domainerrors.NewError(domainerrors.CodeConfiguration,
		"no adapter registered", domainerrors.ErrUnknownProvider)
}

// memoryPromptStore is an in-memory ports.PromptStore for tests.
type memoryPromptStore struct {
	prompts map[string]prompt.Prompt
}

func newMemoryPromptStore() *memoryPromptStore {
	return &memoryPromptStore{prompts: make(map[string]prompt.Prompt)}
}

func (s *memoryPromptStore) Save(p *prompt.Prompt) error {
	s.prompts[p.ID] = *p
	return nil
}

func (s *memoryPromptStore) Get(id string) (*prompt.Prompt, error) {
	p, ok := s.prompts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memoryPromptStore) List() ([]*prompt.Prompt, error) {
	out := make([]*prompt.Prompt, 0, len(s.prompts))
	for id := range s.prompts {
		p := s.prompts[id]
		out = append(out, &p)
	}
	return out, nil
}

func (s *memoryPromptStore) Delete(id string) (bool, error) {
	if _, ok := s.prompts[id]; !ok {
		return false, nil
	}
	delete(s.prompts, id)
	return true, nil
}

func newChatService(t *testing.T, resolver appchat.AdapterResolver) *appchat.Service {
	t.Helper()
	estimator := tokenizer.NewEstimator()
	sessions, err := appsession.NewManager(nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	prompts := appprompt.NewService(newMemoryPromptStore(), estimator)
	calculator := provider.NewCostCalculator(nil)
	return appchat.NewService(resolver, sessions, prompts, estimator, calculator, nil, nil)
}

func TestSend_AccumulatesEntriesAndTotals(t *testing.T) {
	adapter := &scriptedAdapter{
		identity: provider.IdentityOpenAI,
		reply:    &ports.Reply{Content: "Hi there", OutputTokens: 3},
	}
	svc := newChatService(t, &singleResolver{adapter: adapter})
	estimator := tokenizer.NewEstimator()

	exchange, err := svc.Send(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if exchange.Reply != "Hi there" {
		t.Errorf("reply = %q, want %q", exchange.Reply, "Hi there")
	}

	conv := svc.Conversation()
	if conv.EntryCount() != 2 {
		t.Fatalf("entry count = %d, want 2", conv.EntryCount())
	}
	entries := conv.GetEntries()
	if entries[0].Role != chat.RoleUser || entries[0].Content != "Hello" {
		t.Errorf("first entry = %+v, want user Hello", entries[0])
	}
	if entries[1].Role != chat.RoleAssistant || entries[1].Content != "Hi there" {
		t.Errorf("second entry = %+v, want assistant reply", entries[1])
	}

	wantInput := estimator.Estimate("Hello")
	totals := svc.Totals()
	if totals.InputTokens != wantInput {
		t.Errorf("input tokens = %d, want %d", totals.InputTokens, wantInput)
	}
	if totals.OutputTokens != 3 {
		t.Errorf("output tokens = %d, want 3", totals.OutputTokens)
	}
}

func TestSend_PrependsSystemPrompt(t *testing.T) {
	adapter := &scriptedAdapter{
		identity: provider.IdentityOpenAI,
		reply:    &ports.Reply{Content: "ok", OutputTokens: 1},
	}
	svc := newChatService(t, &singleResolver{adapter: adapter})

	if _, err := svc.Send(context.Background(), "Hello"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(adapter.gotMsgs) != 2 {
		t.Fatalf("adapter received %d messages, want 2", len(adapter.gotMsgs))
	}
	if adapter.gotMsgs[0].Role != chat.RoleSystem {
		t.Errorf("first outbound role = %q, want system", adapter.gotMsgs[0].Role)
	}
	if adapter.gotMsgs[0].Content != prompt.DefaultSystemPromptContent {
		t.Errorf("system content = %q", adapter.gotMsgs[0].Content)
	}
	if adapter.gotMsgs[1].Role != chat.RoleUser || adapter.gotMsgs[1].Content != "Hello" {
		t.Errorf("second outbound message = %+v", adapter.gotMsgs[1])
	}
}

func TestSend_HistoryGrowsAcrossExchanges(t *testing.T) {
	adapter := &scriptedAdapter{
		identity: provider.IdentityOpenAI,
		reply:    &ports.Reply{Content: "reply", OutputTokens: 2},
	}
	svc := newChatService(t, &singleResolver{adapter: adapter})

	for _, text := range []string{"first", "second"} {
		if _, err := svc.Send(context.Background(), text); err != nil {
			t.Fatalf("Send(%q) failed: %v", text, err)
		}
	}

	// Second send carries system + first user + first reply + second user.
	if len(adapter.gotMsgs) != 4 {
		t.Fatalf("adapter received %d messages, want 4", len(adapter.gotMsgs))
	}
	if adapter.gotMsgs[2].Role != chat.RoleAssistant || adapter.gotMsgs[2].Content != "reply" {
		t.Errorf("history missing earlier reply: %+v", adapter.gotMsgs[2])
	}
}

func TestSend_ProviderFailureRecordsSyntheticEntry(t *testing.T) {
	adapter := &scriptedAdapter{
		identity: provider.IdentityOpenAI,
		err:      domainerrors.NewProviderError(500, `{"error":"boom"}`),
	}
	svc := newChatService(t, &singleResolver{adapter: adapter})

	_, err := svc.Send(context.Background(), "Hello")
	if err == nil {
		t.Fatal("Send succeeded despite provider failure")
	}
	if !domainerrors.IsProvider(err) {
		t.Errorf("expected provider error, got %v", err)
	}

	conv := svc.Conversation()
	if conv.EntryCount() != 2 {
		t.Fatalf("entry count = %d, want user entry plus synthetic entry", conv.EntryCount())
	}
	last := conv.GetLastEntry()
	if last.Role != chat.RoleAssistant {
		t.Errorf("synthetic entry role = %q, want assistant", last.Role)
	}
	if last.Tokens != 0 {
		t.Errorf("synthetic entry tokens = %d, want 0", last.Tokens)
	}
	if last.Content == "" {
		t.Error("synthetic entry has no error text")
	}

	// A failed exchange accrues nothing, input included.
	if totals := svc.Totals(); totals.TotalTokens() != 0 {
		t.Errorf("failed exchange accrued totals %+v, want zero", totals)
	}
}

func TestSend_ResolverFailureLeavesTotalsUntouched(t *testing.T) {
	svc := newChatService(t, failingResolver{})

	if _, err := svc.Send(context.Background(), "Hello there"); err == nil {
		t.Fatal("Send succeeded despite unresolvable provider")
	}
	if totals := svc.Totals(); totals.InputTokens != 0 {
		t.Errorf("input tokens = %d after send that never reached a provider, want 0", totals.InputTokens)
	}
}

func TestSend_ResolverFailure(t *testing.T) {
	svc := newChatService(t, failingResolver{})

	_, err := svc.Send(context.Background(), "Hello")
	if !domainerrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !errors.Is(err, domainerrors.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider in chain, got %v", err)
	}
	// The user entry stays in the transcript alongside the failure record.
	if got := svc.Conversation().EntryCount(); got != 2 {
		t.Errorf("entry count = %d, want 2", got)
	}
}

func TestClear_ResetsEntriesAndTotals(t *testing.T) {
	adapter := &scriptedAdapter{
		identity: provider.IdentityOpenAI,
		reply:    &ports.Reply{Content: "Hi", OutputTokens: 2},
	}
	svc := newChatService(t, &singleResolver{adapter: adapter})

	if _, err := svc.Send(context.Background(), "Hello"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	svc.Clear()

	if got := svc.Conversation().EntryCount(); got != 0 {
		t.Errorf("entry count after clear = %d, want 0", got)
	}
	if totals := svc.Totals(); totals.TotalTokens() != 0 {
		t.Errorf("totals after clear = %+v, want zero", totals)
	}
}

func TestCost_TracksRunningTotals(t *testing.T) {
	adapter := &scriptedAdapter{
		identity: provider.IdentityOpenAI,
		reply:    &ports.Reply{Content: "a reply of several words here", OutputTokens: 8},
	}
	svc := newChatService(t, &singleResolver{adapter: adapter})

	exchange, err := svc.Send(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	cost := svc.Cost()
	if cost.TotalCost <= 0 {
		t.Errorf("cost = %f, want > 0", cost.TotalCost)
	}
	if cost.TotalCost != exchange.Cost.TotalCost {
		t.Errorf("Cost() = %f, Send cost = %f", cost.TotalCost, exchange.Cost.TotalCost)
	}
	if cost.InputTokens != svc.Totals().InputTokens {
		t.Errorf("cost input tokens = %d, totals = %d", cost.InputTokens, svc.Totals().InputTokens)
	}
}

func TestSend_EmitsProviderSpan(t *testing.T) {
	var spans bytes.Buffer
	tracer, err := tracing.New(context.Background(), tracing.Config{
		Enabled:      true,
		ExporterType: tracing.ExporterStdout,
		ServiceName:  "parley-test",
		Environment:  "test",
		SampleRate:   1.0,
		Output:       &spans,
	})
	if err != nil {
		t.Fatalf("tracing.New failed: %v", err)
	}

	adapter := &scriptedAdapter{
		identity: provider.IdentityOpenAI,
		reply:    &ports.Reply{Content: "ok", OutputTokens: 2},
	}
	estimator := tokenizer.NewEstimator()
	sessions, err := appsession.NewManager(nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	prompts := appprompt.NewService(newMemoryPromptStore(), estimator)
	calculator := provider.NewCostCalculator(nil)
	svc := appchat.NewService(&singleResolver{adapter: adapter}, sessions, prompts, estimator, calculator, nil, tracer)

	if _, err := svc.Send(context.Background(), "Hello"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	exported := spans.String()
	if !strings.Contains(exported, "provider.request") {
		t.Error("exported spans missing provider.request")
	}
	if !strings.Contains(exported, "provider.response.tokens") {
		t.Error("exported spans missing provider.response.tokens attribute")
	}
}

func TestSend_LogsCarryCorrelationID(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.New(logging.Config{
		Level:  logging.LevelDebug,
		Format: logging.FormatJSON,
		Output: &logs,
	})

	adapter := &scriptedAdapter{
		identity: provider.IdentityOpenAI,
		reply:    &ports.Reply{Content: "ok", OutputTokens: 1},
	}
	estimator := tokenizer.NewEstimator()
	sessions, err := appsession.NewManager(nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	prompts := appprompt.NewService(newMemoryPromptStore(), estimator)
	calculator := provider.NewCostCalculator(nil)
	svc := appchat.NewService(&singleResolver{adapter: adapter}, sessions, prompts, estimator, calculator, logger, nil)

	if _, err := svc.Send(context.Background(), "Hello"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if !strings.Contains(logs.String(), `"correlation_id"`) {
		t.Error("provider request logs missing correlation_id")
	}
}
