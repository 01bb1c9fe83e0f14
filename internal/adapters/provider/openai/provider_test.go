package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	adapter "github.com/jbctechsolutions/parley/internal/adapters/provider"
	"github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/domain/session"
	"github.com/jbctechsolutions/parley/internal/infrastructure/tokenizer"
)

func testSettings(baseURL string) session.Settings {
	return session.Settings{
		Identity:   provider.IdentityOpenAI,
		Credential: "sk-test",
		Model:      "gpt-4o-mini",
		BaseURL:    baseURL,
	}
}

func newTestAdapter() *Adapter {
	return NewAdapter(adapter.NewTransport(), tokenizer.NewEstimator())
}

func TestAdapter_BuildRequest(t *testing.T) {
	a := newTestAdapter()
	messages := []chat.Message{
		chat.NewSystemMessage("Be terse"),
		chat.NewUserMessage("Hi"),
		chat.NewAssistantMessage("Hello"),
	}

	req, err := a.BuildRequest(messages, testSettings("https://api.openai.com/v1"))
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	if req.URL != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("URL = %q", req.URL)
	}
	if got := req.Headers["Authorization"]; got != "Bearer sk-test" {
		t.Errorf("Authorization header = %q", got)
	}

	var body ChatCompletionRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if body.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", body.Model)
	}
	if body.Temperature != Temperature {
		t.Errorf("Temperature = %v, want %v", body.Temperature, Temperature)
	}
	// The message list is carried verbatim, system role included.
	if len(body.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(body.Messages))
	}
	for i, want := range []struct{ role, content string }{
		{"system", "Be terse"},
		{"user", "Hi"},
		{"assistant", "Hello"},
	} {
		if body.Messages[i].Role != want.role || body.Messages[i].Content != want.content {
			t.Errorf("message %d = %+v, want %+v", i, body.Messages[i], want)
		}
	}
}

func TestAdapter_BuildRequest_TrailingSlash(t *testing.T) {
	a := newTestAdapter()
	req, err := a.BuildRequest(nil, testSettings("https://proxy.example.com/v1/"))
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}
	if req.URL != "https://proxy.example.com/v1/chat/completions" {
		t.Errorf("URL = %q", req.URL)
	}
}

func TestAdapter_BuildRequest_MissingCredential(t *testing.T) {
	a := newTestAdapter()
	settings := testSettings("https://api.openai.com/v1")
	settings.Credential = ""

	req, err := a.BuildRequest([]chat.Message{chat.NewUserMessage("Hi")}, settings)
	if err == nil {
		t.Fatal("expected error for missing credential")
	}
	if req != nil {
		t.Error("expected nil request when credential is missing")
	}
	if !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
	if !errors.Is(err, errors.ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential in chain, got %v", err)
	}
}

func TestAdapter_BuildRequest_DoesNotMutateInput(t *testing.T) {
	a := newTestAdapter()
	messages := []chat.Message{chat.NewUserMessage("original")}

	if _, err := a.BuildRequest(messages, testSettings("https://api.openai.com/v1")); err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	if messages[0].Content != "original" || messages[0].Role != chat.RoleUser {
		t.Errorf("input conversation was mutated: %+v", messages[0])
	}
}

func TestAdapter_ParseResponse(t *testing.T) {
	a := newTestAdapter()

	tests := []struct {
		name       string
		body       string
		wantText   string
		wantTokens int
	}{
		{
			name:       "reported usage takes precedence",
			body:       `{"choices":[{"message":{"role":"assistant","content":"Hi there"}}],"usage":{"completion_tokens":3}}`,
			wantText:   "Hi there",
			wantTokens: 3,
		},
		{
			name:     "missing choices degrades to empty",
			body:     `{"id":"x","choices":[]}`,
			wantText: "",
		},
		{
			name:     "missing everything",
			body:     `{}`,
			wantText: "",
		},
		{
			name:     "malformed json",
			body:     `{"choices":[{`,
			wantText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := a.ParseResponse([]byte(tt.body))
			if reply.Content != tt.wantText {
				t.Errorf("Content = %q, want %q", reply.Content, tt.wantText)
			}
			if tt.wantTokens > 0 && reply.OutputTokens != tt.wantTokens {
				t.Errorf("OutputTokens = %d, want %d", reply.OutputTokens, tt.wantTokens)
			}
		})
	}
}

func TestAdapter_ParseResponse_EstimatesWithoutUsage(t *testing.T) {
	a := newTestAdapter()
	body := `{"choices":[{"message":{"role":"assistant","content":"a reply without usage data"}}]}`

	reply := a.ParseResponse([]byte(body))
	want := tokenizer.NewEstimator().Estimate("a reply without usage data")
	if reply.OutputTokens != want {
		t.Errorf("OutputTokens = %d, want estimate %d", reply.OutputTokens, want)
	}
}

func TestAdapter_Send(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"pong"}}],"usage":{"completion_tokens":2}}`))
	}))
	defer server.Close()

	a := newTestAdapter()
	reply, err := a.Send(context.Background(), []chat.Message{chat.NewUserMessage("ping")}, testSettings(server.URL))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotPath != "/chat/completions" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if reply.Content != "pong" || reply.OutputTokens != 2 {
		t.Errorf("reply = %+v", reply)
	}
}

func TestAdapter_Send_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	a := newTestAdapter()
	_, err := a.Send(context.Background(), []chat.Message{chat.NewUserMessage("ping")}, testSettings(server.URL))
	if err == nil {
		t.Fatal("expected error for 429 status")
	}

	var provErr *errors.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
	if provErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", provErr.StatusCode)
	}
	if !strings.Contains(provErr.Payload, "rate limited") {
		t.Errorf("Payload = %q, want raw error body", provErr.Payload)
	}
}

func TestCustomAdapter_Identity(t *testing.T) {
	a := NewCustomAdapter(adapter.NewTransport(), tokenizer.NewEstimator())
	if a.Identity() != provider.IdentityCustom {
		t.Errorf("Identity = %q, want custom", a.Identity())
	}

	// The custom identity keeps the chat completions wire shape against
	// the user-supplied base and passes the model through opaquely.
	settings := session.Settings{
		Identity:   provider.IdentityCustom,
		Credential: "token",
		Model:      "my-local-model",
		BaseURL:    "http://localhost:8080/v1",
	}
	req, err := a.BuildRequest([]chat.Message{chat.NewUserMessage("Hi")}, settings)
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}
	if req.URL != "http://localhost:8080/v1/chat/completions" {
		t.Errorf("URL = %q", req.URL)
	}
	var body ChatCompletionRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if body.Model != "my-local-model" {
		t.Errorf("Model = %q, want opaque pass-through", body.Model)
	}
}
