package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	appChat "github.com/jbctechsolutions/parley/internal/application/chat"
	"github.com/jbctechsolutions/parley/internal/application/ports"
	appPrompt "github.com/jbctechsolutions/parley/internal/application/prompt"
	appSession "github.com/jbctechsolutions/parley/internal/application/session"
	"github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
	"github.com/jbctechsolutions/parley/internal/domain/prompt"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/infrastructure/tokenizer"
	"github.com/jbctechsolutions/parley/internal/presentation/cli/output"
)

// executeCommand executes a cobra command with the given args.
func executeCommand(root *cobra.Command, args ...string) error {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	return root.Execute()
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd == nil {
		t.Fatal("NewRootCmd returned nil")
	}

	if cmd.Use != "parley" {
		t.Errorf("expected Use='parley', got %q", cmd.Use)
	}

	// Check key subcommands exist
	wantSubcmds := []string{"version", "init", "chat", "ask", "prompts", "settings", "usage", "export"}
	subcmds := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcmds[sub.Name()] = true
	}

	for _, want := range wantSubcmds {
		if !subcmds[want] {
			t.Errorf("missing subcommand: %s", want)
		}
	}

	// Check persistent flags
	wantFlags := []string{"config", "output", "verbose"}
	for _, flag := range wantFlags {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag: %s", flag)
		}
	}
}

func TestVersionCmd_NoError(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"basic", []string{"version"}, false},
		{"short", []string{"version", "--short"}, false},
		{"json", []string{"version", "-o", "json"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaskCredential(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"abcd", "****"},
		{"sk-12345678", "*******5678"},
	}

	for _, tt := range tests {
		if got := maskCredential(tt.input); got != tt.want {
			t.Errorf("maskCredential(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIdentityList(t *testing.T) {
	list := identityList()
	for _, want := range []string{"openai", "gemini", "anthropic", "custom"} {
		if !strings.Contains(list, want) {
			t.Errorf("expected identity list to contain %q, got %q", want, list)
		}
	}
}

// memPromptStore is an in-memory prompt store for command tests.
type memPromptStore struct {
	prompts map[string]prompt.Prompt
}

func newMemPromptStore() *memPromptStore {
	return &memPromptStore{prompts: make(map[string]prompt.Prompt)}
}

func (s *memPromptStore) Save(p *prompt.Prompt) error {
	s.prompts[p.ID] = *p
	return nil
}

func (s *memPromptStore) Get(id string) (*prompt.Prompt, error) {
	p, ok := s.prompts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memPromptStore) List() ([]*prompt.Prompt, error) {
	list := make([]*prompt.Prompt, 0, len(s.prompts))
	for id := range s.prompts {
		p := s.prompts[id]
		list = append(list, &p)
	}
	return list, nil
}

func (s *memPromptStore) Delete(id string) (bool, error) {
	if _, ok := s.prompts[id]; !ok {
		return false, nil
	}
	delete(s.prompts, id)
	return true, nil
}

// memConvStore is an in-memory conversation store for command tests.
type memConvStore struct {
	saved map[string]int
}

func (s *memConvStore) SaveConversation(conv *chat.Conversation, title string) error {
	if s.saved == nil {
		s.saved = make(map[string]int)
	}
	s.saved[conv.ID] = len(conv.Entries)
	return nil
}

func (s *memConvStore) LoadConversation(id string) (*chat.Conversation, error) {
	return nil, errors.NewError(errors.CodeNotFound, "conversation not found", nil)
}

func (s *memConvStore) ListConversations() ([]ports.ConversationSummary, error) {
	return nil, nil
}

// failResolver always fails to resolve, so tests never hit the network.
type failResolver struct{}

func (failResolver) Resolve(id provider.Identity) (ports.AdapterPort, error) {
	return nil, errors.NewError(errors.CodeConfiguration, "no adapter in test", nil)
}

// testContainer implements containerAccess over in-memory services.
type testContainer struct {
	sessions  *appSession.Manager
	chatSvc   *appChat.Service
	promptSvc *appPrompt.Service
	convStore *memConvStore
}

func newTestContainer(t *testing.T) *testContainer {
	t.Helper()

	estimator := tokenizer.NewEstimator()

	sessions, err := appSession.NewManager(nil)
	if err != nil {
		t.Fatalf("could not create session manager: %v", err)
	}

	promptSvc := appPrompt.NewService(newMemPromptStore(), estimator)
	chatSvc := appChat.NewService(
		failResolver{}, sessions, promptSvc, estimator,
		provider.NewCostCalculator(nil), nil, nil,
	)

	return &testContainer{
		sessions:  sessions,
		chatSvc:   chatSvc,
		promptSvc: promptSvc,
		convStore: &memConvStore{},
	}
}

func (c *testContainer) SessionManager() *appSession.Manager { return c.sessions }
func (c *testContainer) ChatService() *appChat.Service       { return c.chatSvc }
func (c *testContainer) PromptService() *appPrompt.Service   { return c.promptSvc }

func (c *testContainer) ConversationRepository() ports.ConversationStore {
	return c.convStore
}

func testFormatter() (*output.Formatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return output.NewFormatter(output.WithWriter(&buf), output.WithColor(false)), &buf
}

func TestHandleChatCommand_Exit(t *testing.T) {
	container := newTestContainer(t)
	formatter, _ := testFormatter()

	for _, cmd := range []string{"/exit", "/quit", "/EXIT"} {
		exit, _, err := handleChatCommand(cmd, container, formatter)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", cmd, err)
		}
		if !exit {
			t.Errorf("%s: expected exit", cmd)
		}
	}
}

func TestHandleChatCommand_Help(t *testing.T) {
	container := newTestContainer(t)
	formatter, buf := testFormatter()

	exit, _, err := handleChatCommand("/help", container, formatter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exit {
		t.Error("help should not exit")
	}
	if !strings.Contains(buf.String(), "/provider") {
		t.Errorf("expected help output to list commands, got %q", buf.String())
	}
}

func TestHandleChatCommand_ProviderSwitch(t *testing.T) {
	container := newTestContainer(t)
	formatter, _ := testFormatter()

	_, _, err := handleChatCommand("/provider anthropic", container, formatter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := container.sessions.ActiveIdentity(); got != provider.IdentityAnthropic {
		t.Errorf("expected anthropic active, got %s", got)
	}

	// Invalid provider is rejected and leaves the active provider unchanged
	_, _, err = handleChatCommand("/provider cohere", container, formatter)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if got := container.sessions.ActiveIdentity(); got != provider.IdentityAnthropic {
		t.Errorf("expected anthropic still active, got %s", got)
	}
}

func TestHandleChatCommand_ModelAndKey(t *testing.T) {
	container := newTestContainer(t)
	formatter, _ := testFormatter()

	if _, _, err := handleChatCommand("/model gpt-4o", container, formatter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := handleChatCommand("/key sk-test", container, formatter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	settings := container.sessions.Active()
	if settings.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %s", settings.Model)
	}
	if settings.Credential != "sk-test" {
		t.Errorf("expected credential set, got %q", settings.Credential)
	}

	// Missing argument
	if _, _, err := handleChatCommand("/model", container, formatter); err == nil {
		t.Error("expected error for missing model argument")
	}
}

func TestHandleChatCommand_Use(t *testing.T) {
	container := newTestContainer(t)
	formatter, _ := testFormatter()

	created, err := container.promptSvc.Create("summarize", "Summarize: {{USER_INPUT}}")
	if err != nil {
		t.Fatalf("could not create prompt: %v", err)
	}

	_, text, err := handleChatCommand("/use "+created.ID+" the text", container, formatter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Summarize: the text" {
		t.Errorf("unexpected rendered text: %q", text)
	}
}

func TestHandleChatCommand_SaveEmpty(t *testing.T) {
	container := newTestContainer(t)
	formatter, _ := testFormatter()

	_, _, err := handleChatCommand("/save my chat", container, formatter)
	if err == nil {
		t.Fatal("expected error when saving an empty conversation")
	}
}

func TestHandleChatCommand_Unknown(t *testing.T) {
	container := newTestContainer(t)
	formatter, _ := testFormatter()

	_, _, err := handleChatCommand("/frobnicate", container, formatter)
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestHandleChatCommand_Usage(t *testing.T) {
	container := newTestContainer(t)
	formatter, buf := testFormatter()

	exit, _, err := handleChatCommand("/usage", container, formatter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exit {
		t.Error("usage should not exit")
	}
	out := buf.String()
	if !strings.Contains(out, "Input tokens") || !strings.Contains(out, "Total cost") {
		t.Errorf("expected usage report, got %q", out)
	}
}
