package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	appChat "github.com/jbctechsolutions/parley/internal/application/chat"
	"github.com/jbctechsolutions/parley/internal/application/ports"
	appPrompt "github.com/jbctechsolutions/parley/internal/application/prompt"
	appSession "github.com/jbctechsolutions/parley/internal/application/session"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/presentation/cli/output"
)

// chatFlags holds the flags for the chat command.
type chatFlags struct {
	Provider string
	Model    string
}

var chatOpts chatFlags

// NewChatCmd creates the chat command for interactive REPL mode.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat REPL",
		Long: `Start an interactive chat session.

The chat command provides a REPL (Read-Eval-Print Loop) interface for
continuous conversation. The session maintains context across exchanges
and tracks token usage and cost.

Special commands:
  /exit, /quit      - Exit the chat session
  /clear            - Clear conversation history and usage totals
  /help             - Show help message
  /usage            - Show token totals and cost for this session
  /provider <name>  - Switch provider (openai, gemini, anthropic, custom)
  /model <name>     - Set the model for the active provider
  /key <value>      - Set the API key for the active provider
  /url <value>      - Set the base URL for the active provider
  /prompts          - List saved prompts
  /use <id> <text>  - Send text rendered through a saved prompt
  /save [title]     - Save the conversation to the database

Examples:
  # Start a chat session with the remembered provider settings
  parley chat

  # Start on a specific provider
  parley chat --provider anthropic

  # Start with a model override
  parley chat --model gpt-4o`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().StringVarP(&chatOpts.Provider, "provider", "p", "",
		"initial provider (openai, gemini, anthropic, custom)")
	cmd.Flags().StringVarP(&chatOpts.Model, "model", "m", "",
		"model override for the active provider")

	return cmd
}

// runChat executes the interactive chat REPL.
func runChat(cmd *cobra.Command, args []string) error {
	formatter := GetFormatter()
	ctx := context.Background()

	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application container not initialized")
	}

	sessions := container.SessionManager()
	chatService := container.ChatService()

	if chatOpts.Provider != "" {
		if _, err := sessions.SwitchProvider(provider.Identity(chatOpts.Provider)); err != nil {
			return fmt.Errorf("could not switch provider: %w", err)
		}
	}
	if chatOpts.Model != "" {
		if err := sessions.SetModel(chatOpts.Model); err != nil {
			return fmt.Errorf("could not set model: %w", err)
		}
	}

	settings := sessions.Active()
	formatter.Header("Parley Chat")
	formatter.Item("Provider", string(settings.Identity))
	formatter.Item("Model", settings.Model)
	if !sessions.IsConfigured() {
		formatter.Warning("No API key set for %s. Use /key <value> to set one.", settings.Identity)
	}
	formatter.Println("")
	formatter.Info("Type your message and press Enter. Type /help for commands.")
	formatter.Println("")

	rl, err := readline.New("> ")
	if err != nil {
		return fmt.Errorf("could not create readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			shouldExit, text, err := handleChatCommand(line, container, formatter)
			if err != nil {
				formatter.Error("%s", err.Error())
				continue
			}
			if shouldExit {
				break
			}
			if text == "" {
				continue
			}
			// /use produced a rendered message to send
			line = text
		}

		sendAndPrint(ctx, chatService, formatter, line)
	}

	formatter.Info("Chat session ended. Goodbye!")
	return nil
}

// sendAndPrint sends one message and prints the reply with usage details.
func sendAndPrint(ctx context.Context, chatService *appChat.Service, formatter *output.Formatter, text string) {
	container := GetContainer()
	settings := container.SessionManager().Active()

	spinner := output.NewSpinner("waiting for " + string(settings.Identity))
	spinner.Start()

	exchange, err := chatService.Send(ctx, text)
	spinner.Stop()

	if err != nil {
		formatter.Error("%s", err.Error())
		return
	}

	formatter.Success("Assistant (%s):", settings.Model)
	formatter.Println("%s", exchange.Reply)
	formatter.Println("%s", formatter.Dim(fmt.Sprintf(
		"in=%d out=%d cost=$%.6f", exchange.InputTokens, exchange.OutputTokens, exchange.Cost.TotalCost)))
	formatter.Println("")
}

// containerAccess is the slice of the application container the chat
// command handler needs. Satisfied by *application.Container.
type containerAccess interface {
	SessionManager() *appSession.Manager
	ChatService() *appChat.Service
	PromptService() *appPrompt.Service
	ConversationRepository() ports.ConversationStore
}

// handleChatCommand handles special chat commands.
// Returns (shouldExit, textToSend, error); textToSend is non-empty only
// when the command produced a rendered message to dispatch.
func handleChatCommand(cmd string, container containerAccess, formatter *output.Formatter) (bool, string, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, "", nil
	}

	sessions := container.SessionManager()
	chatService := container.ChatService()
	prompts := container.PromptService()

	switch strings.ToLower(parts[0]) {
	case "/exit", "/quit":
		return true, "", nil

	case "/clear":
		chatService.Clear()
		formatter.Success("Conversation history and usage totals cleared")
		return false, "", nil

	case "/help":
		formatter.Header("Chat Commands")
		formatter.Item("/exit, /quit", "Exit the chat session")
		formatter.Item("/clear", "Clear conversation history and usage totals")
		formatter.Item("/help", "Show this help message")
		formatter.Item("/usage", "Show token totals and cost")
		formatter.Item("/provider <name>", "Switch provider")
		formatter.Item("/model <name>", "Set model for the active provider")
		formatter.Item("/key <value>", "Set API key for the active provider")
		formatter.Item("/url <value>", "Set base URL for the active provider")
		formatter.Item("/prompts", "List saved prompts")
		formatter.Item("/use <id> <text>", "Send text rendered through a saved prompt")
		formatter.Item("/save [title]", "Save the conversation")
		formatter.Println("")
		return false, "", nil

	case "/usage":
		printUsage(container, formatter)
		return false, "", nil

	case "/provider":
		if len(parts) < 2 {
			return false, "", fmt.Errorf("usage: /provider <name> (one of: %s)", identityList())
		}
		settings, err := sessions.SwitchProvider(provider.Identity(parts[1]))
		if err != nil {
			return false, "", err
		}
		formatter.Success("Switched to %s (model: %s)", settings.Identity, settings.Model)
		if settings.Credential == "" {
			formatter.Warning("No API key set for %s. Use /key <value> to set one.", settings.Identity)
		}
		return false, "", nil

	case "/model":
		if len(parts) < 2 {
			return false, "", fmt.Errorf("usage: /model <model-name>")
		}
		if err := sessions.SetModel(parts[1]); err != nil {
			return false, "", err
		}
		formatter.Success("Model set to %s", parts[1])
		return false, "", nil

	case "/key":
		if len(parts) < 2 {
			return false, "", fmt.Errorf("usage: /key <api-key>")
		}
		if err := sessions.SetCredential(parts[1]); err != nil {
			return false, "", err
		}
		formatter.Success("API key set for %s", sessions.ActiveIdentity())
		return false, "", nil

	case "/url":
		if len(parts) < 2 {
			return false, "", fmt.Errorf("usage: /url <base-url>")
		}
		if err := sessions.SetBaseURL(parts[1]); err != nil {
			return false, "", err
		}
		formatter.Success("Base URL set for %s", sessions.ActiveIdentity())
		return false, "", nil

	case "/prompts":
		list, err := prompts.List()
		if err != nil {
			return false, "", err
		}
		printPromptTable(formatter, list)
		return false, "", nil

	case "/use":
		if len(parts) < 3 {
			return false, "", fmt.Errorf("usage: /use <prompt-id> <text>")
		}
		rendered, err := prompts.Render(parts[1], strings.Join(parts[2:], " "))
		if err != nil {
			return false, "", err
		}
		return false, rendered, nil

	case "/save":
		title := "Chat session"
		if len(parts) > 1 {
			title = strings.Join(parts[1:], " ")
		}
		conv := chatService.Conversation()
		if conv.EntryCount() == 0 {
			return false, "", fmt.Errorf("nothing to save: conversation is empty")
		}
		if err := container.ConversationRepository().SaveConversation(conv, title); err != nil {
			return false, "", err
		}
		formatter.Success("Conversation saved (%s)", conv.ID)
		return false, "", nil

	default:
		return false, "", fmt.Errorf("unknown command: %s (type /help for help)", parts[0])
	}
}

// identityList returns the valid provider identities for error messages.
func identityList() string {
	ids := provider.Identities()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}
