package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/presentation/cli/output"
)

// askFlags holds the flags for the ask command.
type askFlags struct {
	Provider string
	Model    string
	PromptID string
}

var askOpts askFlags

// AskResult holds the result of the ask command for JSON output.
type AskResult struct {
	Question     string  `json:"question"`
	Answer       string  `json:"answer"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// NewAskCmd creates the ask command for one-shot questions.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a one-shot question",
		Long: `Send a single question and print the answer.

Unlike chat, ask does not keep conversation context between invocations.
The question can be rendered through a saved prompt template first.

Examples:
  # Ask with the remembered provider settings
  parley ask "What is a goroutine?"

  # Ask on a specific provider
  parley ask --provider gemini "Summarize this repo"

  # Render the question through a saved prompt template
  parley ask --prompt summarize "the text to summarize"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringVarP(&askOpts.Provider, "provider", "p", "",
		"provider to use (openai, gemini, anthropic, custom)")
	cmd.Flags().StringVarP(&askOpts.Model, "model", "m", "",
		"model override for the active provider")
	cmd.Flags().StringVar(&askOpts.PromptID, "prompt", "",
		"saved prompt id to render the question through")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	formatter := GetFormatter()
	ctx := context.Background()

	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application container not initialized")
	}

	sessions := container.SessionManager()
	chatService := container.ChatService()

	if askOpts.Provider != "" {
		if _, err := sessions.SwitchProvider(provider.Identity(askOpts.Provider)); err != nil {
			return fmt.Errorf("could not switch provider: %w", err)
		}
	}
	if askOpts.Model != "" {
		if err := sessions.SetModel(askOpts.Model); err != nil {
			return fmt.Errorf("could not set model: %w", err)
		}
	}

	question := strings.Join(args, " ")

	text := question
	if askOpts.PromptID != "" {
		rendered, err := container.PromptService().Render(askOpts.PromptID, question)
		if err != nil {
			return fmt.Errorf("could not render prompt: %w", err)
		}
		text = rendered
	}

	settings := sessions.Active()

	var spinner *output.Spinner
	if formatter.Format() == output.FormatText {
		spinner = output.NewSpinner("waiting for " + string(settings.Identity))
		spinner.Start()
	}

	exchange, err := chatService.Send(ctx, text)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(AskResult{
			Question:     question,
			Answer:       exchange.Reply,
			Provider:     string(settings.Identity),
			Model:        settings.Model,
			InputTokens:  exchange.InputTokens,
			OutputTokens: exchange.OutputTokens,
			CostUSD:      exchange.Cost.TotalCost,
		})
	}

	formatter.Println("%s", exchange.Reply)
	formatter.Println("%s", formatter.Dim(fmt.Sprintf(
		"in=%d out=%d cost=$%.6f", exchange.InputTokens, exchange.OutputTokens, exchange.Cost.TotalCost)))
	return nil
}
