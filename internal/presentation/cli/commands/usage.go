package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/parley/internal/presentation/cli/output"
)

// UsageReport holds the usage report for JSON output.
type UsageReport struct {
	Provider      string  `json:"provider"`
	Model         string  `json:"model"`
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	InputCostUSD  float64 `json:"input_cost_usd"`
	OutputCostUSD float64 `json:"output_cost_usd"`
	TotalCostUSD  float64 `json:"total_cost_usd"`
	EntryCount    int     `json:"entry_count"`
}

// NewUsageCmd creates the usage command.
func NewUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show token usage and cost",
		Long: `Show accumulated token usage and the cost breakdown for the
current process's conversation, priced against the active model.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application container not initialized")
			}

			if formatter.Format() == output.FormatJSON {
				settings := container.SessionManager().Active()
				cost := container.ChatService().Cost()
				return formatter.JSON(UsageReport{
					Provider:      string(settings.Identity),
					Model:         cost.Model,
					InputTokens:   cost.InputTokens,
					OutputTokens:  cost.OutputTokens,
					InputCostUSD:  cost.InputCost,
					OutputCostUSD: cost.OutputCost,
					TotalCostUSD:  cost.TotalCost,
					EntryCount:    container.ChatService().Conversation().EntryCount(),
				})
			}

			printUsage(container, formatter)
			return nil
		},
	}
}

// printUsage renders the usage report as text. Shared with the chat
// REPL's /usage command.
func printUsage(container containerAccess, formatter *output.Formatter) {
	settings := container.SessionManager().Active()
	cost := container.ChatService().Cost()
	entries := container.ChatService().Conversation().EntryCount()

	formatter.Header("Usage")
	formatter.Item("Provider", string(settings.Identity))
	formatter.Item("Model", cost.Model)
	formatter.Item("Entries", strconv.Itoa(entries))
	formatter.Item("Input tokens", strconv.Itoa(cost.InputTokens))
	formatter.Item("Output tokens", strconv.Itoa(cost.OutputTokens))
	formatter.Item("Input cost", fmt.Sprintf("$%.6f", cost.InputCost))
	formatter.Item("Output cost", fmt.Sprintf("$%.6f", cost.OutputCost))
	formatter.Item("Total cost", fmt.Sprintf("$%.6f", cost.TotalCost))
}
