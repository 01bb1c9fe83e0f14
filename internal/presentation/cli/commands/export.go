package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/parley/internal/presentation/cli/output"
)

// exportFlags holds the flags for the export command.
type exportFlags struct {
	OutFile string
}

var exportOpts exportFlags

// ExportResult holds the result of the export command for JSON output.
type ExportResult struct {
	ConversationID string `json:"conversation_id"`
	File           string `json:"file"`
	EntryCount     int    `json:"entry_count"`
}

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [conversation-id]",
		Short: "Export a saved conversation to a text file",
		Long: `Export a saved conversation's entries to a plain text file.

Without a conversation id, lists the saved conversations instead.

Examples:
  # List saved conversations
  parley export

  # Export a conversation to a file
  parley export 6e3f... --out transcript.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportOpts.OutFile, "out", "conversation.txt",
		"output file path")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application container not initialized")
	}

	store := container.ConversationRepository()

	// No id: list saved conversations
	if len(args) == 0 {
		summaries, err := store.ListConversations()
		if err != nil {
			return err
		}

		if formatter.Format() == output.FormatJSON {
			return formatter.JSON(summaries)
		}

		if len(summaries) == 0 {
			formatter.Info("No saved conversations. Use /save inside chat to save one.")
			return nil
		}

		rows := make([][]string, len(summaries))
		for i, s := range summaries {
			rows[i] = []string{s.ID, s.Title, strconv.Itoa(s.EntryCount)}
		}
		return formatter.Table(output.TableData{
			Columns: []output.TableColumn{
				{Header: "ID"},
				{Header: "TITLE"},
				{Header: "ENTRIES", Align: output.AlignRight},
			},
			Rows: rows,
		})
	}

	conv, err := store.LoadConversation(args[0])
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, entry := range conv.Entries {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", entry.Role, entry.Timestamp.Format("2006-01-02 15:04:05")))
		sb.WriteString(entry.Content)
		sb.WriteString("\n\n")
	}

	if err := os.WriteFile(exportOpts.OutFile, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("could not write export file: %w", err)
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(ExportResult{
			ConversationID: conv.ID,
			File:           exportOpts.OutFile,
			EntryCount:     len(conv.Entries),
		})
	}

	formatter.Success("Exported %d entries to %s", len(conv.Entries), exportOpts.OutFile)
	return nil
}
