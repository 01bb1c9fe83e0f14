package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/parley/internal/domain/prompt"
	"github.com/jbctechsolutions/parley/internal/presentation/cli/output"
)

// PromptView is the JSON representation of a prompt.
type PromptView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Content    string `json:"content,omitempty"`
	Tokens     int    `json:"tokens"`
	IsTemplate bool   `json:"is_template"`
}

// NewPromptsCmd creates the prompts command group.
func NewPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage saved prompts",
		Long: `Manage saved prompts and templates.

Prompts containing the ` + prompt.PlaceholderToken + ` placeholder are
templates: rendering them substitutes your input for every occurrence
of the placeholder. The built-in System Prompt is sent at the start of
every conversation and can be edited but not deleted.`,
	}

	cmd.AddCommand(newPromptsListCmd())
	cmd.AddCommand(newPromptsAddCmd())
	cmd.AddCommand(newPromptsShowCmd())
	cmd.AddCommand(newPromptsEditCmd())
	cmd.AddCommand(newPromptsDeleteCmd())

	return cmd
}

func newPromptsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application container not initialized")
			}

			list, err := container.PromptService().List()
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				views := make([]PromptView, len(list))
				for i, p := range list {
					views[i] = PromptView{
						ID:         p.ID,
						Name:       p.Name,
						Tokens:     p.Tokens,
						IsTemplate: p.IsTemplate,
					}
				}
				return formatter.JSON(views)
			}

			printPromptTable(formatter, list)
			return nil
		},
	}
}

func newPromptsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <content>",
		Short: "Create a new prompt",
		Long: `Create a new prompt with the given name and content.

Include ` + prompt.PlaceholderToken + ` in the content to make the
prompt a template.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application container not initialized")
			}

			p, err := container.PromptService().Create(args[0], args[1])
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(PromptView{
					ID: p.ID, Name: p.Name, Content: p.Content,
					Tokens: p.Tokens, IsTemplate: p.IsTemplate,
				})
			}

			formatter.Success("Prompt created")
			formatter.Item("ID", p.ID)
			formatter.Item("Name", p.Name)
			formatter.Item("Tokens", strconv.Itoa(p.Tokens))
			formatter.Item("Template", strconv.FormatBool(p.IsTemplate))
			return nil
		},
	}
}

func newPromptsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a prompt's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application container not initialized")
			}

			p, err := container.PromptService().Get(args[0])
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(PromptView{
					ID: p.ID, Name: p.Name, Content: p.Content,
					Tokens: p.Tokens, IsTemplate: p.IsTemplate,
				})
			}

			formatter.Header(p.Name)
			formatter.Item("ID", p.ID)
			formatter.Item("Tokens", strconv.Itoa(p.Tokens))
			formatter.Item("Template", strconv.FormatBool(p.IsTemplate))
			formatter.Println("")
			formatter.Println("%s", p.Content)
			return nil
		},
	}
}

func newPromptsEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <name> <content>",
		Short: "Edit a prompt",
		Long: `Replace a prompt's name and content.

Token count and template status are recomputed from the new content.
The System Prompt can be edited like any other prompt.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application container not initialized")
			}

			p, err := container.PromptService().Update(args[0], args[1], args[2])
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(PromptView{
					ID: p.ID, Name: p.Name, Content: p.Content,
					Tokens: p.Tokens, IsTemplate: p.IsTemplate,
				})
			}

			formatter.Success("Prompt updated")
			formatter.Item("Tokens", strconv.Itoa(p.Tokens))
			formatter.Item("Template", strconv.FormatBool(p.IsTemplate))
			return nil
		},
	}
}

func newPromptsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prompt",
		Long:  `Delete a prompt. The System Prompt cannot be deleted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application container not initialized")
			}

			if err := container.PromptService().Delete(args[0]); err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(map[string]any{"deleted": args[0]})
			}

			formatter.Success("Prompt deleted")
			return nil
		},
	}
}

// printPromptTable renders prompts as a text table.
func printPromptTable(formatter *output.Formatter, list []*prompt.Prompt) {
	if len(list) == 0 {
		formatter.Info("No prompts saved")
		return
	}

	rows := make([][]string, len(list))
	for i, p := range list {
		template := ""
		if p.IsTemplate {
			template = "yes"
		}
		rows[i] = []string{p.ID, p.Name, strconv.Itoa(p.Tokens), template}
	}

	formatter.Table(output.TableData{
		Columns: []output.TableColumn{
			{Header: "ID"},
			{Header: "NAME"},
			{Header: "TOKENS", Align: output.AlignRight},
			{Header: "TEMPLATE"},
		},
		Rows: rows,
	})
}
