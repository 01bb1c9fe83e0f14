package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/parley/internal/infrastructure/config"
	"github.com/jbctechsolutions/parley/internal/presentation/cli/output"
)

// InitResult holds the result of the init command for JSON output.
type InitResult struct {
	ConfigDir   string `json:"config_dir"`
	ConfigFile  string `json:"config_file"`
	Initialized bool   `json:"initialized"`
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize parley configuration",
		Long: `Initialize parley configuration interactively.

This command creates the ~/.parley/ directory and generates a
config.yaml file with your provider settings.

The initialization process will:
  • Create ~/.parley/ directory
  • Generate ~/.parley/config.yaml with provider configurations
  • Prompt for optional provider API keys`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing configuration")

	return cmd
}

// prompter handles interactive user input.
type prompter struct {
	reader    *bufio.Reader
	formatter *output.Formatter
}

func newPrompter(formatter *output.Formatter) *prompter {
	return &prompter{
		reader:    bufio.NewReader(os.Stdin),
		formatter: formatter,
	}
}

// prompt asks a question and returns the answer (or default if empty).
func (p *prompter) prompt(question, defaultValue string) (string, error) {
	if defaultValue != "" {
		p.formatter.Print("%s [%s]: ", question, defaultValue)
	} else {
		p.formatter.Print("%s: ", question)
	}

	answer, err := p.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

// promptYesNo asks a yes/no question and returns true for yes.
func (p *prompter) promptYesNo(question string, defaultYes bool) (bool, error) {
	defaultStr := "[y/N]"
	if defaultYes {
		defaultStr = "[Y/n]"
	}

	p.formatter.Print("%s %s: ", question, defaultStr)

	answer, err := p.reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return defaultYes, nil
	}

	return answer == "y" || answer == "yes", nil
}

func runInit(force bool) error {
	format := output.FormatText
	if globalFlags.Output == "json" {
		format = output.FormatJSON
	}

	formatter := output.NewFormatter(
		output.WithFormat(format),
		output.WithColor(format != output.FormatJSON),
	)

	loader, err := config.NewLoader("")
	if err != nil {
		return fmt.Errorf("could not create config loader: %w", err)
	}

	configDir := loader.ConfigDir()
	configFile := loader.DefaultConfigPath()

	// Check if already initialized
	if _, err := os.Stat(configFile); err == nil && !force {
		if format == output.FormatJSON {
			return formatter.JSON(InitResult{
				ConfigDir:   configDir,
				ConfigFile:  configFile,
				Initialized: false,
			})
		}
		formatter.Warning("Configuration already exists at %s", configFile)
		formatter.Info("Use --force to overwrite existing configuration")
		return nil
	}

	// For JSON output, skip interactive prompts and use defaults
	if format == output.FormatJSON {
		cfg := config.NewDefaultConfig()
		if err := loader.Save(cfg, configFile); err != nil {
			return err
		}
		return formatter.JSON(InitResult{
			ConfigDir:   configDir,
			ConfigFile:  configFile,
			Initialized: true,
		})
	}

	// Interactive setup
	formatter.Header("Parley Configuration")
	formatter.Println("")
	formatter.Info("This wizard will help you set up parley.")
	formatter.Println("")

	p := newPrompter(formatter)

	cfg := config.NewDefaultConfig()

	formatter.SubHeader("Providers (Optional)")
	formatter.Println("")
	formatter.Println("%s", formatter.Dim("API keys are stored in config.yaml with owner-only permissions"))
	formatter.Println("")

	providers := []struct {
		label string
		dest  *config.ProviderConfig
	}{
		{"OpenAI", &cfg.Providers.OpenAI},
		{"Gemini", &cfg.Providers.Gemini},
		{"Anthropic", &cfg.Providers.Anthropic},
	}

	for _, pc := range providers {
		configure, err := p.promptYesNo(fmt.Sprintf("Configure %s", pc.label), false)
		if err != nil {
			return err
		}
		if !configure {
			continue
		}

		apiKey, err := p.prompt(fmt.Sprintf("%s API key", pc.label), "")
		if err != nil {
			return err
		}
		pc.dest.APIKey = apiKey

		model, err := p.prompt(fmt.Sprintf("%s model (empty for default)", pc.label), "")
		if err != nil {
			return err
		}
		pc.dest.Model = model
	}

	configureCustom, err := p.promptYesNo("Configure a custom OpenAI-compatible endpoint", false)
	if err != nil {
		return err
	}
	if configureCustom {
		baseURL, err := p.prompt("Custom endpoint base URL", "")
		if err != nil {
			return err
		}
		cfg.Providers.Custom.BaseURL = baseURL

		apiKey, err := p.prompt("Custom endpoint API key", "")
		if err != nil {
			return err
		}
		cfg.Providers.Custom.APIKey = apiKey

		model, err := p.prompt("Custom endpoint model", "")
		if err != nil {
			return err
		}
		cfg.Providers.Custom.Model = model
	}

	formatter.Println("")

	if err := loader.Save(cfg, configFile); err != nil {
		return err
	}

	formatter.Println("")
	formatter.Success("Configuration initialized successfully!")
	formatter.Println("")
	formatter.Item("Config directory", configDir)
	formatter.Item("Config file", configFile)
	formatter.Println("")
	formatter.Info("Run 'parley chat' to start a conversation")
	formatter.Info("Run 'parley settings show' to review provider settings")

	return nil
}
