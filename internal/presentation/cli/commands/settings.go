package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/presentation/cli/output"
)

// SettingsView is the JSON representation of the active provider settings.
// The credential itself is never printed, only whether one is set.
type SettingsView struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	BaseURL   string `json:"base_url"`
	HasAPIKey bool   `json:"has_api_key"`
}

// NewSettingsCmd creates the settings command group.
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage provider settings",
		Long: `Manage the active provider and its settings.

Each provider remembers its own API key, model, and base URL. Switching
providers banks the outgoing provider's settings and restores the
incoming provider's remembered settings.`,
	}

	cmd.AddCommand(newSettingsShowCmd())
	cmd.AddCommand(newSettingsProviderCmd())
	cmd.AddCommand(newSettingsKeyCmd())
	cmd.AddCommand(newSettingsModelCmd())
	cmd.AddCommand(newSettingsURLCmd())

	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active provider settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application container not initialized")
			}

			settings := container.SessionManager().Active()

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(SettingsView{
					Provider:  string(settings.Identity),
					Model:     settings.Model,
					BaseURL:   settings.BaseURL,
					HasAPIKey: settings.Credential != "",
				})
			}

			formatter.Header("Provider Settings")
			formatter.Item("Provider", string(settings.Identity))
			formatter.Item("Model", settings.Model)
			formatter.Item("Base URL", settings.BaseURL)
			if settings.Credential != "" {
				formatter.Item("API key", maskCredential(settings.Credential))
			} else {
				formatter.Item("API key", formatter.Dim("not set"))
			}
			return nil
		},
	}
}

func newSettingsProviderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provider <name>",
		Short: "Switch the active provider",
		Long: `Switch the active provider.

The outgoing provider's settings are remembered and restored on the
next switch back. Valid providers: ` + identityList() + `.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application container not initialized")
			}

			settings, err := container.SessionManager().SwitchProvider(provider.Identity(args[0]))
			if err != nil {
				return err
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(SettingsView{
					Provider:  string(settings.Identity),
					Model:     settings.Model,
					BaseURL:   settings.BaseURL,
					HasAPIKey: settings.Credential != "",
				})
			}

			formatter.Success("Switched to %s (model: %s)", settings.Identity, settings.Model)
			if settings.Credential == "" {
				formatter.Warning("No API key set for %s", settings.Identity)
			}
			return nil
		},
	}
}

func newSettingsKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <api-key>",
		Short: "Set the API key for the active provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application container not initialized")
			}

			sessions := container.SessionManager()
			if err := sessions.SetCredential(args[0]); err != nil {
				return err
			}

			formatter.Success("API key set for %s", sessions.ActiveIdentity())
			return nil
		},
	}
}

func newSettingsModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "model <name>",
		Short: "Set the model for the active provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application container not initialized")
			}

			sessions := container.SessionManager()
			if err := sessions.SetModel(args[0]); err != nil {
				return err
			}

			formatter.Success("Model set to %s for %s", args[0], sessions.ActiveIdentity())
			return nil
		},
	}
}

func newSettingsURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <base-url>",
		Short: "Set the base URL for the active provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()
			container := GetContainer()
			if container == nil {
				return fmt.Errorf("application container not initialized")
			}

			sessions := container.SessionManager()
			if err := sessions.SetBaseURL(args[0]); err != nil {
				return err
			}

			formatter.Success("Base URL set for %s", sessions.ActiveIdentity())
			return nil
		},
	}
}

// maskCredential hides all but the last four characters of a credential.
func maskCredential(credential string) string {
	if len(credential) <= 4 {
		return strings.Repeat("*", len(credential))
	}
	return strings.Repeat("*", len(credential)-4) + credential[len(credential)-4:]
}
