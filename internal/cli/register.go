package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstack/webagent/internal/config"
	"github.com/agentstack/webagent/internal/plugin"
)

// RegisterConfig captures the inputs of the register command.
type RegisterConfig struct {
	ConfigPath string
	SchemaPath string
	// Endpoint overrides the config file's registrationEndpoint.
	Endpoint string
	Verbose  bool
}

var registerRunner = runRegister

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the finalized schema as a chat platform plugin",
		Long: "Register the finalized schema with the chat platform: submits the application id, " +
			"display name, auth type, and schema payload to the plugin-registration API.",
		Example: strings.TrimSpace(`  agentctl register --config deploy.yaml --schema schema/openapi.configured.yaml`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &RegisterConfig{}
			var err error
			if cfg.ConfigPath, err = cmd.Flags().GetString("config"); err != nil {
				return err
			}
			if cfg.SchemaPath, err = cmd.Flags().GetString("schema"); err != nil {
				return err
			}
			if cfg.Endpoint, err = cmd.Flags().GetString("endpoint"); err != nil {
				return err
			}
			if cfg.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
				return err
			}
			cfg.ConfigPath = strings.TrimSpace(cfg.ConfigPath)
			cfg.SchemaPath = strings.TrimSpace(cfg.SchemaPath)
			cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
			if cfg.ConfigPath == "" {
				return newUsageError("register: --config is required")
			}
			if cfg.SchemaPath == "" {
				return newUsageError("register: --schema is required (run 'agentctl schema' first)")
			}
			return registerRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("schema", "", "Path to the finalized schema written by 'agentctl schema'")
	flags.String("endpoint", "", "Plugin-registration endpoint (overrides the config file)")

	return cmd
}

func runRegister(ctx context.Context, cfg *RegisterConfig) error {
	d, err := config.LoadDeployment(cfg.ConfigPath)
	if err != nil {
		return newUsageError(fmt.Sprintf("register: %v", err))
	}

	payload, err := os.ReadFile(cfg.SchemaPath)
	if err != nil {
		return newUsageError(fmt.Sprintf("register: read schema %q: %v\nHint: run 'agentctl schema' first.", cfg.SchemaPath, err))
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = d.Plugin.RegistrationEndpoint
	}

	client := plugin.NewClient(endpoint)
	id, err := client.Register(ctx, plugin.Registration{
		ApplicationID: d.Plugin.ApplicationID,
		DisplayName:   d.Plugin.DisplayName,
		AuthType:      plugin.AuthTypeOAuth2,
		SchemaPayload: string(payload),
	})
	if err != nil {
		return err
	}

	if cfg.Verbose {
		fmt.Fprintf(os.Stdout, "Submitted %d schema bytes to %s\n", len(payload), endpoint)
	}
	fmt.Fprintf(os.Stdout, "Registered plugin %s for application %s\n", id, d.Plugin.ApplicationID)
	return nil
}
