package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentstack/webagent/internal/config"
	"github.com/agentstack/webagent/internal/schema"
)

// defaultSchemaInput is where the deployment checkout keeps the agent's raw
// OpenAPI document.
const defaultSchemaInput = "schema/openapi.yaml"

// SchemaConfig captures all inputs that influence the schema command after
// merging defaults, config file values, and CLI overrides.
type SchemaConfig struct {
	Input            string
	Out              string
	ServerURL        string
	AuthorizationURL string
	TokenURL         string
	ScopeName        string
	ConfigPath       string
	Verbose          bool
}

func defaultSchemaConfig() SchemaConfig {
	return SchemaConfig{Input: defaultSchemaInput}
}

var schemaRunner = runSchema

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Finalize the agent's OpenAPI schema for plugin registration",
		Long: "Finalize the agent's OpenAPI schema: point it at the deployed service endpoint, " +
			"inject the OAuth2 security scheme, and stamp every operation with the plugin scope. " +
			"The result is written next to the input with a .configured suffix.",
		Example: strings.TrimSpace(`  agentctl schema --server-url https://agent.example.com --config deploy.yaml
  agentctl schema --input schema/openapi.yaml --server-url https://agent.example.com \
    --authorization-url https://auth.example.com/authorize --token-url https://auth.example.com/token \
    --scope websearch.read`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSchemaConfig(cmd)
			if err != nil {
				return err
			}
			return schemaRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path to the raw OpenAPI document (defaults to "+defaultSchemaInput+")")
	flags.String("out", "", "Output path (derived from the input when omitted)")
	flags.String("server-url", "", "Deployed service endpoint injected as the schema's single server")
	flags.String("authorization-url", "", "OAuth2 authorization URL (overrides the config file)")
	flags.String("token-url", "", "OAuth2 token URL (overrides the config file)")
	flags.String("scope", "", "OAuth2 scope stamped on every operation (overrides the config file)")

	return cmd
}

func resolveSchemaConfig(cmd *cobra.Command) (*SchemaConfig, error) {
	cfg := defaultSchemaConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		d, err := config.LoadDeployment(configPath)
		if err != nil {
			return nil, newUsageError(fmt.Sprintf("schema: %v", err))
		}
		cfg.AuthorizationURL = d.Plugin.AuthorizationURL
		cfg.TokenURL = d.Plugin.TokenURL
		cfg.ScopeName = d.Plugin.ScopeName
	}

	if err := applySchemaFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applySchemaFlagOverrides(flags *pflag.FlagSet, cfg *SchemaConfig) error {
	for flag, dst := range map[string]*string{
		"input":             &cfg.Input,
		"out":               &cfg.Out,
		"server-url":        &cfg.ServerURL,
		"authorization-url": &cfg.AuthorizationURL,
		"token-url":         &cfg.TokenURL,
		"scope":             &cfg.ScopeName,
	} {
		if !flags.Changed(flag) {
			continue
		}
		value, err := flags.GetString(flag)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}
	return nil
}

func (c *SchemaConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.ServerURL = strings.TrimSpace(c.ServerURL)
	c.AuthorizationURL = strings.TrimSpace(c.AuthorizationURL)
	c.TokenURL = strings.TrimSpace(c.TokenURL)
	c.ScopeName = strings.TrimSpace(c.ScopeName)
	if c.Input == "" {
		c.Input = defaultSchemaInput
	}
}

func (c *SchemaConfig) validate() error {
	if c.ServerURL == "" {
		return newUsageError("schema: --server-url is required (the endpoint created by infrastructure provisioning)")
	}
	if c.AuthorizationURL == "" || c.TokenURL == "" || c.ScopeName == "" {
		return newUsageError("schema: authorization URL, token URL, and scope are required (set via --config or flags)")
	}
	return nil
}

func runSchema(ctx context.Context, cfg *SchemaConfig) error {
	_ = ctx

	settings := schema.Settings{
		ServerURL:        cfg.ServerURL,
		AuthorizationURL: cfg.AuthorizationURL,
		TokenURL:         cfg.TokenURL,
		ScopeName:        cfg.ScopeName,
	}

	out := cfg.Out
	if out == "" {
		out = schema.OutputPath(cfg.Input)
	}

	doc, err := schema.Load(cfg.Input)
	if err != nil {
		return wrapSchemaError(err)
	}
	if err := schema.Configure(doc, settings); err != nil {
		return wrapSchemaError(err)
	}
	if err := schema.Write(doc, out); err != nil {
		return wrapSchemaError(err)
	}

	if cfg.Verbose {
		fmt.Fprintf(os.Stdout, "Configured schema for %s (scope %s)\n", cfg.ServerURL, cfg.ScopeName)
	}
	fmt.Fprintf(os.Stdout, "Wrote finalized schema to %s\n", out)
	return nil
}

// wrapSchemaError maps structured schema errors into friendly messages.
func wrapSchemaError(err error) error {
	var se *schema.Error
	if errors.As(err, &se) {
		msg := fmt.Sprintf("[%s] %s", se.Code, se.Message)
		if se.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
		}
		return newUsageError(msg)
	}
	return err
}
