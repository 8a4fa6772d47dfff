// Package config loads the deployment configuration consumed by agentctl and
// the environment configuration consumed by the agent service. Both are read
// once, synchronously, at start-up and passed down as explicit values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks a missing or malformed configuration value.
var ErrInvalid = errors.New("invalid configuration")

// Deployment is the deployment tool's configuration file.
type Deployment struct {
	Plugin Plugin `yaml:"plugin"`
}

// Plugin configures the chat platform plugin registration.
type Plugin struct {
	// ApplicationID identifies the chat platform application the plugin is
	// registered under.
	ApplicationID string `yaml:"applicationId"`
	// DisplayName is the plugin name shown to end users.
	DisplayName string `yaml:"displayName"`
	// AuthorizationURL and TokenURL describe the OAuth2 authorization-code
	// flow injected into the schema.
	AuthorizationURL string `yaml:"authorizationUrl"`
	TokenURL         string `yaml:"tokenUrl"`
	// ScopeName is the single OAuth2 scope every operation requires.
	ScopeName string `yaml:"scopeName"`
	// RegistrationEndpoint is the platform's plugin-registration API.
	RegistrationEndpoint string `yaml:"registrationEndpoint"`
}

// LoadDeployment reads and validates the deployment configuration file.
func LoadDeployment(path string) (*Deployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var d Deployment
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate reports the first missing plugin value.
func (d *Deployment) Validate() error {
	p := d.Plugin
	for _, f := range []struct{ name, value string }{
		{"plugin.applicationId", p.ApplicationID},
		{"plugin.displayName", p.DisplayName},
		{"plugin.authorizationUrl", p.AuthorizationURL},
		{"plugin.tokenUrl", p.TokenURL},
		{"plugin.scopeName", p.ScopeName},
		{"plugin.registrationEndpoint", p.RegistrationEndpoint},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalid, f.name)
		}
	}
	return nil
}

// Service is the agent server's environment configuration.
type Service struct {
	// Port the HTTP server listens on.
	Port string
	// TavilyAPIKey authenticates calls to the hosted search API.
	TavilyAPIKey string
	// TavilyBaseURL overrides the search API endpoint, mainly for tests.
	TavilyBaseURL string
	// GeminiModel is the model id used for agent runs.
	GeminiModel string
}

// LoadService reads the service configuration from the environment. A .env
// file in the working directory is honored when present.
func LoadService() (*Service, error) {
	_ = godotenv.Load()

	s := &Service{
		Port:          os.Getenv("PORT"),
		TavilyAPIKey:  os.Getenv("TAVILY_API_KEY"),
		TavilyBaseURL: os.Getenv("TAVILY_BASE_URL"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
	}
	if s.Port == "" {
		s.Port = "8000"
	}
	if s.GeminiModel == "" {
		s.GeminiModel = "gemini-2.5-flash"
	}
	if strings.TrimSpace(s.TavilyAPIKey) == "" {
		return nil, fmt.Errorf("%w: TAVILY_API_KEY environment variable is not set", ErrInvalid)
	}
	return s, nil
}
