package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validDeployYAML = `plugin:
  applicationId: app-1234
  displayName: Web Search Agent
  authorizationUrl: https://auth.example.com/oauth2/authorize
  tokenUrl: https://auth.example.com/oauth2/token
  scopeName: websearch.read
  registrationEndpoint: https://platform.example.com/v1/plugins
`

func writeDeploy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deploy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadDeployment(t *testing.T) {
	t.Parallel()
	d, err := LoadDeployment(writeDeploy(t, validDeployYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Plugin.ApplicationID != "app-1234" {
		t.Errorf("applicationId mismatch: %q", d.Plugin.ApplicationID)
	}
	if d.Plugin.ScopeName != "websearch.read" {
		t.Errorf("scopeName mismatch: %q", d.Plugin.ScopeName)
	}
}

func TestLoadDeployment_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadDeployment(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadDeployment_MissingValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
	}{
		{"empty file", "plugin: {}\n"},
		{"missing scope", `plugin:
  applicationId: app-1234
  displayName: Web Search Agent
  authorizationUrl: https://auth.example.com/oauth2/authorize
  tokenUrl: https://auth.example.com/oauth2/token
  registrationEndpoint: https://platform.example.com/v1/plugins
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadDeployment(writeDeploy(t, tc.content))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadService_RequiresTavilyKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	t.Setenv("PORT", "")
	_, err := LoadService()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadService_Defaults(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_MODEL", "")
	s, err := LoadService()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Port != "8000" {
		t.Errorf("port default mismatch: %q", s.Port)
	}
	if s.GeminiModel == "" {
		t.Errorf("expected a default model id")
	}
}
