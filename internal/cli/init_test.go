package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentstack/webagent/internal/config"
)

func runInitCmd(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"init"}, args...))
	return root.Execute()
}

func TestInit_WritesSample(t *testing.T) {
	out := filepath.Join(t.TempDir(), "deploy.yaml")
	if err := runInitCmd(t, "--out", out); err != nil {
		t.Fatalf("execute: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	for _, want := range []string{"plugin:", "applicationId:", "scopeName:", "registrationEndpoint:"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("sample missing %q", want)
		}
	}

	// The sample must load through the real config loader.
	if _, err := config.LoadDeployment(out); err != nil {
		t.Errorf("sample config does not load: %v", err)
	}
}

func TestInit_RefusesOverwrite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "deploy.yaml")
	if err := os.WriteFile(out, []byte("existing"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	err := runInitCmd(t, "--out", out)
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestInit_ForceOverwrites(t *testing.T) {
	out := filepath.Join(t.TempDir(), "deploy.yaml")
	if err := os.WriteFile(out, []byte("existing"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := runInitCmd(t, "--out", out, "--force"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "plugin:") {
		t.Errorf("expected sample content after --force")
	}
}
