package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const rawSchemaYAML = `openapi: 3.0.0
info:
  title: Web Search Agent
  version: "1.0.0"
components: {}
paths:
  /simple-search:
    get:
      summary: Simple search
      parameters:
        - name: prompt
          in: query
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
  /deep-search:
    get:
      summary: Deep search
      responses:
        "200":
          description: ok
`

func TestSchemaPipeline_WritesConfiguredSibling(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "openapi.yaml", rawSchemaYAML)

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"schema",
		"--input", input,
		"--server-url", "https://agent.example.com",
		"--authorization-url", "https://auth.example.com/oauth2/authorize",
		"--token-url", "https://auth.example.com/oauth2/token",
		"--scope", "websearch.read",
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	out := filepath.Join(dir, "openapi.configured.yaml")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse output: %v", err)
	}

	servers, ok := doc["servers"].([]any)
	if !ok || len(servers) != 1 {
		t.Fatalf("expected exactly one server, got %v", doc["servers"])
	}
	server := servers[0].(map[string]any)
	if server["url"] != "https://agent.example.com" {
		t.Errorf("server url mismatch: got %v", server["url"])
	}
	if server["description"] != "ALB for Web Search Agent" {
		t.Errorf("server description mismatch: got %v", server["description"])
	}

	// Every operation carries the injected requirement.
	paths := doc["paths"].(map[string]any)
	for _, p := range []string{"/simple-search", "/deep-search"} {
		op := paths[p].(map[string]any)["get"].(map[string]any)
		sec, ok := op["security"].([]any)
		if !ok || len(sec) != 1 {
			t.Fatalf("%s: expected one security requirement, got %v", p, op["security"])
		}
		scopes := sec[0].(map[string]any)["oauth2"].([]any)
		if len(scopes) != 1 || scopes[0] != "websearch.read" {
			t.Errorf("%s: scope mismatch: got %v", p, scopes)
		}
	}
}

func TestSchemaPipeline_ExplicitOut(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "openapi.yaml", rawSchemaYAML)
	out := filepath.Join(dir, "final.yaml")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"schema",
		"--input", input,
		"--out", out,
		"--server-url", "https://agent.example.com",
		"--authorization-url", "https://auth.example.com/oauth2/authorize",
		"--token-url", "https://auth.example.com/oauth2/token",
		"--scope", "websearch.read",
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected output at --out path: %v", err)
	}
}

func TestSchemaPipeline_MalformedDocument(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "openapi.yaml", strings.Replace(rawSchemaYAML, "components: {}\n", "", 1))

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"schema",
		"--input", input,
		"--server-url", "https://agent.example.com",
		"--authorization-url", "https://auth.example.com/oauth2/authorize",
		"--token-url", "https://auth.example.com/oauth2/token",
		"--scope", "websearch.read",
	})

	err := root.Execute()
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "MalformedDocument") {
		t.Errorf("expected MalformedDocument in message, got %q", err.Error())
	}
	if _, serr := os.Stat(filepath.Join(dir, "openapi.configured.yaml")); !os.IsNotExist(serr) {
		t.Errorf("no output should be written for a malformed input")
	}
}

func TestSchemaPipeline_MissingInput(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{
		"schema",
		"--input", filepath.Join(t.TempDir(), "nope.yaml"),
		"--server-url", "https://agent.example.com",
		"--authorization-url", "https://auth.example.com/oauth2/authorize",
		"--token-url", "https://auth.example.com/oauth2/token",
		"--scope", "websearch.read",
	})

	err := root.Execute()
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "IOFailure") {
		t.Errorf("expected IOFailure in message, got %q", err.Error())
	}
}
