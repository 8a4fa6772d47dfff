package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Load reads and parses the agent's OpenAPI v3 document from a local file.
// The document is read fresh on each call; nothing is cached between runs.
//
// The file may be YAML or JSON. Swagger v2 documents are rejected: the plugin
// registration payload must be OpenAPI 3.
func Load(input string) (*openapi3.T, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &Error{Code: IOFailure, Message: "schema: input path is empty"}
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &Error{Code: IOFailure, Message: fmt.Sprintf("schema: resolve path: %v", err), Location: input, Cause: err}
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &Error{Code: IOFailure, Message: fmt.Sprintf("schema: read file %s: %v", abs, err), Location: abs, Cause: err}
	}

	if err := checkVersion(raw); err != nil {
		if se, ok := err.(*Error); ok {
			se.Location = abs
		}
		return nil, err
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("schema: parse %s: %v", abs, err), Location: abs, Cause: err}
	}
	return doc, nil
}

// checkVersion requires an 'openapi: 3.x' marker before handing the bytes to
// the full loader, so version mismatches surface as a single clear error.
func checkVersion(data []byte) error {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return &Error{Code: ParseError, Message: fmt.Sprintf("schema: parse document: %v", err), Cause: err}
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return nil
		}
	}
	if _, ok := root["swagger"]; ok {
		return &Error{Code: ParseError, Message: "schema: Swagger 2.0 documents are not supported (expected 'openapi: 3.x')"}
	}
	return &Error{Code: ParseError, Message: "schema: missing or unknown version (expected 'openapi: 3.x')"}
}
