package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// OutputPath derives the finalized document's path from the input path: a
// sibling file with a ".configured" suffix before the extension, e.g.
// schema/openapi.yaml -> schema/openapi.configured.yaml.
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if ext == "" {
		ext = ".yaml"
	}
	return base + ".configured" + ext
}

// Write serializes doc and writes it to path. JSON targets get indented
// JSON; everything else gets YAML. Serialization is deterministic (map keys
// sorted), so identical documents produce byte-identical files.
//
// The write is atomic (temp file + rename) so a failed run never leaves a
// truncated document behind.
func Write(doc *openapi3.T, path string) error {
	data, err := marshal(doc, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return &Error{Code: IOFailure, Message: fmt.Sprintf("schema: resolve output path: %v", err), Location: path, Cause: err}
	}
	tmp := abs + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &Error{Code: IOFailure, Message: fmt.Sprintf("schema: write %s: %v", abs, err), Location: abs, Cause: err}
	}
	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return &Error{Code: IOFailure, Message: fmt.Sprintf("schema: place %s: %v", abs, err), Location: abs, Cause: err}
	}
	return nil
}

func marshal(doc *openapi3.T, asJSON bool) ([]byte, error) {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("schema: serialize document: %v", err), Cause: err}
	}
	if asJSON {
		var buf json.RawMessage = raw
		out, err := json.MarshalIndent(buf, "", "  ")
		if err != nil {
			return nil, &Error{Code: ParseError, Message: fmt.Sprintf("schema: indent document: %v", err), Cause: err}
		}
		return append(out, '\n'), nil
	}
	// YAML output: round-trip through a generic tree. yaml.v3 emits map keys
	// in sorted order, which keeps repeated runs byte-identical.
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("schema: reshape document: %v", err), Cause: err}
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, &Error{Code: ParseError, Message: fmt.Sprintf("schema: serialize document: %v", err), Cause: err}
	}
	return out, nil
}

// Finalize runs the whole deployment step: load the raw document, apply the
// transformation, and write the result next to the input. It returns the
// output path. Nothing is written when any step fails.
func Finalize(input string, s Settings) (string, error) {
	doc, err := Load(input)
	if err != nil {
		return "", err
	}
	if err := Configure(doc, s); err != nil {
		return "", err
	}
	out := OutputPath(input)
	if err := Write(doc, out); err != nil {
		return "", err
	}
	return out, nil
}
