// Package schema finalizes the agent's OpenAPI document for plugin
// registration: it points the document at the deployed service endpoint and
// stamps every operation with the deployment's OAuth2 scope.
package schema

import (
	"fmt"
	"net/url"
	"strings"
)

// ErrorCode categorizes schema errors for clearer handling and messaging.
type ErrorCode string

const (
	// MalformedDocument means the input lacks required substructure
	// (components or paths).
	MalformedDocument ErrorCode = "MalformedDocument"
	// InvalidConfiguration means a required deployment value (URL, scope)
	// is missing or malformed.
	InvalidConfiguration ErrorCode = "InvalidConfiguration"
	// IOFailure means the input could not be read or the output could not
	// be written.
	IOFailure ErrorCode = "IOFailure"
	// ParseError means the input bytes are not a parseable OpenAPI document.
	ParseError ErrorCode = "ParseError"
)

// Error is a structured error with an optional file location.
type Error struct {
	Code     ErrorCode
	Message  string
	Location string // file path
	Cause    error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Cause }

// serverDescription labels the single server entry injected into the
// finalized document.
const serverDescription = "ALB for Web Search Agent"

// scopeDescription documents the injected OAuth2 scope.
const scopeDescription = "Grants access to the web search agent API"

// securitySchemeName is the key under components.securitySchemes that every
// operation's security requirement references.
const securitySchemeName = "oauth2"

// Settings carries the deployment values injected into the document. All
// values are resolved by the caller before the transformation begins; there
// is no ambient configuration lookup.
type Settings struct {
	// ServerURL is the deployed service endpoint (the ALB's TLS endpoint),
	// computed by infrastructure provisioning.
	ServerURL string
	// AuthorizationURL and TokenURL describe the OAuth2 authorization-code
	// flow of the chat platform's identity provider.
	AuthorizationURL string
	TokenURL         string
	// ScopeName is the single scope every operation requires.
	ScopeName string
}

// Validate reports the first missing or malformed setting.
func (s Settings) Validate() error {
	if err := requireAbsoluteURL("server URL", s.ServerURL); err != nil {
		return err
	}
	if err := requireAbsoluteURL("authorization URL", s.AuthorizationURL); err != nil {
		return err
	}
	if err := requireAbsoluteURL("token URL", s.TokenURL); err != nil {
		return err
	}
	if strings.TrimSpace(s.ScopeName) == "" {
		return &Error{Code: InvalidConfiguration, Message: "schema: scope name is empty"}
	}
	return nil
}

func requireAbsoluteURL(name, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return &Error{Code: InvalidConfiguration, Message: fmt.Sprintf("schema: %s is empty", name)}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &Error{Code: InvalidConfiguration, Message: fmt.Sprintf("schema: %s %q is not an absolute URL", name, raw), Cause: err}
	}
	return nil
}
