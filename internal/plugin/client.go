// Package plugin submits the finalized schema to the chat platform's
// plugin-registration API.
package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AuthTypeOAuth2 is the only auth type the web search agent registers with.
const AuthTypeOAuth2 = "OAUTH2"

// Registration is the payload accepted by the plugin-registration call. This
// repository shapes SchemaPayload; the rest comes from deployment config.
type Registration struct {
	ApplicationID string `json:"applicationId"`
	DisplayName   string `json:"displayName"`
	AuthType      string `json:"authType"`
	SchemaPayload string `json:"schemaPayload"`
}

// Settings configures client behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 15 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }

// Client talks to the platform's plugin-registration endpoint.
type Client struct {
	endpoint string
	settings Settings
	http     *http.Client
}

// NewClient builds a client for the given registration endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	return &Client{
		endpoint: endpoint,
		settings: settings,
		http:     &http.Client{Timeout: settings.HTTPTimeout},
	}
}

// Register submits the registration and returns the platform-assigned plugin
// id. Transient failures are retried with exponential backoff; terminal HTTP
// errors surface the response body.
func (c *Client) Register(ctx context.Context, reg Registration) (string, error) {
	if strings.TrimSpace(reg.SchemaPayload) == "" {
		return "", errors.New("plugin: schema payload is empty")
	}
	body, err := json.Marshal(reg)
	if err != nil {
		return "", fmt.Errorf("plugin: encode registration: %w", err)
	}

	var lastErr error
	backoff := c.settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := c.settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("plugin: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err == nil && resp.StatusCode < 300 {
			defer resp.Body.Close()
			return decodePluginID(resp.Body)
		}
		if err != nil {
			lastErr = err
		} else {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			if resp.StatusCode >= 500 || resp.StatusCode == 429 {
				lastErr = fmt.Errorf("plugin: transient http error %d", resp.StatusCode)
			} else {
				return "", fmt.Errorf("plugin: registration rejected: http %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("plugin: registration failed")
	}
	return "", lastErr
}

func decodePluginID(r io.Reader) (string, error) {
	var out struct {
		PluginID string `json:"pluginId"`
	}
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return "", fmt.Errorf("plugin: decode response: %w", err)
	}
	if out.PluginID == "" {
		return "", errors.New("plugin: response carries no pluginId")
	}
	return out.PluginID, nil
}
