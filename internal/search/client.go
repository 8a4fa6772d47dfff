// Package search is a client for the hosted web search API backing the
// agent's tools: ranked context search, direct answers, page extraction,
// and site crawling.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultBaseURL is the hosted search API endpoint.
const DefaultBaseURL = "https://api.tavily.com"

// defaultCacheSize bounds the in-process context cache. Identical queries
// within a process reuse the previous response instead of spending API quota.
const defaultCacheSize = 128

// Settings configures client behavior.
type Settings struct {
	BaseURL     string
	HTTPTimeout time.Duration
	CacheSize   int
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		BaseURL:     DefaultBaseURL,
		HTTPTimeout: 30 * time.Second,
		CacheSize:   defaultCacheSize,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithBaseURL(u string) Option { return func(s *Settings) { s.BaseURL = u } }
func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithCacheSize(n int) Option { return func(s *Settings) { s.CacheSize = n } }

// Client calls the search API.
type Client struct {
	apiKey   string
	settings Settings
	http     *http.Client
	cache    *lru.Cache[string, *SearchResponse]
}

// NewClient builds a search client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("search: api key is empty")
	}
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.CacheSize <= 0 {
		settings.CacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, *SearchResponse](settings.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("search: build cache: %w", err)
	}
	return &Client{
		apiKey:   apiKey,
		settings: settings,
		http:     &http.Client{Timeout: settings.HTTPTimeout},
		cache:    cache,
	}, nil
}

// SearchParams shapes a ranked context search.
type SearchParams struct {
	Query string `json:"query"`
	// MaxResults caps the number of ranked results. 5 suits simple queries,
	// 10 suits complex ones.
	MaxResults int `json:"max_results,omitempty"`
	// TimeRange limits results to a publication window: d, w, m, or y.
	TimeRange string `json:"time_range,omitempty"`
	// IncludeDomains restricts results to these domains.
	IncludeDomains []string `json:"include_domains,omitempty"`
}

// Result is one ranked search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchResponse is the ranked result set, optionally with a direct answer.
type SearchResponse struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer"`
	Results []Result `json:"results"`
}

// Search runs a ranked context search. Responses for identical parameters
// are served from the in-process cache.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResponse, error) {
	if strings.TrimSpace(p.Query) == "" {
		return nil, fmt.Errorf("search: query is empty")
	}
	key := cacheKey(p)
	if resp, ok := c.cache.Get(key); ok {
		return resp, nil
	}
	var resp SearchResponse
	if err := c.post(ctx, "/search", p, &resp); err != nil {
		return nil, err
	}
	c.cache.Add(key, &resp)
	return &resp, nil
}

// Answer runs a QnA search and returns a direct answer string that can be
// consumed as-is.
func (c *Client) Answer(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("search: query is empty")
	}
	body := struct {
		Query         string `json:"query"`
		IncludeAnswer bool   `json:"include_answer"`
	}{Query: query, IncludeAnswer: true}
	var resp SearchResponse
	if err := c.post(ctx, "/search", body, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// ExtractParams shapes a page extraction request.
type ExtractParams struct {
	URLs          []string `json:"urls"`
	IncludeImages bool     `json:"include_images,omitempty"`
	// ExtractDepth is "basic" or "advanced".
	ExtractDepth string `json:"extract_depth,omitempty"`
}

// ExtractResult is the extracted content for one URL.
type ExtractResult struct {
	URL        string   `json:"url"`
	RawContent string   `json:"raw_content"`
	Images     []string `json:"images"`
}

// FailedResult records a URL that could not be processed.
type FailedResult struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// ExtractResponse is the extraction outcome across all requested URLs.
type ExtractResponse struct {
	Results       []ExtractResult `json:"results"`
	FailedResults []FailedResult  `json:"failed_results"`
}

// Extract pulls page content from one or more URLs.
func (c *Client) Extract(ctx context.Context, p ExtractParams) (*ExtractResponse, error) {
	if len(p.URLs) == 0 {
		return nil, fmt.Errorf("search: no urls to extract")
	}
	cleaned := make([]string, 0, len(p.URLs))
	for _, u := range p.URLs {
		cleaned = append(cleaned, NormalizeURL(u))
	}
	p.URLs = cleaned
	if p.ExtractDepth == "" {
		p.ExtractDepth = "basic"
	}
	var resp ExtractResponse
	if err := c.post(ctx, "/extract", p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CrawlParams shapes a site crawl rooted at URL.
type CrawlParams struct {
	URL string `json:"url"`
	// MaxDepth defines how far from the base URL the crawler may explore.
	MaxDepth int `json:"max_depth,omitempty"`
	// Limit caps the number of returned pages.
	Limit int `json:"limit,omitempty"`
	// Instructions guide the crawler toward or away from content.
	Instructions string `json:"instructions,omitempty"`
}

// CrawlResult is one crawled page.
type CrawlResult struct {
	URL        string `json:"url"`
	RawContent string `json:"raw_content"`
}

// CrawlResponse is the set of pages found under the base URL.
type CrawlResponse struct {
	BaseURL string        `json:"base_url"`
	Results []CrawlResult `json:"results"`
}

// Crawl walks nested links from a single page.
func (c *Client) Crawl(ctx context.Context, p CrawlParams) (*CrawlResponse, error) {
	p.URL = NormalizeURL(p.URL)
	if p.URL == "" {
		return nil, fmt.Errorf("search: crawl url is empty")
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 2
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	var resp CrawlResponse
	if err := c.post(ctx, "/crawl", p, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("search: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.settings.BaseURL, "/")+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("search: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("search: %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("search: %s: http %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("search: decode %s response: %w", path, err)
	}
	return nil
}

func cacheKey(p SearchParams) string {
	return fmt.Sprintf("%s|%d|%s|%s", p.Query, p.MaxResults, p.TimeRange, strings.Join(p.IncludeDomains, ","))
}
