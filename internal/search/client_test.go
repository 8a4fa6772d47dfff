package search_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstack/webagent/internal/search"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *search.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := search.NewClient("tvly-test", search.WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	t.Parallel()
	_, err := search.NewClient("  ")
	require.Error(t, err)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))
		var body search.SearchParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "go concurrency patterns", body.Query)
		assert.Equal(t, 5, body.MaxResults)
		_, _ = w.Write([]byte(`{"query": "go concurrency patterns", "results": [
			{"title": "Go Blog", "url": "https://go.dev/blog", "content": "Pipelines and cancellation", "score": 0.97}
		]}`))
	})

	resp, err := c.Search(context.Background(), search.SearchParams{Query: "go concurrency patterns", MaxResults: 5})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Go Blog", resp.Results[0].Title)
}

func TestSearch_CachesIdenticalQueries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"results": [{"title": "t", "url": "u", "content": "c"}]}`))
	})

	p := search.SearchParams{Query: "repeated", MaxResults: 5}
	_, err := c.Search(context.Background(), p)
	require.NoError(t, err)
	_, err = c.Search(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "identical queries must hit the cache")

	// A different parameter set is a different cache entry.
	p.MaxResults = 10
	_, err = c.Search(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_EmptyQuery(t *testing.T) {
	t.Parallel()
	c, err := search.NewClient("tvly-test")
	require.NoError(t, err)
	_, err = c.Search(context.Background(), search.SearchParams{Query: " "})
	require.Error(t, err)
}

func TestAnswer(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["include_answer"])
		_, _ = w.Write([]byte(`{"answer": "Go 1.0 was released in March 2012."}`))
	})

	answer, err := c.Answer(context.Background(), "when was go released")
	require.NoError(t, err)
	assert.Equal(t, "Go 1.0 was released in March 2012.", answer)
}

func TestExtract_NormalizesURLs(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/extract", r.URL.Path)
		var body search.ExtractParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"https://go.dev/doc", "https://example.com"}, body.URLs)
		assert.Equal(t, "basic", body.ExtractDepth)
		_, _ = w.Write([]byte(`{"results": [{"url": "https://go.dev/doc", "raw_content": "docs"}], "failed_results": []}`))
	})

	resp, err := c.Extract(context.Background(), search.ExtractParams{
		URLs: []string{`{"url": "https://go.dev/doc"}`, "example.com"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
}

func TestCrawl_Defaults(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/crawl", r.URL.Path)
		var body search.CrawlParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://go.dev", body.URL)
		assert.Equal(t, 2, body.MaxDepth)
		assert.Equal(t, 20, body.Limit)
		_, _ = w.Write([]byte(`{"base_url": "https://go.dev", "results": [{"url": "https://go.dev/blog", "raw_content": "posts"}]}`))
	})

	resp, err := c.Crawl(context.Background(), search.CrawlParams{URL: "go.dev"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	})

	_, err := c.Search(context.Background(), search.SearchParams{Query: "anything"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 401")
	assert.Contains(t, err.Error(), "invalid api key")
}
