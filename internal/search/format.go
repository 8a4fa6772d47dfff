package search

import (
	"fmt"
	"regexp"
	"strings"
)

// Models sometimes hand tools a JSON fragment instead of a bare URL.
var jsonWrappedURL = regexp.MustCompile(`"url"\s*:\s*"([^"]+)"`)

// NormalizeURL unwraps accidentally JSON-wrapped tool arguments and defaults
// the scheme to https.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "{") && strings.Contains(u, `"url":`) {
		if m := jsonWrappedURL.FindStringSubmatch(u); m != nil {
			u = m[1]
		}
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return u
}

// FormatSearchResults renders ranked results as numbered title/url/content
// blocks for agent consumption.
func FormatSearchResults(resp *SearchResponse) string {
	if resp == nil || len(resp.Results) == 0 {
		return "No search results found."
	}
	var b strings.Builder
	for i, r := range resp.Results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(r.Title))
		fmt.Fprintf(&b, "URL: %s\n", r.URL)
		fmt.Fprintf(&b, "Content: %s\n\n", strings.TrimSpace(r.Content))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatExtractResults renders extracted pages, including any URLs that
// failed to be processed.
func FormatExtractResults(resp *ExtractResponse) string {
	if resp == nil || (len(resp.Results) == 0 && len(resp.FailedResults) == 0) {
		return "No content extracted."
	}
	var b strings.Builder
	for _, r := range resp.Results {
		fmt.Fprintf(&b, "URL: %s\n", r.URL)
		fmt.Fprintf(&b, "Content: %s\n", strings.TrimSpace(r.RawContent))
		if len(r.Images) > 0 {
			fmt.Fprintf(&b, "Images: %s\n", strings.Join(r.Images, ", "))
		}
		b.WriteString("\n")
	}
	for _, f := range resp.FailedResults {
		fmt.Fprintf(&b, "Failed: %s (%s)\n", f.URL, f.Error)
	}
	return strings.TrimRight(b.String(), "\n")
}

// crawlSnippetLen bounds per-page content in crawl output so a 20-page crawl
// stays within a single model turn.
const crawlSnippetLen = 500

// FormatCrawlResults renders crawled pages as url + content snippet lines.
func FormatCrawlResults(resp *CrawlResponse) string {
	if resp == nil || len(resp.Results) == 0 {
		return "No pages found."
	}
	var b strings.Builder
	for _, r := range resp.Results {
		snippet := strings.TrimSpace(r.RawContent)
		if len(snippet) > crawlSnippetLen {
			snippet = snippet[:crawlSnippetLen] + "..."
		}
		fmt.Fprintf(&b, "URL: %s\n", r.URL)
		fmt.Fprintf(&b, "Content: %s\n\n", snippet)
	}
	return strings.TrimRight(b.String(), "\n")
}
