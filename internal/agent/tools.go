package agent

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"github.com/agentstack/webagent/internal/search"
)

// Tool pairs a function declaration advertised to the model with the Go
// function that runs it.
type Tool struct {
	Decl *genai.FunctionDeclaration
	Run  func(ctx context.Context, args map[string]any) (string, error)
}

func webSearchTool(sc *search.Client) Tool {
	return Tool{
		Decl: &genai.FunctionDeclaration{
			Name: "web_search",
			Description: "Perform a web search. Returns results ranked by relevance, " +
				"each with title, url, and content.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query":       {Type: genai.TypeString, Description: "The search query."},
					"max_results": {Type: genai.TypeInteger, Description: "Maximum results to return. 5 for simple queries, 10 for complex ones."},
					"time_range":  {Type: genai.TypeString, Description: "Limit results to a publication window: d, w, m, or y."},
					"include_domains": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeString},
						Description: "Restrict results to these domains.",
					},
				},
				Required: []string{"query"},
			},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			p := search.SearchParams{
				Query:          argString(args, "query"),
				MaxResults:     argInt(args, "max_results", 5),
				TimeRange:      argString(args, "time_range"),
				IncludeDomains: argStrings(args, "include_domains"),
			}
			resp, err := sc.Search(ctx, p)
			if err != nil {
				return "", err
			}
			return search.FormatSearchResults(resp), nil
		},
	}
}

func webAnswerTool(sc *search.Client) Tool {
	return Tool{
		Decl: &genai.FunctionDeclaration{
			Name: "web_answer",
			Description: "Answer the user's question using web search. The result can be " +
				"consumed directly as the answer.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {Type: genai.TypeString, Description: "The question to answer."},
				},
				Required: []string{"query"},
			},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			return sc.Answer(ctx, argString(args, "query"))
		},
	}
}

func webExtractTool(sc *search.Client) Tool {
	return Tool{
		Decl: &genai.FunctionDeclaration{
			Name:        "web_extract",
			Description: "Extract the full content of one or more web pages.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"urls": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeString},
						Description: "URLs to extract content from.",
					},
					"include_images": {Type: genai.TypeBoolean, Description: "Also extract image URLs."},
					"extract_depth":  {Type: genai.TypeString, Description: "basic or advanced."},
				},
				Required: []string{"urls"},
			},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			resp, err := sc.Extract(ctx, search.ExtractParams{
				URLs:          argStrings(args, "urls"),
				IncludeImages: argBool(args, "include_images"),
				ExtractDepth:  argString(args, "extract_depth"),
			})
			if err != nil {
				return "", err
			}
			return search.FormatExtractResults(resp), nil
		},
	}
}

func webCrawlTool(sc *search.Client) Tool {
	return Tool{
		Decl: &genai.FunctionDeclaration{
			Name: "web_crawl",
			Description: "Crawl a URL and its nested links. Good for collecting everything " +
				"a specific page links to.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"url":          {Type: genai.TypeString, Description: "The URL to crawl."},
					"instructions": {Type: genai.TypeString, Description: "Optional guidance for the crawler."},
				},
				Required: []string{"url"},
			},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			resp, err := sc.Crawl(ctx, search.CrawlParams{
				URL:          argString(args, "url"),
				Instructions: argString(args, "instructions"),
			})
			if err != nil {
				return "", err
			}
			return search.FormatCrawlResults(resp), nil
		},
	}
}

func formatResearchTool(model Model) Tool {
	return Tool{
		Decl: &genai.FunctionDeclaration{
			Name: "format_research_response",
			Description: "Format research content into a well-structured, properly cited " +
				"markdown response addressing the user's query.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"research_content": {Type: genai.TypeString, Description: "The raw research content to format."},
					"format_style":     {Type: genai.TypeString, Description: "Desired style, e.g. report, blog, bullet points, direct answer."},
					"user_query":       {Type: genai.TypeString, Description: "The original user question."},
				},
				Required: []string{"research_content"},
			},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			var b strings.Builder
			fmt.Fprintf(&b, "Research Content:\n%s\n\n", argString(args, "research_content"))
			if style := argString(args, "format_style"); style != "" {
				fmt.Fprintf(&b, "Requested Format Style: %s\n\n", style)
			}
			if query := argString(args, "user_query"); query != "" {
				fmt.Fprintf(&b, "Original User Query: %s\n\n", query)
			}
			b.WriteString("Format this research content with appropriate structure and citations.")
			return model.Generate(ctx, researchFormatterPrompt, b.String())
		},
	}
}

// Argument decoding helpers. Models are loose with JSON types: integers
// arrive as float64 and single values where arrays are declared.

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func argInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func argStrings(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	}
	return nil
}
