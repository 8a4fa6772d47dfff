// Package llm wraps the official genai client with the two call shapes the
// agent needs: plain one-shot generation and tool-calling conversations.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	genai "google.golang.org/genai"
)

// ErrNoContent means the model returned an empty candidate set.
var ErrNoContent = errors.New("llm: empty response from model")

// ToolCall is a function call requested by the model.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Reply is one model turn: any produced text plus any requested tool calls.
type Reply struct {
	Text  string
	Calls []ToolCall
}

// ToolResult pairs a tool call with the output the tool produced.
type ToolResult struct {
	Call   ToolCall
	Output string
}

// Gemini is a thin wrapper around the official genai client. The API key is
// read from the environment (GEMINI_API_KEY) by the client itself.
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini builds a client pinned to one model id.
func NewGemini(ctx context.Context, model string) (*Gemini, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("llm: build client: %w", err)
	}
	return &Gemini{cli: cli, model: model}, nil
}

// Model returns the pinned model id.
func (g *Gemini) Model() string { return g.model }

// Generate sends a single prompt under a system instruction and returns the
// model's text.
func (g *Gemini) Generate(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	resp, err := g.generate(ctx, []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: prompt}}},
	}, config)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// NewConversation starts a tool-calling conversation under the given system
// instruction, with decls advertised to the model.
func (g *Gemini) NewConversation(system string, decls []*genai.FunctionDeclaration) *Conversation {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if len(decls) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return &Conversation{g: g, config: config}
}

// Conversation accumulates turns of a tool-calling exchange.
type Conversation struct {
	g       *Gemini
	config  *genai.GenerateContentConfig
	history []*genai.Content
}

// SendText appends a user message and runs one model turn.
func (c *Conversation) SendText(ctx context.Context, text string) (*Reply, error) {
	c.history = append(c.history, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: text}},
	})
	return c.turn(ctx)
}

// SendToolResults feeds tool outputs back to the model and runs the next
// turn. All results from one reply are sent as a single message.
func (c *Conversation) SendToolResults(ctx context.Context, results []ToolResult) (*Reply, error) {
	parts := make([]*genai.Part, 0, len(results))
	for _, r := range results {
		parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
			Name:     r.Call.Name,
			Response: map[string]any{"result": r.Output},
		}})
	}
	c.history = append(c.history, &genai.Content{Role: genai.RoleUser, Parts: parts})
	return c.turn(ctx)
}

func (c *Conversation) turn(ctx context.Context) (*Reply, error) {
	resp, err := c.g.generate(ctx, c.history, c.config)
	if err != nil {
		return nil, err
	}
	content := resp.Candidates[0].Content
	c.history = append(c.history, content)

	reply := &Reply{Text: resp.Text()}
	for _, fc := range resp.FunctionCalls() {
		reply.Calls = append(reply.Calls, ToolCall{Name: fc.Name, Args: fc.Args})
	}
	return reply, nil
}

// generate calls the API with bounded retries for transient failures.
func (g *Gemini) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
			}
		}
		resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents, config)
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			lastErr = ErrNoContent
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}
