// Package agent orchestrates the web search tools behind a tool-calling
// model loop and streams the resulting text.
package agent

import (
	"context"
	"fmt"

	genai "google.golang.org/genai"

	"github.com/agentstack/webagent/internal/llm"
	"github.com/agentstack/webagent/internal/search"
)

// maxToolTurns bounds the tool-calling loop so a confused model cannot spin
// against the search API indefinitely.
const maxToolTurns = 8

// Conversation is one tool-calling exchange with a model.
type Conversation interface {
	SendText(ctx context.Context, text string) (*llm.Reply, error)
	SendToolResults(ctx context.Context, results []llm.ToolResult) (*llm.Reply, error)
}

// Model starts conversations and runs one-shot generations.
type Model interface {
	NewConversation(system string, decls []*genai.FunctionDeclaration) Conversation
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// WrapGemini adapts the concrete llm client to the Model interface.
func WrapGemini(g *llm.Gemini) Model { return geminiModel{g} }

type geminiModel struct{ g *llm.Gemini }

func (m geminiModel) NewConversation(system string, decls []*genai.FunctionDeclaration) Conversation {
	return m.g.NewConversation(system, decls)
}

func (m geminiModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	return m.g.Generate(ctx, system, prompt)
}

// Agent runs prompts through a model with a fixed tool set.
type Agent struct {
	model  Model
	system string
	tools  map[string]Tool
	decls  []*genai.FunctionDeclaration
}

// New builds an agent from a system prompt and tool set.
func New(model Model, system string, tools []Tool) *Agent {
	a := &Agent{
		model:  model,
		system: system,
		tools:  make(map[string]Tool, len(tools)),
	}
	for _, t := range tools {
		a.tools[t.Decl.Name] = t
		a.decls = append(a.decls, t.Decl)
	}
	return a
}

// NewDeepResearch builds the multi-tool research agent.
func NewDeepResearch(model Model, sc *search.Client) *Agent {
	return New(model, deepResearchPrompt, []Tool{
		webSearchTool(sc),
		webCrawlTool(sc),
		webExtractTool(sc),
		formatResearchTool(model),
	})
}

// NewSimpleSearch builds the lightweight single-pass search agent.
func NewSimpleSearch(model Model, sc *search.Client) *Agent {
	return New(model, simpleSearchPrompt, []Tool{
		webSearchTool(sc),
		webAnswerTool(sc),
	})
}

// Stream runs the agent loop for prompt, calling emit for each text chunk
// and tool progress line as it becomes available. It returns when the model
// produces a turn with no further tool calls.
func (a *Agent) Stream(ctx context.Context, prompt string, emit func(chunk string) error) error {
	conv := a.model.NewConversation(a.system, a.decls)

	reply, err := conv.SendText(ctx, prompt)
	for turn := 0; ; turn++ {
		if err != nil {
			return err
		}
		if reply.Text != "" {
			if err := emit(reply.Text); err != nil {
				return err
			}
		}
		if len(reply.Calls) == 0 {
			return nil
		}
		if turn >= maxToolTurns {
			return fmt.Errorf("agent: tool budget exhausted after %d turns", maxToolTurns)
		}

		results := make([]llm.ToolResult, 0, len(reply.Calls))
		for _, call := range reply.Calls {
			if err := emit(fmt.Sprintf("\n[Using tool: %s]\n", call.Name)); err != nil {
				return err
			}
			results = append(results, llm.ToolResult{Call: call, Output: a.run(ctx, call)})
		}
		reply, err = conv.SendToolResults(ctx, results)
	}
}

// run executes one tool call. Failures are surfaced to the model as tool
// output rather than aborting the run, so it can recover or rephrase.
func (a *Agent) run(ctx context.Context, call llm.ToolCall) string {
	t, ok := a.tools[call.Name]
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q", call.Name)
	}
	out, err := t.Run(ctx, call.Args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return out
}
