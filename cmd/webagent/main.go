package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentstack/webagent/internal/agent"
	"github.com/agentstack/webagent/internal/config"
	"github.com/agentstack/webagent/internal/llm"
	"github.com/agentstack/webagent/internal/search"
	"github.com/agentstack/webagent/internal/transport"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadService()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	searchOpts := []search.Option{}
	if cfg.TavilyBaseURL != "" {
		searchOpts = append(searchOpts, search.WithBaseURL(cfg.TavilyBaseURL))
	}
	searchClient, err := search.NewClient(cfg.TavilyAPIKey, searchOpts...)
	if err != nil {
		slog.Error("failed to build search client", "error", err)
		os.Exit(1)
	}

	gemini, err := llm.NewGemini(ctx, cfg.GeminiModel)
	if err != nil {
		slog.Error("failed to build model client", "error", err)
		os.Exit(1)
	}
	model := agent.WrapGemini(gemini)

	simple := agent.NewSimpleSearch(model, searchClient)
	deep := agent.NewDeepResearch(model, searchClient)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: transport.NewRouter(simple, deep),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("web search agent listening", "addr", server.Addr, "model", cfg.GeminiModel)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("web search agent stopped")
}
