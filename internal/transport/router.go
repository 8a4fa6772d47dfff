// Package transport exposes the agent over HTTP: health probes for the load
// balancer and the streaming search endpoints the plugin schema describes.
package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Runner runs a prompt and streams response chunks. Satisfied by agent.Agent.
type Runner interface {
	Stream(ctx context.Context, prompt string, emit func(chunk string) error) error
}

// NewRouter wires the HTTP surface: simple handles /simple-search and deep
// handles /deep-search.
func NewRouter(simple, deep Runner) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	r.GET("/", healthCheck)
	r.GET("/health", healthCheck)
	r.GET("/simple-search", streamSearch(simple))
	r.GET("/deep-search", streamSearch(deep))

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// streamSearch runs the agent and streams its output as chunked text/plain.
func streamSearch(a Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		prompt := strings.TrimSpace(c.Query("prompt"))
		if prompt == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no prompt provided"})
			return
		}

		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Header("Cache-Control", "no-cache")
		// Disable proxy buffering so chunks reach the client as they are
		// produced.
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)

		err := a.Stream(c.Request.Context(), prompt, func(chunk string) error {
			if _, err := c.Writer.WriteString(chunk); err != nil {
				return err
			}
			c.Writer.Flush()
			return nil
		})
		if err != nil {
			// The status line is already on the wire; surface the failure in
			// the stream the way the client already reads it.
			slog.Error("agent run failed",
				"path", c.Request.URL.Path,
				"request_id", c.GetString("request_id"),
				"error", err,
			)
			_, _ = c.Writer.WriteString("\nError during streaming: " + err.Error())
		}
	}
}
