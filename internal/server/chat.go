package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/skillscout/skillscout/models"
	"github.com/skillscout/skillscout/profiles"
)

// Pipeline is the orchestrator surface the chat handler needs: one call per
// (query, profile) turn, yielding text fragments until the turn is done.
type Pipeline interface {
	Run(ctx context.Context, query string, profile models.UserProfile) <-chan string
}

// ChatHandler exposes the research pipeline over HTTP.
type ChatHandler struct {
	Registry *profiles.Registry
	Pipeline Pipeline
	Logger   *log.Logger
}

func (h *ChatHandler) Register(e *echo.Echo) {
	e.GET("/system-health", h.health)
	e.POST("/chat", h.chat)
}

// health reports that the system is online.
func (h *ChatHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "System is online"})
}

type chatRequest struct {
	Query string `json:"query"`
	UID   string `json:"uid"`
}

// chat validates the request, resolves the caller's profile and streams the
// pipeline's output as it becomes available. Validation failures are
// synchronous JSON errors; they never reach the pipeline.
func (h *ChatHandler) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	query := strings.TrimSpace(req.Query)
	uid := strings.TrimSpace(req.UID)

	if query == "" {
		return c.JSON(http.StatusOK, map[string]string{"error": "Query cannot be empty."})
	}
	if uid == "" {
		return c.JSON(http.StatusOK, map[string]string{"error": "User ID cannot be empty."})
	}
	profile, err := h.Registry.Lookup(uid)
	if errors.Is(err, profiles.ErrNotFound) {
		return c.JSON(http.StatusOK, map[string]string{"error": "Invalid user ID."})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	reqID := uuid.NewString()[:8]
	h.Logger.Printf("[%s] chat start uid=%s", reqID, uid)

	ctx := c.Request().Context()
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	flusher, ok := resp.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "streaming unsupported")
	}

	for fragment := range h.Pipeline.Run(ctx, query, profile) {
		if _, err := resp.Write([]byte(fragment)); err != nil {
			h.Logger.Printf("[%s] write fragment for %s: %v", reqID, uid, err)
			return nil
		}
		flusher.Flush()
	}
	// Stream closure is the end-of-stream signal; no sentinel value.
	h.Logger.Printf("[%s] chat done uid=%s", reqID, uid)
	return nil
}
