package report

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/asterix-health/opsboard/internal/platform/httpx"
)

// Handler exposes the PDF backend health under /report.
type Handler struct {
	client *Client
	logger *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, logger *slog.Logger) *Handler {
	return &Handler{client: client, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
}

type pingResponse struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: pdf renderer", httpx.ErrUnavailable))
		return
	}
	httpx.JSON(w, http.StatusOK, pingResponse{Status: "ok", LatencyMS: time.Since(started).Milliseconds()})
}
