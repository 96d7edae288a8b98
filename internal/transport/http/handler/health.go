package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-wallet-verify/internal/domain"
)

// HealthHandler reports service liveness plus ephemeral-store counts.
type HealthHandler struct {
	svc StatsProvider
}

// StatsProvider is the slice of the orchestrator the health endpoint needs.
type StatsProvider interface {
	Stats(ctx context.Context) (domain.VerificationStats, error)
}

func NewHealthHandler(svc StatsProvider) *HealthHandler { return &HealthHandler{svc: svc} }

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		// The listener is still alive; report it, with zeroed counts.
		writeJSON(w, http.StatusOK, HealthEnvelope{
			Status:    "degraded",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, HealthEnvelope{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Verifications: stats,
	})
}
