package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-wallet-verify/internal/domain"
)

// WalletLister is the slice of the orchestrator the wallet routes need.
type WalletLister interface {
	ListWallets(ctx context.Context, userID string) ([]domain.WalletBinding, error)
}

// WalletHandler serves durable wallet-binding lookups.
type WalletHandler struct {
	svc WalletLister
}

func NewWalletHandler(svc WalletLister) *WalletHandler { return &WalletHandler{svc: svc} }

// WalletsEnvelope wraps wallet list responses.
type WalletsEnvelope struct {
	Wallets []domain.WalletBinding `json:"wallets"`
	Error   string                 `json:"error,omitempty"`
}

func (h *WalletHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	wallets, err := h.svc.ListWallets(r.Context(), userID)
	if err != nil {
		slog.Error("list wallets failed", "user_id", userID, "err", err)
		writeJSON(w, errorStatus(err), WalletsEnvelope{Error: safeMessage(err)})
		return
	}
	if wallets == nil {
		wallets = []domain.WalletBinding{}
	}
	writeJSON(w, http.StatusOK, WalletsEnvelope{Wallets: wallets})
}
