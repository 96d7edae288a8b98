package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-wallet-verify/internal/application/verification"
	"github.com/go-wallet-verify/internal/domain"
	"github.com/go-wallet-verify/internal/pkg/id"
	"github.com/go-wallet-verify/internal/pkg/validate"
)

// Submitter is the slice of the orchestrator the public wallet-facing
// endpoints need.
type Submitter interface {
	Submit(ctx context.Context, sessionID, signature string) (string, domain.WalletType, error)
	Status(ctx context.Context, sessionID string) (verification.StatusView, error)
}

// VerificationHandler serves the public signature-submission endpoints.
type VerificationHandler struct {
	svc Submitter
}

func NewVerificationHandler(svc Submitter) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

// VerifyRequest is the POST /verify body.
type VerifyRequest struct {
	Signature      string `json:"signature" validate:"required"`
	VerificationID string `json:"verificationId" validate:"required,len=26"`
}

func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, VerifyEnvelope{Success: false, Error: "invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, VerifyEnvelope{Success: false, Error: "signature and verificationId are required"})
		return
	}

	address, walletType, err := h.svc.Submit(r.Context(), req.VerificationID, req.Signature)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("verify request failed", "verification_id", req.VerificationID, "err", err)
		}
		writeJSON(w, status, VerifyEnvelope{Success: false, Error: safeMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, VerifyEnvelope{
		Success:       true,
		WalletAddress: address,
		WalletType:    string(walletType),
		Message:       "wallet verified",
	})
}

// Status serves GET /status?verificationId=<id>. The view is recomputed from
// the store and the wall clock on every call; nothing is pushed.
func (h *VerificationHandler) Status(w http.ResponseWriter, r *http.Request) {
	verificationID := r.URL.Query().Get("verificationId")
	if verificationID == "" {
		writeError(w, http.StatusBadRequest, "verificationId is required")
		return
	}
	// A string that is not a canonical id can never name a session; reject it
	// here rather than letting the TTL check misread it as an expired one.
	if _, err := id.Timestamp(verificationID); err != nil {
		writeError(w, http.StatusBadRequest, "verificationId is malformed")
		return
	}

	view, err := h.svc.Status(r.Context(), verificationID)
	if err != nil {
		slog.Error("status lookup failed", "verification_id", verificationID, "err", err)
		writeError(w, http.StatusInternalServerError, safeMessage(err))
		return
	}

	env := StatusEnvelope{Status: view.Status}
	if view.Status == verification.StatusPending {
		env.WalletType = string(view.WalletType)
		env.ExpiresInMS = view.ExpiresIn.Milliseconds()
		env.CreatedAt = view.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	writeJSON(w, http.StatusOK, env)
}
