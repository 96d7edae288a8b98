package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-wallet-verify/internal/domain"
	"github.com/go-wallet-verify/internal/pkg/validate"
)

// SessionManager is the slice of the orchestrator the management routes need.
type SessionManager interface {
	StartSession(ctx context.Context, userID, username string, walletType domain.WalletType) (*domain.VerificationSession, error)
	AttachOrigin(ctx context.Context, sessionID string, ref domain.OriginRef) error
	CancelSession(ctx context.Context, sessionID, requesterID string) (domain.CancelStatus, error)
}

// SessionHandler serves the front-end session-management endpoints.
type SessionHandler struct {
	svc SessionManager
}

func NewSessionHandler(svc SessionManager) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// CreateSessionRequest is the POST /v1/sessions body.
type CreateSessionRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	Username   string `json:"username" validate:"required"`
	WalletType string `json:"wallet_type" validate:"required,wallet_type"`
}

// SessionEnvelope wraps session-management responses.
type SessionEnvelope struct {
	Session *domain.VerificationSession `json:"session,omitempty"`
	Status  string                      `json:"status,omitempty"`
	Error   string                      `json:"error,omitempty"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.svc.StartSession(r.Context(), req.UserID, req.Username, domain.WalletType(req.WalletType))
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("start session failed", "user_id", req.UserID, "err", err)
		}
		writeJSON(w, status, SessionEnvelope{Error: safeMessage(err)})
		return
	}
	writeJSON(w, http.StatusCreated, SessionEnvelope{Session: sess})
}

// AttachOriginRequest is the PUT /v1/sessions/{id}/origin body.
type AttachOriginRequest struct {
	MessageID string `json:"message_id" validate:"required"`
	ChannelID string `json:"channel_id" validate:"required"`
}

func (h *SessionHandler) AttachOrigin(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req AttachOriginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.svc.AttachOrigin(r.Context(), sessionID, domain.OriginRef{
		MessageID: req.MessageID,
		ChannelID: req.ChannelID,
	})
	if err != nil {
		writeJSON(w, errorStatus(err), SessionEnvelope{Error: safeMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "origin attached"})
}

// Cancel deletes a session on behalf of its owner. The owning user id comes
// from the user_id query parameter; the caller is the trusted front-end.
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	requesterID := r.URL.Query().Get("user_id")
	if requesterID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	status, err := h.svc.CancelSession(r.Context(), sessionID, requesterID)
	if err != nil {
		writeJSON(w, errorStatus(err), SessionEnvelope{Error: safeMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{Status: string(status)})
}
