package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-wallet-verify/internal/domain"
)

// MessageEnvelope is the generic response wrapper for the management routes.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// VerifyEnvelope is the wire shape of POST /verify responses. Key casing is
// part of the contract consumed by the wallet-connect front-end.
type VerifyEnvelope struct {
	Success       bool   `json:"success"`
	WalletAddress string `json:"walletAddress,omitempty"`
	WalletType    string `json:"walletType,omitempty"`
	Error         string `json:"error,omitempty"`
	Message       string `json:"message,omitempty"`
}

// StatusEnvelope is the wire shape of GET /status responses.
type StatusEnvelope struct {
	Status      string `json:"status"`
	WalletType  string `json:"walletType,omitempty"`
	ExpiresInMS int64  `json:"expiresIn_ms,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// HealthEnvelope is the wire shape of GET /health responses.
type HealthEnvelope struct {
	Status        string                   `json:"status"`
	Timestamp     string                   `json:"timestamp"`
	Verifications domain.VerificationStats `json:"verifications"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// errorStatus maps a domain error to its fixed HTTP status. Persistence and
// internal failures collapse to 500; their detail never crosses the wire.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrSignature),
		errors.Is(err, domain.ErrUnsupportedChain):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// safeMessage returns a user-safe message for a domain error. Raw error text
// is reserved for the log.
func safeMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "invalid request"
	case errors.Is(err, domain.ErrSignature):
		return "signature verification failed"
	case errors.Is(err, domain.ErrUnsupportedChain):
		return "wallet type not supported"
	case errors.Is(err, domain.ErrNotFound):
		return "verification not found"
	case errors.Is(err, domain.ErrConflict):
		return "verification conflict"
	case errors.Is(err, domain.ErrExpired):
		return "verification expired"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	default:
		return "internal error"
	}
}
