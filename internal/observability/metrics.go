package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_verify_sessions_started_total",
		Help: "Verification sessions created.",
	})
	SessionsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_verify_sessions_cancelled_total",
		Help: "Verification sessions cancelled by their owner.",
	})
	VerifyAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_verify_attempts_total",
		Help: "Signature submissions by outcome.",
	}, []string{"outcome"})
)

// Verification submission outcomes.
const (
	OutcomeCompleted   = "completed"
	OutcomeSignature   = "signature_failed"
	OutcomeConflict    = "conflict"
	OutcomeExpired     = "expired"
	OutcomeNotFound    = "not_found"
	OutcomeLockHeld    = "lock_held"
	OutcomeUnsupported = "unsupported_chain"
	OutcomeError       = "error"
)

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
