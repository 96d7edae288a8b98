package verification

import (
	"context"
	"log/slog"

	"github.com/go-wallet-verify/internal/domain"
)

// NopNotifier discards outcome events. Used when no notification transport is
// configured.
type NopNotifier struct{}

func (NopNotifier) OnCompleted(context.Context, *domain.VerificationSession, string) {}
func (NopNotifier) OnFailed(context.Context, *domain.VerificationSession, string)    {}

// LogNotifier writes outcome events to the structured log. It is the fallback
// notifier when the event topic is not configured.
type LogNotifier struct{}

func (LogNotifier) OnCompleted(_ context.Context, sess *domain.VerificationSession, address string) {
	slog.Info("verification completed",
		"id", sess.ID, "user_id", sess.UserID, "wallet_type", sess.WalletType, "address", address)
}

func (LogNotifier) OnFailed(_ context.Context, sess *domain.VerificationSession, reason string) {
	slog.Warn("verification failed",
		"id", sess.ID, "user_id", sess.UserID, "wallet_type", sess.WalletType, "reason", reason)
}
