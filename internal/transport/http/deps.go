package http

import (
	"context"

	"github.com/go-wallet-verify/internal/application/verification"
	"github.com/go-wallet-verify/internal/domain"
)

// VerificationService is the orchestrator surface the router requires.
type VerificationService interface {
	StartSession(ctx context.Context, userID, username string, walletType domain.WalletType) (*domain.VerificationSession, error)
	AttachOrigin(ctx context.Context, sessionID string, ref domain.OriginRef) error
	Submit(ctx context.Context, sessionID, signature string) (string, domain.WalletType, error)
	CancelSession(ctx context.Context, sessionID, requesterID string) (domain.CancelStatus, error)
	Status(ctx context.Context, sessionID string) (verification.StatusView, error)
	Stats(ctx context.Context) (domain.VerificationStats, error)
	ListWallets(ctx context.Context, userID string) ([]domain.WalletBinding, error)
}
