package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-wallet-verify/internal/domain"
	"github.com/go-wallet-verify/internal/infrastructure/chains"
	"github.com/go-wallet-verify/internal/observability"
	"github.com/go-wallet-verify/internal/pkg/id"
)

// Store is the ephemeral session store the orchestrator coordinates through.
// It is the sole carrier of cross-request state between the interactive
// process and the HTTP listener.
type Store interface {
	Set(ctx context.Context, sess *domain.VerificationSession) error
	Get(ctx context.Context, id string) (*domain.VerificationSession, error)
	GetByUser(ctx context.Context, userID string) (*domain.VerificationSession, error)
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (domain.VerificationStats, error)
}

// Locker brackets critical sections with conditional-create locks.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// ChainVerifier recovers and format-checks a wallet address for a claimed chain.
type ChainVerifier interface {
	Verify(walletType domain.WalletType, challenge, signature string) (string, error)
}

// BindingRepo is the durable wallet-binding storage the orchestrator writes
// into exactly once per completed session.
type BindingRepo interface {
	Upsert(ctx context.Context, b *domain.WalletBinding) error
	ListByUser(ctx context.Context, userID string) ([]domain.WalletBinding, error)
}

// Notifier consumes terminal session outcomes. Invoked synchronously, at most
// once per terminal transition.
type Notifier interface {
	OnCompleted(ctx context.Context, sess *domain.VerificationSession, address string)
	OnFailed(ctx context.Context, sess *domain.VerificationSession, reason string)
}

// StatusView is the poll-based status projection of a session.
type StatusView struct {
	Status     string
	WalletType domain.WalletType
	ExpiresIn  time.Duration
	CreatedAt  time.Time
}

// Session status strings exposed by the status endpoint.
const (
	StatusPending  = "pending"
	StatusExpired  = "expired"
	StatusNotFound = "not_found"
)

// Options tune session lifecycle behavior.
type Options struct {
	// SessionTTL bounds a session's life. Defaults to domain.SessionTTL.
	SessionTTL time.Duration
	// LockTTL bounds the completion critical section as a crash-safety net.
	LockTTL time.Duration
	// DeleteOnFailedSignature makes a failed signature check terminal.
	// When false (the default) the session stays alive and the wallet may
	// resubmit until the TTL elapses or the owner cancels.
	DeleteOnFailedSignature bool
}

func (o Options) withDefaults() Options {
	if o.SessionTTL <= 0 {
		o.SessionTTL = domain.SessionTTL
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 30 * time.Second
	}
	return o
}

// Service owns the verification session state machine:
// PENDING -> COMPLETED | CANCELLED | EXPIRED, with a PENDING self-loop on a
// failed signature attempt. All transitions except the self-loop are terminal.
type Service struct {
	store    Store
	locker   Locker
	chains   ChainVerifier
	bindings BindingRepo
	notifier Notifier
	opts     Options
}

// ServiceDeps wires the orchestrator's collaborators.
type ServiceDeps struct {
	Store    Store
	Locker   Locker
	Chains   ChainVerifier
	Bindings BindingRepo
	Notifier Notifier
	Options  Options
}

func NewService(deps ServiceDeps) *Service {
	if deps.Notifier == nil {
		deps.Notifier = NopNotifier{}
	}
	return &Service{
		store:    deps.Store,
		locker:   deps.Locker,
		chains:   deps.Chains,
		bindings: deps.Bindings,
		notifier: deps.Notifier,
		opts:     deps.Options.withDefaults(),
	}
}

// StartSession creates a new verification session for a user, rejecting with
// domain.ErrConflict when a live one already exists. The check-then-create
// sequence runs under a per-user conditional-create lock so two concurrent
// starts cannot both pass the liveness check.
func (s *Service) StartSession(ctx context.Context, userID, username string, walletType domain.WalletType) (*domain.VerificationSession, error) {
	if !walletType.Valid() {
		return nil, fmt.Errorf("wallet type %q: %w", walletType, domain.ErrValidation)
	}

	lockKey := "user:" + userID
	tok, ok, err := s.locker.Acquire(ctx, lockKey, s.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", domain.ErrPersistence)
	}
	if !ok {
		return nil, fmt.Errorf("a session start for user %s is already in progress: %w", userID, domain.ErrConflict)
	}
	defer func() {
		if err := s.locker.Release(ctx, lockKey, tok); err != nil {
			slog.Warn("failed to release start lock", "user_id", userID, "err", err)
		}
	}()

	if live, err := s.store.GetByUser(ctx, userID); err == nil && live != nil {
		return nil, fmt.Errorf("user %s already has a pending %s verification: %w", userID, live.WalletType, domain.ErrConflict)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrExpired) {
		return nil, err
	}

	sessionID := id.New()
	createdAt, err := id.Timestamp(sessionID)
	if err != nil {
		return nil, fmt.Errorf("mint session id: %w", domain.ErrInternal)
	}
	sess := &domain.VerificationSession{
		ID:         sessionID,
		UserID:     userID,
		Username:   username,
		WalletType: walletType,
		CreatedAt:  createdAt,
		ExpiresAt:  createdAt.Add(s.opts.SessionTTL),
	}
	if err := s.store.Set(ctx, sess); err != nil {
		return nil, err
	}

	observability.SessionsStarted.Inc()
	slog.Info("created verification session",
		"id", sess.ID, "user_id", userID, "wallet_type", walletType)
	return sess, nil
}

// AttachOrigin records the UI message a session was started from. The session
// is re-stored as a full overwrite, never a partial field update.
func (s *Service) AttachOrigin(ctx context.Context, sessionID string, ref domain.OriginRef) error {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.Origin = &ref
	return s.store.Set(ctx, sess)
}

// Submit is the signature-submission entry point: it prechecks the TTL
// embedded in the id, brackets CompleteSession with the per-session lock and
// always releases it.
func (s *Service) Submit(ctx context.Context, sessionID, signature string) (string, domain.WalletType, error) {
	if id.Expired(sessionID, s.opts.SessionTTL) {
		observability.VerifyAttempts.WithLabelValues(observability.OutcomeExpired).Inc()
		return "", "", fmt.Errorf("verification session expired: %w", domain.ErrExpired)
	}

	lockKey := "verification:" + sessionID
	tok, ok, err := s.locker.Acquire(ctx, lockKey, s.opts.LockTTL)
	if err != nil {
		observability.VerifyAttempts.WithLabelValues(observability.OutcomeError).Inc()
		return "", "", fmt.Errorf("submit: %w", domain.ErrPersistence)
	}
	if !ok {
		observability.VerifyAttempts.WithLabelValues(observability.OutcomeLockHeld).Inc()
		return "", "", fmt.Errorf("verification is already being processed: %w", domain.ErrConflict)
	}
	defer func() {
		if err := s.locker.Release(ctx, lockKey, tok); err != nil {
			slog.Warn("failed to release verification lock", "id", sessionID, "err", err)
		}
	}()

	return s.CompleteSession(ctx, sessionID, signature)
}

// CompleteSession verifies the signature against the session's challenge (the
// id string itself, acting as a single-use nonce), persists the binding and
// deletes the session. Must be called only while holding the lock for the id.
func (s *Service) CompleteSession(ctx context.Context, sessionID, signature string) (string, domain.WalletType, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrExpired) {
			observability.VerifyAttempts.WithLabelValues(observability.OutcomeExpired).Inc()
		} else {
			observability.VerifyAttempts.WithLabelValues(observability.OutcomeNotFound).Inc()
		}
		return "", "", err
	}

	address, err := s.chains.Verify(sess.WalletType, sess.ID, signature)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedChain) {
			observability.VerifyAttempts.WithLabelValues(observability.OutcomeUnsupported).Inc()
			return "", "", err
		}
		observability.VerifyAttempts.WithLabelValues(observability.OutcomeSignature).Inc()
		return "", "", s.failSignature(ctx, sess, err)
	}

	// The verifier already format-checked the recovered address; recheck here
	// so a future verifier cannot hand an off-chain address to the repository.
	if !chains.ValidAddress(address, sess.WalletType) {
		observability.VerifyAttempts.WithLabelValues(observability.OutcomeSignature).Inc()
		return "", "", s.failSignature(ctx, sess,
			fmt.Errorf("recovered address %q does not match chain %s: %w", address, sess.WalletType, domain.ErrSignature))
	}

	binding := &domain.WalletBinding{
		Address:    address,
		UserID:     sess.UserID,
		ChainType:  sess.WalletType,
		VerifiedAt: time.Now().Unix(),
	}
	if err := s.bindings.Upsert(ctx, binding); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// The session survives a conflict: the user may retry with a
			// different wallet within the remaining TTL.
			observability.VerifyAttempts.WithLabelValues(observability.OutcomeConflict).Inc()
			return "", "", err
		}
		observability.VerifyAttempts.WithLabelValues(observability.OutcomeError).Inc()
		slog.Error("failed to persist wallet binding", "id", sess.ID, "err", err)
		return "", "", fmt.Errorf("save wallet binding: %w", domain.ErrPersistence)
	}

	// Completion deletes the record; a concurrent submission that slips past
	// the lock later fails its existence check here.
	if _, err := s.store.Delete(ctx, sess.ID); err != nil {
		slog.Warn("failed to delete completed session", "id", sess.ID, "err", err)
	}

	s.notifier.OnCompleted(ctx, sess, address)
	observability.VerifyAttempts.WithLabelValues(observability.OutcomeCompleted).Inc()
	slog.Info("wallet verified",
		"id", sess.ID, "user_id", sess.UserID, "wallet_type", sess.WalletType, "address", address)
	return address, sess.WalletType, nil
}

// failSignature applies the failed-attempt policy: by default the session is
// kept for resubmission; with DeleteOnFailedSignature the failure is terminal
// and the notifier fires.
func (s *Service) failSignature(ctx context.Context, sess *domain.VerificationSession, cause error) error {
	if !s.opts.DeleteOnFailedSignature {
		return cause
	}
	if _, err := s.store.Delete(ctx, sess.ID); err != nil {
		slog.Warn("failed to delete session after signature failure", "id", sess.ID, "err", err)
	}
	s.notifier.OnFailed(ctx, sess, "signature verification failed")
	return cause
}

// CancelSession deletes a session at its owner's request. A session that is
// already gone — completed, expired or previously cancelled — reports
// already_completed rather than an error, covering the race against a
// concurrent completion.
func (s *Service) CancelSession(ctx context.Context, sessionID, requesterID string) (domain.CancelStatus, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrExpired) {
			return domain.CancelStatusAlreadyCompleted, nil
		}
		return "", err
	}
	if sess.UserID != requesterID {
		return "", fmt.Errorf("session %s does not belong to requester: %w", sessionID, domain.ErrForbidden)
	}
	if _, err := s.store.Delete(ctx, sessionID); err != nil {
		return "", err
	}
	observability.SessionsCancelled.Inc()
	slog.Info("cancelled verification session", "id", sessionID, "user_id", requesterID)
	return domain.CancelStatusCancelled, nil
}

// Status computes the poll view of a session from the store and wall clock.
func (s *Service) Status(ctx context.Context, sessionID string) (StatusView, error) {
	if id.Expired(sessionID, s.opts.SessionTTL) {
		return StatusView{Status: StatusExpired}, nil
	}
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrExpired):
			return StatusView{Status: StatusExpired}, nil
		case errors.Is(err, domain.ErrNotFound):
			return StatusView{Status: StatusNotFound}, nil
		}
		return StatusView{}, err
	}
	expiresIn := time.Until(sess.ExpiresAt)
	if expiresIn < 0 {
		expiresIn = 0
	}
	return StatusView{
		Status:     StatusPending,
		WalletType: sess.WalletType,
		ExpiresIn:  expiresIn,
		CreatedAt:  sess.CreatedAt,
	}, nil
}

// Stats reports store counts for health checks.
func (s *Service) Stats(ctx context.Context) (domain.VerificationStats, error) {
	return s.store.Stats(ctx)
}

// ListWallets returns a user's durably bound wallets.
func (s *Service) ListWallets(ctx context.Context, userID string) ([]domain.WalletBinding, error) {
	return s.bindings.ListByUser(ctx, userID)
}
