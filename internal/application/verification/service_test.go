package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-wallet-verify/internal/domain"
	"github.com/go-wallet-verify/internal/pkg/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockStore struct{ mock.Mock }

func (m *mockStore) Set(ctx context.Context, sess *domain.VerificationSession) error {
	return m.Called(ctx, sess).Error(0)
}
func (m *mockStore) Get(ctx context.Context, sessionID string) (*domain.VerificationSession, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.VerificationSession); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) GetByUser(ctx context.Context, userID string) (*domain.VerificationSession, error) {
	args := m.Called(ctx, userID)
	if s, _ := args.Get(0).(*domain.VerificationSession); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Delete(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}
func (m *mockStore) Stats(ctx context.Context) (domain.VerificationStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.VerificationStats), args.Error(1)
}

type mockLocker struct{ mock.Mock }

func (m *mockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}
func (m *mockLocker) Release(ctx context.Context, key, token string) error {
	return m.Called(ctx, key, token).Error(0)
}

type mockChains struct{ mock.Mock }

func (m *mockChains) Verify(walletType domain.WalletType, challenge, signature string) (string, error) {
	args := m.Called(walletType, challenge, signature)
	return args.String(0), args.Error(1)
}

type mockBindings struct{ mock.Mock }

func (m *mockBindings) Upsert(ctx context.Context, b *domain.WalletBinding) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockBindings) ListByUser(ctx context.Context, userID string) ([]domain.WalletBinding, error) {
	args := m.Called(ctx, userID)
	if bs, _ := args.Get(0).([]domain.WalletBinding); bs != nil {
		return bs, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) OnCompleted(ctx context.Context, sess *domain.VerificationSession, address string) {
	m.Called(ctx, sess, address)
}
func (m *mockNotifier) OnFailed(ctx context.Context, sess *domain.VerificationSession, reason string) {
	m.Called(ctx, sess, reason)
}

// --- helpers ---

const sampleAddress = "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1"

func newSvc(st *mockStore, lk *mockLocker, ch *mockChains, bn *mockBindings, nt *mockNotifier, opts Options) *Service {
	return NewService(ServiceDeps{
		Store:    st,
		Locker:   lk,
		Chains:   ch,
		Bindings: bn,
		Notifier: nt,
		Options:  opts,
	})
}

func liveSession() *domain.VerificationSession {
	now := time.Now()
	return &domain.VerificationSession{
		ID:         id.New(),
		UserID:     "user-1",
		Username:   "alice",
		WalletType: domain.WalletTypeEVM,
		CreatedAt:  now,
		ExpiresAt:  now.Add(domain.SessionTTL),
	}
}

func grantLock(lk *mockLocker, key string) {
	lk.On("Acquire", mock.Anything, key, mock.Anything).Return("tok", true, nil)
	lk.On("Release", mock.Anything, key, "tok").Return(nil)
}

// --- StartSession ---

func TestStartSession_CreatesWithIDDerivedTimestamps(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	grantLock(lk, "user:user-1")
	st.On("GetByUser", mock.Anything, "user-1").Return(nil, domain.ErrNotFound)
	st.On("Set", mock.Anything, mock.AnythingOfType("*domain.VerificationSession")).Return(nil)

	sess, err := newSvc(st, lk, ch, bn, nt, Options{}).StartSession(context.Background(), "user-1", "alice", domain.WalletTypeEVM)

	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, domain.SessionTTL, sess.ExpiresAt.Sub(sess.CreatedAt))

	ts, err := id.Timestamp(sess.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, ts, sess.CreatedAt, time.Millisecond)
	lk.AssertCalled(t, "Release", mock.Anything, "user:user-1", "tok")
}

func TestStartSession_RejectsLivePendingSession(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	grantLock(lk, "user:user-1")
	st.On("GetByUser", mock.Anything, "user-1").Return(liveSession(), nil)

	_, err := newSvc(st, lk, ch, bn, nt, Options{}).StartSession(context.Background(), "user-1", "alice", domain.WalletTypeEVM)

	assert.ErrorIs(t, err, domain.ErrConflict)
	st.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestStartSession_ConcurrentStartBlockedByLock(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	lk.On("Acquire", mock.Anything, "user:user-1", mock.Anything).Return("", false, nil)

	_, err := newSvc(st, lk, ch, bn, nt, Options{}).StartSession(context.Background(), "user-1", "alice", domain.WalletTypeEVM)

	assert.ErrorIs(t, err, domain.ErrConflict)
	st.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything)
}

func TestStartSession_InvalidWalletType(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	_, err := newSvc(st, lk, ch, bn, nt, Options{}).StartSession(context.Background(), "user-1", "alice", "DOGE")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// --- AttachOrigin ---

func TestAttachOrigin_OverwritesWholeRecord(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	sess := liveSession()
	st.On("Get", mock.Anything, sess.ID).Return(sess, nil)
	st.On("Set", mock.Anything, mock.MatchedBy(func(s *domain.VerificationSession) bool {
		return s.ID == sess.ID && s.Origin != nil && s.Origin.MessageID == "msg-9"
	})).Return(nil)

	err := newSvc(st, lk, ch, bn, nt, Options{}).AttachOrigin(context.Background(), sess.ID, domain.OriginRef{MessageID: "msg-9", ChannelID: "chan-3"})

	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestAttachOrigin_UnknownSession(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	st.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	err := newSvc(st, lk, ch, bn, nt, Options{}).AttachOrigin(context.Background(), "nope", domain.OriginRef{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- Submit / CompleteSession ---

func TestSubmit_HappyPath(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	sess := liveSession()
	grantLock(lk, "verification:"+sess.ID)
	st.On("Get", mock.Anything, sess.ID).Return(sess, nil)
	ch.On("Verify", domain.WalletTypeEVM, sess.ID, "sig").Return(sampleAddress, nil)
	bn.On("Upsert", mock.Anything, mock.MatchedBy(func(b *domain.WalletBinding) bool {
		return b.Address == sampleAddress && b.UserID == "user-1" && b.ChainType == domain.WalletTypeEVM
	})).Return(nil)
	st.On("Delete", mock.Anything, sess.ID).Return(true, nil)
	nt.On("OnCompleted", mock.Anything, sess, sampleAddress).Return()

	addr, wt, err := newSvc(st, lk, ch, bn, nt, Options{}).Submit(context.Background(), sess.ID, "sig")

	require.NoError(t, err)
	assert.Equal(t, sampleAddress, addr)
	assert.Equal(t, domain.WalletTypeEVM, wt)
	st.AssertCalled(t, "Delete", mock.Anything, sess.ID)
	nt.AssertCalled(t, "OnCompleted", mock.Anything, sess, sampleAddress)
	lk.AssertCalled(t, "Release", mock.Anything, "verification:"+sess.ID, "tok")
}

func TestSubmit_ExpiredByIDTimestamp(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	stale := id.NewAt(time.Now().Add(-10 * time.Minute))

	_, _, err := newSvc(st, lk, ch, bn, nt, Options{}).Submit(context.Background(), stale, "sig")

	assert.ErrorIs(t, err, domain.ErrExpired)
	lk.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_LockHeldMeansConflict(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	sess := liveSession()
	lk.On("Acquire", mock.Anything, "verification:"+sess.ID, mock.Anything).Return("", false, nil)

	_, _, err := newSvc(st, lk, ch, bn, nt, Options{}).Submit(context.Background(), sess.ID, "sig")

	assert.ErrorIs(t, err, domain.ErrConflict)
	st.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSubmit_SecondAttemptAfterCompletionIsNotFound(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	sess := liveSession()
	grantLock(lk, "verification:"+sess.ID)
	st.On("Get", mock.Anything, sess.ID).Return(nil, domain.ErrNotFound)

	_, _, err := newSvc(st, lk, ch, bn, nt, Options{}).Submit(context.Background(), sess.ID, "sig")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	bn.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSubmit_BadSignatureKeepsSessionByDefault(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	sess := liveSession()
	grantLock(lk, "verification:"+sess.ID)
	st.On("Get", mock.Anything, sess.ID).Return(sess, nil)
	ch.On("Verify", domain.WalletTypeEVM, sess.ID, "bad").Return("", domain.ErrSignature)

	_, _, err := newSvc(st, lk, ch, bn, nt, Options{}).Submit(context.Background(), sess.ID, "bad")

	assert.ErrorIs(t, err, domain.ErrSignature)
	st.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	nt.AssertNotCalled(t, "OnFailed", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_BadSignatureDeletesWhenPolicyEnabled(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	sess := liveSession()
	grantLock(lk, "verification:"+sess.ID)
	st.On("Get", mock.Anything, sess.ID).Return(sess, nil)
	ch.On("Verify", domain.WalletTypeEVM, sess.ID, "bad").Return("", domain.ErrSignature)
	st.On("Delete", mock.Anything, sess.ID).Return(true, nil)
	nt.On("OnFailed", mock.Anything, sess, mock.Anything).Return()

	svc := newSvc(st, lk, ch, bn, nt, Options{DeleteOnFailedSignature: true})
	_, _, err := svc.Submit(context.Background(), sess.ID, "bad")

	assert.ErrorIs(t, err, domain.ErrSignature)
	st.AssertCalled(t, "Delete", mock.Anything, sess.ID)
	nt.AssertCalled(t, "OnFailed", mock.Anything, sess, "signature verification failed")
}

func TestSubmit_UnsupportedChainDoesNotConsumeSession(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	sess := liveSession()
	sess.WalletType = domain.WalletTypeSUI
	grantLock(lk, "verification:"+sess.ID)
	st.On("Get", mock.Anything, sess.ID).Return(sess, nil)
	ch.On("Verify", domain.WalletTypeSUI, sess.ID, "sig").Return("", domain.ErrUnsupportedChain)

	svc := newSvc(st, lk, ch, bn, nt, Options{DeleteOnFailedSignature: true})
	_, _, err := svc.Submit(context.Background(), sess.ID, "sig")

	assert.ErrorIs(t, err, domain.ErrUnsupportedChain)
	st.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSubmit_BindingConflictKeepsSession(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	sess := liveSession()
	grantLock(lk, "verification:"+sess.ID)
	st.On("Get", mock.Anything, sess.ID).Return(sess, nil)
	ch.On("Verify", domain.WalletTypeEVM, sess.ID, "sig").Return(sampleAddress, nil)
	bn.On("Upsert", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	_, _, err := newSvc(st, lk, ch, bn, nt, Options{}).Submit(context.Background(), sess.ID, "sig")

	assert.ErrorIs(t, err, domain.ErrConflict)
	st.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	nt.AssertNotCalled(t, "OnCompleted", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_PersistenceFailureKeepsSession(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	sess := liveSession()
	grantLock(lk, "verification:"+sess.ID)
	st.On("Get", mock.Anything, sess.ID).Return(sess, nil)
	ch.On("Verify", domain.WalletTypeEVM, sess.ID, "sig").Return(sampleAddress, nil)
	bn.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	_, _, err := newSvc(st, lk, ch, bn, nt, Options{}).Submit(context.Background(), sess.ID, "sig")

	assert.ErrorIs(t, err, domain.ErrPersistence)
	st.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// --- CancelSession ---

func TestCancelSession_OwnerCancels(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	sess := liveSession()
	st.On("Get", mock.Anything, sess.ID).Return(sess, nil)
	st.On("Delete", mock.Anything, sess.ID).Return(true, nil)

	status, err := newSvc(st, lk, ch, bn, nt, Options{}).CancelSession(context.Background(), sess.ID, "user-1")

	require.NoError(t, err)
	assert.Equal(t, domain.CancelStatusCancelled, status)
}

func TestCancelSession_GoneReportsAlreadyCompleted(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	st.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)

	status, err := newSvc(st, lk, ch, bn, nt, Options{}).CancelSession(context.Background(), "gone", "user-1")

	require.NoError(t, err)
	assert.Equal(t, domain.CancelStatusAlreadyCompleted, status)
}

func TestCancelSession_WrongOwnerForbidden(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	sess := liveSession()
	st.On("Get", mock.Anything, sess.ID).Return(sess, nil)

	_, err := newSvc(st, lk, ch, bn, nt, Options{}).CancelSession(context.Background(), sess.ID, "user-2")

	assert.ErrorIs(t, err, domain.ErrForbidden)
	st.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// --- Status ---

func TestStatus_Pending(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	sess := liveSession()
	st.On("Get", mock.Anything, sess.ID).Return(sess, nil)

	view, err := newSvc(st, lk, ch, bn, nt, Options{}).Status(context.Background(), sess.ID)

	require.NoError(t, err)
	assert.Equal(t, StatusPending, view.Status)
	assert.Equal(t, domain.WalletTypeEVM, view.WalletType)
	assert.Greater(t, view.ExpiresIn, 4*time.Minute)
	assert.WithinDuration(t, sess.CreatedAt, view.CreatedAt, time.Millisecond)
}

func TestStatus_ExpiredByID(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	stale := id.NewAt(time.Now().Add(-time.Hour))

	view, err := newSvc(st, lk, ch, bn, nt, Options{}).Status(context.Background(), stale)

	require.NoError(t, err)
	assert.Equal(t, StatusExpired, view.Status)
	st.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestStatus_NotFound(t *testing.T) {
	st, lk, ch, bn, nt := &mockStore{}, &mockLocker{}, &mockChains{}, &mockBindings{}, &mockNotifier{}

	fresh := id.New()
	st.On("Get", mock.Anything, fresh).Return(nil, domain.ErrNotFound)

	view, err := newSvc(st, lk, ch, bn, nt, Options{}).Status(context.Background(), fresh)

	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, view.Status)
}
