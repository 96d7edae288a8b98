package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-wallet-verify/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "verification:"
	userKeyPrefix    = "user:verification:"

	// scanBatch is the COUNT hint passed to SCAN when gathering stats.
	scanBatch = 100
)

// SessionStore persists verification sessions in Redis under two keys: the
// primary record (verification:<id>) and a user-index pointer
// (user:verification:<userId>) enforcing at most one live session per user.
// Both keys share the same TTL; writes are always full-record overwrites so
// no cross-key read-modify-write transaction is ever needed.
type SessionStore struct {
	client *redis.Client

	// minTTL floors the computed key TTL. The TTL is a physical eviction
	// bound only; logical expiry is always recomputed from ExpiresAt on read.
	minTTL time.Duration
}

func NewSessionStore(client *redis.Client, minTTL time.Duration) *SessionStore {
	if minTTL <= 0 {
		minTTL = domain.SessionTTL
	}
	return &SessionStore{client: client, minTTL: minTTL}
}

func sessionKey(id string) string  { return sessionKeyPrefix + id }
func userKey(userID string) string { return userKeyPrefix + userID }

// Set stores the session record and the user-index pointer in one pipelined
// write, both with ttl = max(ExpiresAt-now, minTTL). Re-setting an existing
// id fully overwrites the prior record.
func (s *SessionStore) Set(ctx context.Context, sess *domain.VerificationSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl < s.minTTL {
		ttl = s.minTTL
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKey(sess.ID), data, ttl)
	pipe.Set(ctx, userKey(sess.UserID), sess.ID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session %s: %w", sess.ID, domain.ErrPersistence)
	}
	return nil
}

// Get loads a session by id. Expiry is rechecked against wall clock even when
// Redis has not yet evicted the key: an expired record is deleted on the spot
// and reported as domain.ErrExpired, so an expired session is never returned
// regardless of eviction timing.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.VerificationSession, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, domain.ErrPersistence)
	}

	var sess domain.VerificationSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, domain.ErrPersistence)
	}

	if sess.Expired(time.Now()) {
		if _, err := s.Delete(ctx, id); err != nil {
			slog.Warn("failed to evict expired session", "id", id, "err", err)
		}
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrExpired)
	}
	return &sess, nil
}

// GetByUser resolves the user-index pointer to the primary record. The primary
// record's lazy-expiry check applies, so a stale pointer never yields an
// expired session.
func (s *SessionStore) GetByUser(ctx context.Context, userID string) (*domain.VerificationSession, error) {
	id, err := s.client.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("no session for user %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load user index %s: %w", userID, domain.ErrPersistence)
	}
	return s.Get(ctx, id)
}

// Delete removes the primary record and the user-index pointer together.
// The record is read first to recover the user id; a record that is already
// gone reports found=false with no error.
func (s *SessionStore) Delete(ctx context.Context, id string) (bool, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load session %s for delete: %w", id, domain.ErrPersistence)
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, sessionKey(id))

	var sess domain.VerificationSession
	if err := json.Unmarshal(data, &sess); err == nil {
		pipe.Del(ctx, userKey(sess.UserID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("delete session %s: %w", id, domain.ErrPersistence)
	}
	return true, nil
}

// Stats counts live session records via SCAN. Redis evicts expired keys
// itself, so everything still present counts as active.
func (s *SessionStore) Stats(ctx context.Context) (domain.VerificationStats, error) {
	var total int
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		total++
	}
	if err := iter.Err(); err != nil {
		return domain.VerificationStats{}, fmt.Errorf("scan sessions: %w", domain.ErrPersistence)
	}
	return domain.VerificationStats{Total: total, Active: total}, nil
}
