package domain

import "time"

// SessionTTL is the fixed lifetime of a verification session.
// ExpiresAt is always CreatedAt + SessionTTL, set once at creation.
const SessionTTL = 5 * time.Minute

// OriginRef points at the UI message a session was started from. It is
// attached after creation, once the front-end has posted its prompt.
type OriginRef struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
}

// VerificationSession tracks one in-flight proof-of-wallet-ownership request.
// The session id doubles as the challenge message the wallet must sign; its
// leading 48 bits encode CreatedAt with millisecond resolution.
type VerificationSession struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Username   string     `json:"username"`
	WalletType WalletType `json:"wallet_type"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Origin     *OriginRef `json:"origin,omitempty"`
}

// Expired reports whether the session's TTL has elapsed at now.
func (s *VerificationSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// VerificationStats summarises the ephemeral store for health reporting.
// Expired is always zero when the backing store evicts on TTL; it exists so
// the wire contract keeps its shape if a store without eviction is plugged in.
type VerificationStats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

// CancelStatus is the outcome of a cancel request. Cancellation races against
// completion, so "session already gone" is a status, not an error.
type CancelStatus string

const (
	CancelStatusCancelled        CancelStatus = "cancelled"
	CancelStatusAlreadyCompleted CancelStatus = "already_completed"
)
