package id

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable by
// creation time: the first 48 bits encode the mint time in milliseconds, so
// the creation instant of a verification session is recoverable from the id
// alone.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// NewAt generates a ULID string whose timestamp bits encode t instead of now.
func NewAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

// Timestamp extracts the creation time embedded in the id.
// Returns an error for anything that is not a canonical ULID.
func Timestamp(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse id: %w", err)
	}
	return ulid.Time(u.Time()), nil
}

// Expired reports whether more than ttl has elapsed since the id was minted.
// Malformed ids are treated as expired so callers can reject them in one check.
func Expired(s string, ttl time.Duration) bool {
	ts, err := Timestamp(s)
	if err != nil {
		return true
	}
	return time.Since(ts) > ttl
}
