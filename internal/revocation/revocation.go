// Package revocation holds the blocklist of session token ids that must no
// longer authenticate: logged-out access tokens and spent refresh tokens.
//
// Entries only need to outlive the token they block, so every backend keeps
// an entry until the token's own expiry and no longer.
package revocation

import (
	"context"
	"errors"
	"time"
)

// ErrExpired is returned by Revoke for a token that has already expired.
// Callers may ignore it: an expired token cannot authenticate anyway.
var ErrExpired = errors.New("token already expired")

// ErrAlreadyRevoked is returned by Revoke when the token id is already in the
// set. Exactly one of several concurrent Revoke calls for a jti succeeds.
var ErrAlreadyRevoked = errors.New("token already revoked")

// Record describes one revoked token.
type Record struct {
	TokenID   string    `json:"jti"`
	UserID    string    `json:"sub"`
	ExpiresAt time.Time `json:"exp"`
	RevokedAt time.Time `json:"revoked_at"`
}

// Set is a blocklist of token ids. Implementations are safe for concurrent use.
type Set interface {
	// Revoke adds a token id until rec.ExpiresAt, or fails with
	// ErrAlreadyRevoked when it is already present.
	Revoke(ctx context.Context, rec Record) error
	// IsRevoked reports whether a token id is blocked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Sweep drops entries past expiry and reports how many were removed.
	// Backends with native TTLs may return 0.
	Sweep(ctx context.Context) (int, error)
	// Close releases backend resources.
	Close() error
}

// ttl returns the remaining lifetime of rec at now, or ErrExpired.
func ttl(rec Record, now time.Time) (time.Duration, error) {
	d := rec.ExpiresAt.Sub(now)
	if d <= 0 {
		return 0, ErrExpired
	}
	return d, nil
}
