package auth

import (
	"context"
	"time"
)

// TokenIssuer abstracts token creation (e.g., JWT).
// It allows use cases to stay framework-agnostic.
type TokenIssuer interface {
	Issue(subject string, now time.Time) (SessionToken, error)
}

// TokenVerifier checks signature and expiry only; it knows nothing about accounts.
type TokenVerifier interface {
	Verify(token string, now time.Time) (SessionToken, error)
}

// PasswordHasher hashes and verifies credentials at rest.
type PasswordHasher interface {
	// Hash requires plain to be at most 72 bytes; callers validate that first.
	// Over-long input is an input error, distinct from an internal failure.
	Hash(ctx context.Context, plain string) (string, error)
	// Verify reports a mismatch as (false, nil); errors mean the check could not run.
	Verify(ctx context.Context, plain, hash string) (bool, error)
	// Burn spends the cost of one verification without a real hash to compare against.
	Burn(ctx context.Context, plain string)
}
