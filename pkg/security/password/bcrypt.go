// Package password hashes credentials with bcrypt on a bounded pool of
// concurrent workers.
package password

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var (
	// ErrHashingFailure wraps an unexpected error from bcrypt itself.
	ErrHashingFailure = errors.New("password hashing failed")
	ErrInvalidCost    = errors.New("bcrypt cost out of range")
	// ErrPasswordTooLong is an input error: plain exceeds MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// generateFromPassword is a seam for tests.
var generateFromPassword = bcrypt.GenerateFromPassword

// Hasher is safe for concurrent use. At most `workers` hash or verify
// operations run at once; callers beyond that wait or give up with their ctx.
type Hasher struct {
	cost    int
	sem     *semaphore.Weighted
	observe func(op string, d time.Duration)
	// dummy is compared against by Burn.
	dummy string
}

type Option func(*Hasher)

// WithObserver receives the duration of every bcrypt call ("hash" or "verify").
func WithObserver(fn func(op string, d time.Duration)) Option {
	return func(h *Hasher) { h.observe = fn }
}

// NewHasher validates cost against bcrypt's bounds; workers <= 0 means one per CPU.
// It also builds the dummy hash used by Burn, so a Hasher that exists can
// always equalize timing.
func NewHasher(cost, workers int, opts ...Option) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCost, cost)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	h := &Hasher{
		cost:    cost,
		sem:     semaphore.NewWeighted(int64(workers)),
		observe: func(string, time.Duration) {},
	}
	for _, opt := range opts {
		opt(h)
	}

	dummy, err := generateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("%w: build dummy hash: %v", ErrHashingFailure, err)
	}
	h.dummy = string(dummy)
	return h, nil
}

// Cost returns the configured work factor.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt hash of plain. Input longer than
// MaxPasswordBytes is refused with ErrPasswordTooLong; ErrHashingFailure is
// reserved for bcrypt itself failing.
func (h *Hasher) Hash(ctx context.Context, plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	start := time.Now()
	b, err := generateFromPassword([]byte(plain), h.cost)
	h.observe("hash", time.Since(start))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A mismatch, and a hash that
// cannot be parsed, are both (false, nil). An error means ctx ended first.
func (h *Hasher) Verify(ctx context.Context, plain, hash string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	h.observe("verify", time.Since(start))
	return err == nil, nil
}

// Burn compares plain against a throwaway hash of the same cost. The result
// is discarded; only the elapsed time matters.
func (h *Hasher) Burn(ctx context.Context, plain string) {
	_, _ = h.Verify(ctx, plain, h.dummy)
}
