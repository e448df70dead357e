package auth

import (
	"context"
	"time"
)

// PasswordChangeMargin is subtracted from the wall clock when a password
// change is recorded. Token iat is truncated to whole seconds, so without it
// the token issued together with the change could compare as older than the
// change itself.
const PasswordChangeMargin = time.Second

const timeStoragePrecision = time.Microsecond

type options struct {
	now          func() time.Time
	storeTimeout time.Duration
}

// Option configures the Account Service and the Access Guard.
type Option func(*options)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithStoreTimeout bounds every credential store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(o *options) { o.storeTimeout = d }
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.storeTimeout)
}
