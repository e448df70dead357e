package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors used by repository implementations
var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// AccountRepository abstracts persistence of credentials from the domain layer.
// Create must report a uniqueness violation on email as ErrDuplicateEmail;
// lookups report a missing account as ErrNotFound.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (Account, error)
	Create(ctx context.Context, name, email, passwordHash string) (Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) (Account, error)
}
