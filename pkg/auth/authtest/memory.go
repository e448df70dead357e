// Package authtest provides an in-memory AccountRepository for tests of
// packages built on top of auth.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/taskmanager/pkg/auth"
)

// MemoryRepository enforces email uniqueness the way the Postgres unique
// index does: on Create, under one lock.
type MemoryRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]auth.Account
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[uuid.UUID]auth.Account), now: time.Now}
}

// Put stores a as-is, replacing any account with the same id.
func (r *MemoryRepository) Put(a auth.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[a.ID] = a
}

// Delete removes an account, simulating deactivation.
func (r *MemoryRepository) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
}

// Len returns the number of stored accounts.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (auth.Account, error) {
	if err := ctx.Err(); err != nil {
		return auth.Account{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email = auth.NormalizeEmail(email)
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return auth.Account{}, auth.ErrNotFound
}

func (r *MemoryRepository) FindByID(ctx context.Context, id uuid.UUID) (auth.Account, error) {
	if err := ctx.Err(); err != nil {
		return auth.Account{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return auth.Account{}, auth.ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepository) Create(ctx context.Context, name, email, passwordHash string) (auth.Account, error) {
	if err := ctx.Err(); err != nil {
		return auth.Account{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email = auth.NormalizeEmail(email)
	for _, a := range r.accounts {
		if a.Email == email {
			return auth.Account{}, auth.ErrDuplicateEmail
		}
	}
	now := r.now().UTC()
	a := auth.Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.accounts[a.ID] = a
	return a, nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) (auth.Account, error) {
	if err := ctx.Err(); err != nil {
		return auth.Account{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return auth.Account{}, auth.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.PasswordChangedAt = &changedAt
	a.UpdatedAt = r.now().UTC()
	r.accounts[id] = a
	return a, nil
}
