package auth_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/artem13815/taskmanager/pkg/auth"
	"github.com/artem13815/taskmanager/pkg/auth/authtest"
	"github.com/artem13815/taskmanager/pkg/security/jwt"
	"github.com/artem13815/taskmanager/pkg/security/password"
)

const (
	testSecret   = "test-secret-with-enough-entropy"
	testIssuer   = "taskmanager"
	testLifetime = 90 * 24 * time.Hour
)

// mockRepository is used where the store must misbehave in ways the memory
// repository cannot.
type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (auth.Account, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(auth.Account), args.Error(1)
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (auth.Account, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(auth.Account), args.Error(1)
}

func (m *mockRepository) Create(ctx context.Context, name, email, passwordHash string) (auth.Account, error) {
	args := m.Called(ctx, name, email, passwordHash)
	return args.Get(0).(auth.Account), args.Error(1)
}

func (m *mockRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) (auth.Account, error) {
	args := m.Called(ctx, id, passwordHash, changedAt)
	return args.Get(0).(auth.Account), args.Error(1)
}

// spyHasher counts Burn calls on top of a real bcrypt hasher.
type spyHasher struct {
	*password.Hasher
	burns atomic.Int32
}

func (s *spyHasher) Burn(ctx context.Context, plain string) {
	s.burns.Add(1)
	s.Hasher.Burn(ctx, plain)
}

// clock is a settable time source shared by the service and the guard.
type clock struct {
	now atomic.Int64
}

func newClock(t time.Time) *clock {
	c := &clock{}
	c.Set(t)
	return c
}

func (c *clock) Now() time.Time { return time.Unix(0, c.now.Load()).UTC() }
func (c *clock) Set(t time.Time) { c.now.Store(t.UnixNano()) }
func (c *clock) Advance(d time.Duration) { c.now.Add(int64(d)) }

type fixture struct {
	repo     *authtest.MemoryRepository
	hasher   *spyHasher
	issuer   *jwt.Issuer
	verifier *jwt.Verifier
	clock    *clock
	service  auth.AccountUseCase
	guard    *auth.Guard
}

func newHasher(t *testing.T) *spyHasher {
	t.Helper()
	h, err := password.NewHasher(bcrypt.MinCost, 4)
	require.NoError(t, err)
	return &spyHasher{Hasher: h}
}

func newTokens(t *testing.T) (*jwt.Issuer, *jwt.Verifier) {
	t.Helper()
	iss, err := jwt.NewIssuer(testSecret, testIssuer, testLifetime)
	require.NoError(t, err)
	ver, err := jwt.NewVerifier(testSecret, testIssuer)
	require.NoError(t, err)
	return iss, ver
}

// fixture wires the real hasher, real tokens and the memory store, all on
// one controllable clock.
func newFixture(t *testing.T, start time.Time) *fixture {
	t.Helper()
	f := &fixture{
		repo:   authtest.NewMemoryRepository(),
		hasher: newHasher(t),
		clock:  newClock(start),
	}
	f.issuer, f.verifier = newTokens(t)
	f.service = auth.NewAccountService(f.repo, f.hasher, f.issuer, auth.WithClock(f.clock.Now))
	f.guard = auth.NewGuard(f.verifier, f.repo, auth.WithClock(f.clock.Now))
	return f
}

func (f *fixture) signup(t *testing.T, email, pass string) auth.AuthResult {
	t.Helper()
	res, err := f.service.Signup(context.Background(), auth.SignupInput{
		Name:            "Test User",
		Email:           email,
		Password:        pass,
		PasswordConfirm: pass,
	})
	require.NoError(t, err)
	return res
}
