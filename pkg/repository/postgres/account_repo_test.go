package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/taskmanager/pkg/auth"
)

var accountCols = []string{"id", "name", "email", "password_hash", "password_changed_at", "created_at", "updated_at"}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestAccountRepository_FindByEmail(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	id := uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("MSK", 3*3600))
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE email = $1")).
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows(accountCols).
			AddRow(id, "Alice", "a@x.com", "$2a$hash", (*time.Time)(nil), created, created))

	got, err := repo.FindByEmail(context.Background(), "  A@X.com ")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "$2a$hash", got.PasswordHash)
	assert.Nil(t, got.PasswordChangedAt)
	assert.Equal(t, time.UTC, got.CreatedAt.Location())
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestAccountRepository_FindByID_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestAccountRepository_FindByID_StoreError(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	id := uuid.New()
	boom := errors.New("conn closed")
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs(id).
		WillReturnError(boom)

	_, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, auth.ErrNotFound)
}

func TestAccountRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO accounts (id, name, email, password_hash)")).
		WithArgs(pgxmock.AnyArg(), "Alice", "a@x.com", "$2a$hash").
		WillReturnRows(pgxmock.NewRows(accountCols).
			AddRow(id, "Alice", "a@x.com", "$2a$hash", (*time.Time)(nil), now, now))

	got, err := repo.Create(context.Background(), "Alice", "A@x.com", "$2a$hash")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestAccountRepository_Create_DuplicateEmail(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs(pgxmock.AnyArg(), "Alice", "a@x.com", "$2a$hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

	_, err := repo.Create(context.Background(), "Alice", "a@x.com", "$2a$hash")
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestAccountRepository_UpdatePassword(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	id := uuid.New()
	changedAt := time.Date(2026, 4, 1, 10, 0, 0, 123456000, time.UTC)
	now := changedAt.Add(time.Second)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE accounts")).
		WithArgs(id, "$2a$new", changedAt).
		WillReturnRows(pgxmock.NewRows(accountCols).
			AddRow(id, "Alice", "a@x.com", "$2a$new", &changedAt, now, now))

	got, err := repo.UpdatePassword(context.Background(), id, "$2a$new", changedAt)
	require.NoError(t, err)
	require.NotNil(t, got.PasswordChangedAt)
	assert.True(t, changedAt.Equal(*got.PasswordChangedAt))
	assert.Equal(t, "$2a$new", got.PasswordHash)
}

func TestAccountRepository_UpdatePassword_Missing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAccountRepository(mock)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE accounts")).
		WithArgs(id, "$2a$new", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdatePassword(context.Background(), id, "$2a$new", time.Now())
	assert.ErrorIs(t, err, auth.ErrNotFound)
}
