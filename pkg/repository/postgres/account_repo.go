package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/artem13815/taskmanager/pkg/auth"
)

// AccountRepository implements auth.AccountRepository backed by PostgreSQL (pgx).
// The schema lives in the storage migrations; email uniqueness is enforced by
// the accounts_email_key index.
type AccountRepository struct {
	db DB
}

func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, name, email, password_hash, password_changed_at, created_at, updated_at`

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE email = $1
	`, auth.NormalizeEmail(email))
	return scanAccount(row)
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE id = $1
	`, id)
	return scanAccount(row)
}

func (r *AccountRepository) Create(ctx context.Context, name, email, passwordHash string) (auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO accounts (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+accountColumns,
		uuid.New(), name, auth.NormalizeEmail(email), passwordHash)
	account, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.Account{}, auth.ErrDuplicateEmail
		}
		return auth.Account{}, err
	}
	return account, nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) (auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE accounts
		SET password_hash = $2, password_changed_at = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+accountColumns,
		id, passwordHash, changedAt.UTC())
	return scanAccount(row)
}

func scanAccount(row pgx.Row) (auth.Account, error) {
	var (
		a         auth.Account
		changedAt *time.Time
	)
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &changedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Account{}, auth.ErrNotFound
		}
		return auth.Account{}, err
	}
	if changedAt != nil {
		utc := changedAt.UTC()
		a.PasswordChangedAt = &utc
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}
