package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// AccountUseCase describes registration, login and password rotation.
type AccountUseCase interface {
	Signup(ctx context.Context, in SignupInput) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	ChangePassword(ctx context.Context, accountID uuid.UUID, in ChangePasswordInput) (AuthResult, error)
}

// AuthResult pairs a redacted account with a freshly issued token.
type AuthResult struct {
	Account Account
	Token   SessionToken
}

type accountService struct {
	repo   AccountRepository
	hasher PasswordHasher
	tokens TokenIssuer
	opts   options
}

// NewAccountService returns default implementation of AccountUseCase.
func NewAccountService(repo AccountRepository, hasher PasswordHasher, tokens TokenIssuer, opts ...Option) AccountUseCase {
	return &accountService{repo: repo, hasher: hasher, tokens: tokens, opts: newOptions(opts)}
}

func (s *accountService) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	in.normalize()
	if err := asValidationError(in.Validate()); err != nil {
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return AuthResult{}, s.hashFailure(ctx, err)
	}

	// No pre-lookup: the unique index on email decides, so two concurrent
	// signups cannot both pass a check and then both insert.
	storeCtx, cancel := s.opts.storeContext(ctx)
	defer cancel()
	account, err := s.repo.Create(storeCtx, in.Name, in.Email, hash)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return AuthResult{}, &Error{
				Kind:     KindDuplicateEmail,
				Messages: []string{"Email is already registered. Please use another value"},
			}
		}
		return AuthResult{}, unavailable(err)
	}

	return s.issue(account)
}

func (s *accountService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, validationError("Please provide email and password")
	}

	storeCtx, cancel := s.opts.storeContext(ctx)
	defer cancel()
	account, err := s.repo.FindByEmail(storeCtx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Pay for a comparison anyway so a missing account costs the
			// same as a wrong password.
			s.hasher.Burn(ctx, password)
			return AuthResult{}, invalidCredentials()
		}
		return AuthResult{}, unavailable(err)
	}

	ok, err := s.hasher.Verify(ctx, password, account.PasswordHash)
	if err != nil {
		return AuthResult{}, s.hashFailure(ctx, err)
	}
	if !ok {
		return AuthResult{}, invalidCredentials()
	}

	return s.issue(account)
}

func (s *accountService) ChangePassword(ctx context.Context, accountID uuid.UUID, in ChangePasswordInput) (AuthResult, error) {
	if err := asValidationError(in.Validate()); err != nil {
		return AuthResult{}, err
	}

	findCtx, cancelFind := s.opts.storeContext(ctx)
	defer cancelFind()
	account, err := s.repo.FindByID(findCtx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, invalidCredentials()
		}
		return AuthResult{}, unavailable(err)
	}

	ok, err := s.hasher.Verify(ctx, in.CurrentPassword, account.PasswordHash)
	if err != nil {
		return AuthResult{}, s.hashFailure(ctx, err)
	}
	if !ok {
		return AuthResult{}, invalidCredentials()
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return AuthResult{}, s.hashFailure(ctx, err)
	}

	// Postgres keeps microseconds; truncating here keeps the stored value
	// identical to the one compared against token iat.
	changedAt := s.opts.now().Add(-PasswordChangeMargin).Truncate(timeStoragePrecision)

	updateCtx, cancelUpdate := s.opts.storeContext(ctx)
	defer cancelUpdate()
	account, err = s.repo.UpdatePassword(updateCtx, accountID, hash, changedAt)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, invalidCredentials()
		}
		return AuthResult{}, unavailable(err)
	}

	return s.issue(account)
}

// issue runs strictly after the credential check has succeeded.
func (s *accountService) issue(account Account) (AuthResult, error) {
	token, err := s.tokens.Issue(account.ID.String(), s.opts.now())
	if err != nil {
		return AuthResult{}, internal(err)
	}
	return AuthResult{Account: account.Redacted(), Token: token}, nil
}

// hashFailure separates a cancelled or timed-out request from a broken hasher.
func (s *accountService) hashFailure(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return unavailable(err)
	}
	return internal(err)
}
