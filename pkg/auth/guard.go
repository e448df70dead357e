package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// BearerScheme is the only accepted Authorization scheme.
const BearerScheme = "Bearer"

// Guard is the per-request authorization gate. It holds no request state and
// is safe for concurrent use.
type Guard struct {
	verifier TokenVerifier
	repo     AccountRepository
	opts     options
}

func NewGuard(verifier TokenVerifier, repo AccountRepository, opts ...Option) *Guard {
	return &Guard{verifier: verifier, repo: repo, opts: newOptions(opts)}
}

// Authorize resolves the Authorization header value to an Identity or
// returns a *Rejection. Every rejection is terminal; nothing is retried.
func (g *Guard) Authorize(ctx context.Context, authorization string) (Identity, error) {
	raw, ok := BearerToken(authorization)
	if !ok {
		return Identity{}, &Rejection{Reason: ReasonNoToken}
	}

	token, err := g.verifier.Verify(raw, g.opts.now())
	if err != nil {
		return Identity{}, &Rejection{Reason: ReasonInvalidToken, Err: err}
	}

	id, err := uuid.Parse(token.Subject)
	if err != nil {
		return Identity{}, &Rejection{Reason: ReasonInvalidToken, Err: err}
	}

	storeCtx, cancel := g.opts.storeContext(ctx)
	defer cancel()
	account, err := g.repo.FindByID(storeCtx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, &Rejection{Reason: ReasonAccountGone, Err: err}
		}
		return Identity{}, &Rejection{Reason: ReasonUnavailable, Err: err}
	}

	if account.IssuedBeforePasswordChange(token.IssuedAt) {
		return Identity{}, &Rejection{Reason: ReasonStalePassword}
	}

	return Identity{Account: account.Redacted(), Token: token}, nil
}

// BearerToken extracts the credential from "Bearer <token>". The scheme is
// matched case-insensitively; an empty credential counts as absent.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
