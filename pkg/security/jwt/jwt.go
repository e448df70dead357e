package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/artem13815/taskmanager/pkg/auth"
)

var (
	ErrMissingSecret   = errors.New("token secret is empty")
	ErrInvalidLifetime = errors.New("token lifetime must be at least one second")
	ErrEmptySubject    = errors.New("token subject is empty")
)

// Kind is the closed set of reasons a token fails verification.
type Kind int

const (
	KindMalformed Kind = iota + 1
	KindInvalidSignature
	KindExpired
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// VerifyError is returned by Verifier.Verify.
type VerifyError struct {
	Kind Kind
	Err  error
}

func (e *VerifyError) Error() string {
	if e.Err != nil {
		return "token " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "token " + e.Kind.String()
}

func (e *VerifyError) Unwrap() error { return e.Err }

// KindOf returns the verification failure kind of err, or 0.
func KindOf(err error) Kind {
	var ve *VerifyError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return 0
}

// Issuer signs HS256 session tokens. It is stateless apart from its key.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewIssuer(secret, issuer string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl < time.Second {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLifetime, ttl)
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// Issue signs a token for subject, valid from now for the configured lifetime.
// Claims carry whole seconds, so the returned times are truncated to match.
func (g *Issuer) Issue(subject string, now time.Time) (auth.SessionToken, error) {
	if subject == "" {
		return auth.SessionToken{}, ErrEmptySubject
	}
	iat := now.UTC().Truncate(time.Second)
	exp := iat.Add(g.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    g.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return auth.SessionToken{}, fmt.Errorf("sign token: %w", err)
	}
	return auth.SessionToken{
		Value:     signed,
		Subject:   subject,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}, nil
}

// Verifier checks signature, algorithm, issuer and expiry. A token is
// accepted strictly before its exp; at exp it is already expired.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) (*Verifier, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Verifier{secret: []byte(secret), issuer: issuer}, nil
}

func (v *Verifier) Verify(token string, now time.Time) (auth.SessionToken, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims jwt.RegisteredClaims
	// The signature is checked before any claim, so a tampered token is never
	// reported as merely expired.
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return auth.SessionToken{}, classify(err)
	}

	if claims.Subject == "" || claims.IssuedAt == nil {
		return auth.SessionToken{}, &VerifyError{Kind: KindMalformed, Err: errors.New("missing sub or iat claim")}
	}

	return auth.SessionToken{
		Value:     token,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.UTC(),
		ExpiresAt: claims.ExpiresAt.UTC(),
	}, nil
}

func classify(err error) *VerifyError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &VerifyError{Kind: KindMalformed, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &VerifyError{Kind: KindInvalidSignature, Err: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &VerifyError{Kind: KindExpired, Err: err}
	default:
		return &VerifyError{Kind: KindMalformed, Err: err}
	}
}
