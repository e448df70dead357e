package auth

import (
	"errors"
	"strings"
)

// ErrorKind classifies Account Service failures. The set is closed.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindInvalidCredentials
	KindDuplicateEmail
	KindUnavailable
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation_failure"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindDuplicateEmail:
		return "duplicate_email"
	case KindUnavailable:
		return "service_unavailable"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is returned by the Account Service. Messages are safe to show to the
// caller; Err carries the operator-facing cause and is never rendered outward.
type Error struct {
	Kind     ErrorKind
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, ". "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind of err, or 0 if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func validationError(messages ...string) *Error {
	return &Error{Kind: KindValidation, Messages: messages}
}

// invalidCredentials is deliberately cause-free: unknown email and wrong
// password must render identically.
func invalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials}
}

func unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Err: err}
}

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}

// Reason is why the Access Guard rejected a request.
type Reason int

const (
	ReasonNoToken Reason = iota + 1
	ReasonInvalidToken
	ReasonAccountGone
	ReasonStalePassword
	ReasonUnavailable
)

func (r Reason) String() string {
	switch r {
	case ReasonNoToken:
		return "no_token"
	case ReasonInvalidToken:
		return "invalid_token"
	case ReasonAccountGone:
		return "account_gone"
	case ReasonStalePassword:
		return "stale_password"
	case ReasonUnavailable:
		return "service_unavailable"
	default:
		return "unknown"
	}
}

// Rejection is the terminal failure state of Guard.Authorize.
type Rejection struct {
	Reason Reason
	Err    error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return "access rejected: " + r.Reason.String() + ": " + r.Err.Error()
	}
	return "access rejected: " + r.Reason.String()
}

func (r *Rejection) Unwrap() error { return r.Err }

// ReasonOf extracts the rejection reason of err, or 0 if err is not a *Rejection.
func ReasonOf(err error) Reason {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason
	}
	return 0
}
