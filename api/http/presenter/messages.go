package presenter

import (
	"fmt"
	"net/http"

	"github.com/artem13815/taskmanager/pkg/auth"
)

// Caller-facing messages. They never say which check failed beyond what the
// caller needs to recover.
const (
	MsgIncorrectCredentials = "Incorrect email or password"
	MsgNotLoggedIn          = "You are not logged in! Please log in to get access."
	MsgInvalidToken         = "Invalid token! Please log in again."
	MsgAccountGone          = "The account belonging to this token no longer exists."
	MsgStalePassword        = "Account recently changed password! Please log in again."
	MsgUnavailable          = "Service temporarily unavailable"
	MsgInternal             = "Something went very wrong"
	MsgInvalidJSON          = "Invalid JSON payload"
)

// NotFoundMessage is the body for unknown routes.
func NotFoundMessage(path string) string {
	return fmt.Sprintf("Can't find %s on this server", path)
}

// RejectionMessage maps a guard rejection reason to its HTTP status and message.
func RejectionMessage(r auth.Reason) (int, string) {
	switch r {
	case auth.ReasonNoToken:
		return http.StatusUnauthorized, MsgNotLoggedIn
	case auth.ReasonAccountGone:
		return http.StatusUnauthorized, MsgAccountGone
	case auth.ReasonStalePassword:
		return http.StatusUnauthorized, MsgStalePassword
	case auth.ReasonUnavailable:
		return http.StatusServiceUnavailable, MsgUnavailable
	default:
		return http.StatusUnauthorized, MsgInvalidToken
	}
}
