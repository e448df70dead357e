package middleware

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/taskmanager/api/http/presenter"
	"github.com/artem13815/taskmanager/pkg/auth"
	"github.com/artem13815/taskmanager/pkg/metrics"
	"github.com/artem13815/taskmanager/pkg/security/jwt"
)

// GuardedHandler receives the identity resolved for this request as an
// argument. Nothing about the caller is stored on the fiber context.
type GuardedHandler func(c *fiber.Ctx, id auth.Identity) error

// Authorizer is satisfied by *auth.Guard.
type Authorizer interface {
	Authorize(ctx context.Context, authorization string) (auth.Identity, error)
}

// Guard adapts the Access Guard to Fiber.
type Guard struct {
	authz Authorizer
	log   *slog.Logger
	rec   metrics.Recorder
}

func NewGuard(authz Authorizer, log *slog.Logger, rec metrics.Recorder) *Guard {
	return &Guard{authz: authz, log: log, rec: rec}
}

// Protect runs next only for an authorized request.
func (g *Guard) Protect(next GuardedHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := g.authz.Authorize(c.Context(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			reason := auth.ReasonOf(err)
			g.rec.RecordGuard(reason.String())
			g.logRejection(c, reason, err)
			status, msg := presenter.RejectionMessage(reason)
			return presenter.Error(c, status, msg)
		}
		g.rec.RecordGuard("allowed")
		g.log.Debug("request authorized",
			slog.String("path", c.Path()),
			slog.String("account_id", id.Account.ID.String()),
		)
		return next(c, id)
	}
}

func (g *Guard) logRejection(c *fiber.Ctx, reason auth.Reason, err error) {
	attrs := []any{
		slog.String("reason", reason.String()),
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
	}
	if kind := jwt.KindOf(err); kind != 0 {
		attrs = append(attrs, slog.String("verify_error", kind.String()))
	}
	if reason == auth.ReasonUnavailable {
		attrs = append(attrs, slog.Any("err", err))
		g.log.Error("access guard could not reach credential store", attrs...)
		return
	}
	g.log.Info("request rejected", attrs...)
}
