package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/taskmanager/api/http/middleware"
	"github.com/artem13815/taskmanager/api/http/presenter"
)

const appName = "taskmanager"

// NewApp builds the Fiber app with the shared error handler, panic recovery
// and request logging installed.
func NewApp(log *slog.Logger, bodyLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(log),
	})
	app.Use(middleware.RequestLogger(log))
	app.Use(middleware.Recover(log))
	return app
}

// ErrorHandler renders errors that escaped a handler. Fiber's own 4xx errors
// keep their status and text; everything else becomes a generic 500.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < http.StatusInternalServerError {
			if fe.Code == http.StatusNotFound {
				return presenter.Error(c, fe.Code, presenter.NotFoundMessage(c.OriginalURL()))
			}
			return presenter.Error(c, fe.Code, fe.Message)
		}
		log.Error("unhandled error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("err", err),
		)
		return presenter.Error(c, http.StatusInternalServerError, presenter.MsgInternal)
	}
}
