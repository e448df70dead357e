// @title         taskmanager API
// @version       1.0
// @description   Task manager with account signup, login and session-token protected task endpoints.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token in the form "Bearer <token>".
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/artem13815/taskmanager/docs"
	swagger "github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	// internal imports
	"github.com/artem13815/taskmanager/api/http"
	"github.com/artem13815/taskmanager/api/http/handlers"
	"github.com/artem13815/taskmanager/api/http/middleware"
	"github.com/artem13815/taskmanager/pkg/auth"
	"github.com/artem13815/taskmanager/pkg/config"
	"github.com/artem13815/taskmanager/pkg/health"
	healthpg "github.com/artem13815/taskmanager/pkg/health/checkers"
	"github.com/artem13815/taskmanager/pkg/logging"
	"github.com/artem13815/taskmanager/pkg/metrics"
	pgrepo "github.com/artem13815/taskmanager/pkg/repository/postgres"
	"github.com/artem13815/taskmanager/pkg/security/jwt"
	"github.com/artem13815/taskmanager/pkg/security/password"
	"github.com/artem13815/taskmanager/pkg/storage/postgres"
	"github.com/artem13815/taskmanager/pkg/task"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from env/.env; a missing secret or lifetime stops here.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.WithMaxConns(cfg.DBMaxConns))
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.MigratePool(ctx, pool); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(registry)

	hasher, err := password.NewHasher(cfg.PasswordHashCost, cfg.PasswordHashWorkers,
		password.WithObserver(rec.ObservePasswordHash))
	if err != nil {
		return err
	}

	issuer, err := jwt.NewIssuer(cfg.TokenSecret, cfg.TokenIssuer, cfg.TokenLifetime)
	if err != nil {
		return err
	}
	verifier, err := jwt.NewVerifier(cfg.TokenSecret, cfg.TokenIssuer)
	if err != nil {
		return err
	}

	// Wire dependencies (Clean Architecture)
	accountRepo := pgrepo.NewAccountRepository(pool)
	taskRepo := pgrepo.NewTaskRepository(pool)

	storeTimeout := auth.WithStoreTimeout(cfg.StoreTimeout)
	accountUC := auth.NewAccountService(accountRepo, hasher, issuer, storeTimeout)
	guard := auth.NewGuard(verifier, accountRepo, storeTimeout)

	readiness := health.NewService(healthpg.NewPostgresChecker(pool))

	app := http.NewApp(log, cfg.BodyLimit)

	// Swagger UI; mounted before Register installs the catch-all 404.
	app.Get("/swagger/*", swagger.HandlerDefault)

	http.Register(app, http.Routes{
		Auth:    handlers.NewAuthHandler(accountUC, rec, log),
		Tasks:   handlers.NewTaskHandler(task.NewService(taskRepo), log),
		Health:  handlers.NewHealthHandler(readiness, log),
		Guard:   middleware.NewGuard(guard, log, rec),
		Metrics: metrics.Handler(registry),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			slog.String("port", cfg.Port),
			slog.Int("hash_cost", hasher.Cost()),
			slog.Duration("token_lifetime", cfg.TokenLifetime),
		)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
