package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/taskmanager/api/http/presenter"
	"github.com/artem13815/taskmanager/pkg/auth"
	"github.com/artem13815/taskmanager/pkg/metrics"
)

type authorizerFunc func(ctx context.Context, authorization string) (auth.Identity, error)

func (f authorizerFunc) Authorize(ctx context.Context, authorization string) (auth.Identity, error) {
	return f(ctx, authorization)
}

// guardCounts records RecordGuard labels and drops everything else.
type guardCounts struct {
	metrics.Nop
	labels []string
}

func (g *guardCounts) RecordGuard(label string) { g.labels = append(g.labels, label) }

func newGuardApp(authz Authorizer, rec metrics.Recorder, next GuardedHandler) *fiber.App {
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	app := fiber.New()
	app.Get("/private", NewGuard(authz, log, rec).Protect(next))
	return app
}

func TestProtect_PassesIdentityToHandler(t *testing.T) {
	want := auth.Identity{Account: auth.Account{ID: uuid.New(), Email: "ann@example.com"}}
	var gotHeader string
	authz := authorizerFunc(func(_ context.Context, authorization string) (auth.Identity, error) {
		gotHeader = authorization
		return want, nil
	})
	var got auth.Identity
	app := newGuardApp(authz, metrics.Nop{}, func(c *fiber.Ctx, id auth.Identity) error {
		got = id
		return c.SendStatus(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer abc")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "Bearer abc", gotHeader)
	assert.Equal(t, want.Account.ID, got.Account.ID)
}

func TestProtect_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantLabel  string
	}{
		{
			name:       "no token",
			err:        &auth.Rejection{Reason: auth.ReasonNoToken},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    presenter.MsgNotLoggedIn,
			wantLabel:  auth.ReasonNoToken.String(),
		},
		{
			name:       "invalid token",
			err:        &auth.Rejection{Reason: auth.ReasonInvalidToken, Err: errors.New("bad signature")},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    presenter.MsgInvalidToken,
			wantLabel:  auth.ReasonInvalidToken.String(),
		},
		{
			name:       "store down",
			err:        &auth.Rejection{Reason: auth.ReasonUnavailable, Err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    presenter.MsgUnavailable,
			wantLabel:  auth.ReasonUnavailable.String(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &guardCounts{}
			authz := authorizerFunc(func(context.Context, string) (auth.Identity, error) {
				return auth.Identity{}, tt.err
			})
			called := false
			app := newGuardApp(authz, rec, func(c *fiber.Ctx, _ auth.Identity) error {
				called = true
				return c.SendStatus(http.StatusNoContent)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.False(t, called)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			var body presenter.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.NotContains(t, body.Message, "connection refused")
			assert.Equal(t, []string{tt.wantLabel}, rec.labels)
		})
	}
}

func TestProtect_RecordsAllowed(t *testing.T) {
	rec := &guardCounts{}
	authz := authorizerFunc(func(context.Context, string) (auth.Identity, error) {
		return auth.Identity{Account: auth.Account{ID: uuid.New()}}, nil
	})
	app := newGuardApp(authz, rec, func(c *fiber.Ctx, _ auth.Identity) error {
		return c.SendStatus(http.StatusNoContent)
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"allowed"}, rec.labels)
}
