package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/taskmanager/api/http/presenter"
	"github.com/artem13815/taskmanager/pkg/auth"
	"github.com/artem13815/taskmanager/pkg/metrics"
)

// TokenCookie is set alongside every issued token.
const TokenCookie = "jwt"

type AuthHandler struct {
	useCase auth.AccountUseCase
	rec     metrics.Recorder
	log     *slog.Logger
}

func NewAuthHandler(useCase auth.AccountUseCase, rec metrics.Recorder, log *slog.Logger) *AuthHandler {
	return &AuthHandler{useCase: useCase, rec: rec, log: log}
}

type loginRequest struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"Abcdefg1"`
}

// Signup handles account registration.
// @Summary Sign up
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body auth.SignupInput true "signup payload"
// @Success 201 {object} presenter.AuthResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 503 {object} presenter.ErrorResponse
// @Router  /auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req auth.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, presenter.MsgInvalidJSON)
	}

	result, err := h.useCase.Signup(c.Context(), req)
	h.rec.RecordSignup(outcome(err))
	if err != nil {
		return h.fail(c, "signup", err)
	}

	setTokenCookie(c, result.Token)
	return presenter.Auth(c, http.StatusCreated, result.Token.Value, result.Account)
}

// Login handles credential login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} presenter.AuthResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 503 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, presenter.MsgInvalidJSON)
	}

	result, err := h.useCase.Login(c.Context(), req.Email, req.Password)
	h.rec.RecordLogin(outcome(err))
	if err != nil {
		return h.fail(c, "login", err)
	}

	setTokenCookie(c, result.Token)
	return presenter.Auth(c, http.StatusOK, result.Token.Value, result.Account)
}

// Me returns the authenticated account.
// @Summary  Current account
// @Tags     auth
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} presenter.DataResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx, id auth.Identity) error {
	return presenter.Data(c, http.StatusOK, presenter.AccountData{Account: id.Account})
}

// ChangePassword rotates the password and returns a fresh token. Tokens
// issued before the change stop working.
// @Summary  Change password
// @Tags     auth
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    input body auth.ChangePasswordInput true "password change payload"
// @Success  200 {object} presenter.AuthResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /auth/password [patch]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx, id auth.Identity) error {
	var req auth.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, presenter.MsgInvalidJSON)
	}

	result, err := h.useCase.ChangePassword(c.Context(), id.Account.ID, req)
	if err != nil {
		return h.fail(c, "change_password", err)
	}

	h.log.Info("password changed", slog.String("account_id", id.Account.ID.String()))
	setTokenCookie(c, result.Token)
	return presenter.Auth(c, http.StatusOK, result.Token.Value, result.Account)
}

// fail renders an Account Service error. The cause is logged, never sent.
func (h *AuthHandler) fail(c *fiber.Ctx, op string, err error) error {
	var ae *auth.Error
	if !errors.As(err, &ae) {
		ae = &auth.Error{Kind: auth.KindInternal, Err: err}
	}

	switch ae.Kind {
	case auth.KindValidation, auth.KindDuplicateEmail:
		return presenter.Error(c, http.StatusBadRequest, strings.Join(ae.Messages, ". "))
	case auth.KindInvalidCredentials:
		return presenter.Error(c, http.StatusUnauthorized, presenter.MsgIncorrectCredentials)
	case auth.KindUnavailable:
		h.log.Error("credential store unavailable", slog.String("op", op), slog.Any("err", ae.Err))
		return presenter.Error(c, http.StatusServiceUnavailable, presenter.MsgUnavailable)
	default:
		h.log.Error("auth operation failed", slog.String("op", op), slog.Any("err", err))
		return presenter.Error(c, http.StatusInternalServerError, presenter.MsgInternal)
	}
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if kind := auth.KindOf(err); kind != 0 {
		return kind.String()
	}
	return auth.KindInternal.String()
}

func setTokenCookie(c *fiber.Ctx, tok auth.SessionToken) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    tok.Value,
		Path:     "/",
		Expires:  tok.ExpiresAt,
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
