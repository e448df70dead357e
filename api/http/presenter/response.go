package presenter

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/taskmanager/pkg/auth"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// ErrorResponse is the body of every non-2xx answer. Message is generic;
// details stay in the server log.
type ErrorResponse struct {
	Status  string `json:"status" example:"fail"`
	Message string `json:"message" example:"Incorrect email or password"`
}

type AccountData struct {
	Account auth.Account `json:"account"`
}

// AuthResponse is returned by signup, login and password change.
type AuthResponse struct {
	Status string      `json:"status" example:"success"`
	Token  string      `json:"token"`
	Data   AccountData `json:"data"`
}

// DataResponse wraps any other successful payload.
type DataResponse struct {
	Status     string `json:"status" example:"success"`
	Results    *int   `json:"results,omitempty"`
	Pagination any    `json:"pagination,omitempty"`
	Data       any    `json:"data"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

// Data writes a success envelope around data.
func Data(c *fiber.Ctx, status int, data any) error {
	return JSON(c, status, DataResponse{Status: StatusSuccess, Data: data})
}

// List writes a success envelope with a results count and page metadata.
func List(c *fiber.Ctx, n int, pagination any, data any) error {
	return JSON(c, fiber.StatusOK, DataResponse{
		Status:     StatusSuccess,
		Results:    &n,
		Pagination: pagination,
		Data:       data,
	})
}

func Auth(c *fiber.Ctx, status int, token string, account auth.Account) error {
	return JSON(c, status, AuthResponse{
		Status: StatusSuccess,
		Token:  token,
		Data:   AccountData{Account: account.Redacted()},
	})
}

// Error writes status "fail" for 4xx and "error" for everything else.
func Error(c *fiber.Ctx, status int, message string) error {
	s := StatusError
	if status >= 400 && status < 500 {
		s = StatusFail
	}
	return JSON(c, status, ErrorResponse{Status: s, Message: message})
}
