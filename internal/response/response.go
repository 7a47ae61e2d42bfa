// Package response defines the envelope shared by both HTTP surfaces:
// {success, data?, error?:{code,message}}. Error messages are written for
// clients; operational detail belongs in the log, never in the body.
package response

import "github.com/labstack/echo/v4"

// Error codes used across the gateway and the auth edge.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimited        = "RATE_LIMITED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failure to the client.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OK writes a success envelope with the given status and payload.
func OK(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// Fail writes an error envelope with the given status, code and message.
func Fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}
