package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes carried in the error envelope.
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeUserExists         = "USER_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeBanned             = "BANNED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

// ErrorBody carries the machine-readable part of a failure envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the uniform shape of every response, success or failure,
// so clients branch on the single Success boolean.
type Envelope[T any] struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    T          `json:"data,omitempty"`
	Meta    any        `json:"meta,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// Success writes a success envelope. A zero status defaults to 200.
func Success[T any](c *gin.Context, status int, message string, data T, meta any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Envelope[T]{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// Error writes a failure envelope. A zero status defaults to 500 and an
// empty code to the generic internal code.
func Error(c *gin.Context, status int, message, code string, details any) {
	c.JSON(errorEnvelope(status, message, code, details))
}

// AbortError writes a failure envelope and aborts the handler chain.
// Middleware uses this to short-circuit the pipeline.
func AbortError(c *gin.Context, status int, message, code string, details any) {
	c.AbortWithStatusJSON(errorEnvelope(status, message, code, details))
}

func errorEnvelope(status int, message, code string, details any) (int, Envelope[any]) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if code == "" {
		code = CodeInternal
	}
	return status, Envelope[any]{
		Success: false,
		Message: message,
		Error:   &ErrorBody{Code: code, Details: details},
	}
}
