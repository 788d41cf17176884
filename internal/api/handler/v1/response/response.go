package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workhub/orders-api/internal/logger"
)

// Err is the error body of every failed request.
type Err struct {
	Err            error    `json:"-"`
	HTTPStatusCode int      `json:"code"`
	Message        string   `json:"message"`
	Details        []string `json:"details,omitempty"`
}

func (e *Err) Error() string {
	return e.Message
}

// Envelope wraps successful list responses.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func OK(data any) Envelope {
	return Envelope{
		Success: true,
		Data:    data,
		Message: "OK",
	}
}

// RenderErr writes err as JSON and aborts the chain. Server errors are logged
// with the request id; their cause never reaches the client.
func RenderErr(ctx *gin.Context, err *Err) {
	if err.HTTPStatusCode >= http.StatusInternalServerError {
		logger.FromContext(ctx.Request.Context()).Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.Error(err.Err),
		)
	}

	ctx.AbortWithStatusJSON(err.HTTPStatusCode, err)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		Message:        err.Error(),
	}
}

// ErrValidation reports every violation in Details.
func ErrValidation(violations []string) *Err {
	return &Err{
		Err:            errors.New("validation failed"),
		HTTPStatusCode: http.StatusBadRequest,
		Message:        "validation failed",
		Details:        violations,
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		Message:        "unauthorized",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		Message:        "permission denied",
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		Err:            fmt.Errorf("%v with %v = %v not found", resource, key, value),
		HTTPStatusCode: http.StatusNotFound,
		Message:        fmt.Sprintf("%v with %v = %v not found", resource, key, value),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		Message:        err.Error(),
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		Message:        "internal server error",
	}
}
