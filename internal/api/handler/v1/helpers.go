package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/workhub/orders-api/internal/api/handler/v1/request"
	"github.com/workhub/orders-api/internal/api/handler/v1/response"
	"github.com/workhub/orders-api/internal/service"
)

type validatable interface {
	Validate() error
}

// bindAndValidate decodes the JSON body into input and runs its rules. It
// renders the error itself and returns false when the request is rejected.
func bindAndValidate(ctx *gin.Context, input validatable) bool {
	if err := ctx.ShouldBindJSON(input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return false
	}

	if err := input.Validate(); err != nil {
		var vErr *request.ValidationError
		if errors.As(err, &vErr) {
			response.RenderErr(ctx, response.ErrValidation(vErr.Violations))
			return false
		}

		response.RenderErr(ctx, response.ErrBadRequest(err))
		return false
	}

	return true
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("%s must be a positive integer", name)))
		return 0, false
	}

	return uint(id), true
}

// validationErr converts a service validation failure into a 400.
func validationErr(err error) (*response.Err, bool) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		return response.ErrValidation(vErr.Violations), true
	}

	return nil, false
}

// conflictErr returns a 409 carrying the first sentinel err wraps.
func conflictErr(err error, sentinels ...error) (*response.Err, bool) {
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return response.ErrConflict(sentinel), true
		}
	}

	return nil, false
}
