package middleware

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/workhub/orders-api/internal/logger"
)

// RequestLogger puts the request id set by requestid.New into the request
// context so service-level logs carry it. It must run after requestid.New.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := requestid.Get(ctx)
		ctx.Request = ctx.Request.WithContext(logger.WithRequestID(ctx.Request.Context(), id))
		ctx.Next()
	}
}
