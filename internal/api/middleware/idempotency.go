package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workhub/orders-api/internal/api/handler/v1/response"
	"github.com/workhub/orders-api/internal/idempotency"
	"github.com/workhub/orders-api/internal/logger"
	"github.com/workhub/orders-api/internal/metrics"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

var (
	errKeyReused     = errors.New("idempotency key was already used with a different request")
	errKeyInProgress = errors.New("a request with this idempotency key is still being processed")
)

// responseRecorder keeps a copy of what the handler writes.
type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a request whose Idempotency-Key
// was already used with the same payload. Reusing a key with a different
// payload, or while the first request is still running, is a 409. Server
// errors are not stored, so the client may retry them.
func Idempotency(store idempotency.Store) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.GetHeader(HeaderIdempotencyKey)
		if key == "" || ctx.Request.Method != http.MethodPost {
			ctx.Next()
			return
		}

		log := logger.FromContext(ctx.Request.Context()).With(zap.String("idempotency_key", key))

		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		ctx.Request.Body = io.NopCloser(bytes.NewReader(body))

		fingerprint := idempotency.Fingerprint(ctx.Request.Method, ctx.Request.URL.Path, body)

		rec, claimed, err := store.Begin(ctx.Request.Context(), key, fingerprint)
		if err != nil {
			log.Warn("idempotency store unavailable, processing without it", zap.Error(err))
			ctx.Next()
			return
		}

		if !claimed {
			switch {
			case rec.Fingerprint != fingerprint:
				response.RenderErr(ctx, response.ErrConflict(errKeyReused))
			case rec.Pending:
				response.RenderErr(ctx, response.ErrConflict(errKeyInProgress))
			default:
				metrics.IncIdempotentReplay()
				ctx.Header(HeaderReplayed, "true")
				ctx.Data(rec.StatusCode, "application/json; charset=utf-8", rec.Body)
				ctx.Abort()
			}
			return
		}

		recorder := &responseRecorder{ResponseWriter: ctx.Writer}
		ctx.Writer = recorder

		ctx.Next()

		status := recorder.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Abort(ctx.Request.Context(), key); err != nil {
				log.Warn("release idempotency key", zap.Error(err))
			}
			return
		}

		err = store.Complete(ctx.Request.Context(), key, idempotency.Record{
			Fingerprint: fingerprint,
			StatusCode:  status,
			Body:        recorder.body.Bytes(),
		})
		if err != nil {
			log.Warn("store idempotent response", zap.Error(err))
		}
	}
}
