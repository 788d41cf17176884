package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/orders/:id", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/orders/:id", "204"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/8", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/orders/:id", "204"))
	assert.Equal(t, before+2, after)
}

func TestAddPointsAwarded_IgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(pointsAwarded.WithLabelValues("standard"))

	AddPointsAwarded("standard", 0)
	AddPointsAwarded("standard", -3)
	AddPointsAwarded("standard", 4)

	assert.Equal(t, before+4, testutil.ToFloat64(pointsAwarded.WithLabelValues("standard")))
}
