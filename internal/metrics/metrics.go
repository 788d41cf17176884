package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workhub_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workhub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workhub_orders_created_total",
		Help: "Number of orders created",
	})

	pointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workhub_points_awarded_total",
		Help: "Affiliate points awarded, by the tier the rate was taken from",
	}, []string{"tier"})

	pointsReverted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workhub_points_reverted_total",
		Help: "Affiliate points deducted because their order was deleted",
	})

	tierPromotions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workhub_tier_promotions_total",
		Help: "Affiliate programs promoted, by target tier",
	}, []string{"tier"})

	accrualOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workhub_accrual_outcomes_total",
		Help: "Per-client accrual results by outcome",
	}, []string{"outcome"})

	idempotentReplays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workhub_idempotent_replays_total",
		Help: "Requests answered from the idempotency store",
	})
)

const (
	OutcomeAwarded = "awarded"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncOrdersCreated() {
	ordersCreated.Inc()
}

func AddPointsAwarded(tier string, points int) {
	if points <= 0 {
		return
	}
	pointsAwarded.WithLabelValues(tier).Add(float64(points))
}

func AddPointsReverted(points int) {
	if points <= 0 {
		return
	}
	pointsReverted.Add(float64(points))
}

func IncTierPromotion(tier string) {
	tierPromotions.WithLabelValues(tier).Inc()
}

// ObserveAccrual counts one client's accrual result, see the Outcome constants.
func ObserveAccrual(outcome string) {
	accrualOutcomes.WithLabelValues(outcome).Inc()
}

func IncIdempotentReplay() {
	idempotentReplays.Inc()
}
