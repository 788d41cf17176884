package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/workhub/orders-api/internal/api/middleware"
	"github.com/workhub/orders-api/internal/config"
	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/idempotency"
	"github.com/workhub/orders-api/internal/loyalty"
	"github.com/workhub/orders-api/internal/pkg/jwthelper"
	"github.com/workhub/orders-api/internal/repository/dao"
)

const signingKey = "test-signing-key"

type testServer struct {
	t     *testing.T
	s     *Server
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, dao.InitTables(db))

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Environment:        "test",
			BaseURL:            "localhost:8080",
			AllowedCORSDomains: []string{"http://localhost:5173"},
			JWTSigningKey:      signingKey,
		},
		Gin:     &config.GinConfig{Mode: "test"},
		Loyalty: &config.LoyaltyConfig{PremiumAfterOrders: 3},
		Orders:  &config.OrdersConfig{DefaultCourier: domain.DefaultCourier},
	}

	calc, err := loyalty.NewCalculator(loyalty.DefaultRules())
	require.NoError(t, err)

	s := NewServer(conf, db, calc, idempotency.NewMemoryStore(time.Hour))
	require.NoError(t, s.Bootstrap(context.Background()))

	token, err := jwthelper.GenerateToken([]byte(signingKey), 1, "test")
	require.NoError(t, err)

	return &testServer{t: t, s: s, token: token}
}

func (ts *testServer) request(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	ts.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	ts.s.Router.ServeHTTP(w, req)

	return w
}

func (ts *testServer) create(path string, body any) uint {
	ts.t.Helper()

	w := ts.request(http.MethodPost, path, body, nil)
	require.Equal(ts.t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &created))

	return created.ID
}

func location() map[string]string {
	return map[string]string{"address": "Via Roma 1", "city": "Milano", "state": "MI", "zip_code": "20100", "country": "IT"}
}

func (ts *testServer) customer(n int, tier string) uint {
	return ts.create("/api/v1/customers", map[string]any{
		"email":          fmt.Sprintf("customer%d@example.com", n),
		"first_name":     "Mario",
		"last_name":      "Rossi",
		"fiscal_code":    fmt.Sprintf("RSSMRA80A01F2%02dX", n),
		"phone_number":   "+393331234567",
		"birth_date":     "1980-01-01",
		"location":       location(),
		"affiliate_tier": tier,
	})
}

func TestServer_Healthcheck(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	ts.s.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_RequiresToken(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	w := httptest.NewRecorder()
	ts.s.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_OrderLifecycle(t *testing.T) {
	ts := newTestServer(t)

	category := ts.create("/api/v1/categories", map[string]any{"name": "Living"})
	product := ts.create("/api/v1/products", map[string]any{
		"name": "LACK side table", "sku": "LACK-001", "price": "12.50", "category_id": category,
	})
	pos := ts.create("/api/v1/points-of-sale", map[string]any{"name": "Milano Centrale", "location": location()})
	member := ts.customer(1, "standard")
	guest := ts.customer(2, "none")

	order := map[string]any{
		"point_of_sales_id": pos,
		"product_id":        product,
		"total_quantity":    5,
		"clients": []map[string]any{
			{"client_id": member, "quantity": 4},
			{"client_id": guest, "quantity": 1},
		},
	}

	// 4 x 12.50 = 50.00 at 2 points per 10.00.
	w := ts.request(http.MethodPost, "/api/v1/orders", order, map[string]string{middleware.HeaderIdempotencyKey: "order-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result domain.CreateOrderResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, domain.OrderStatusSent, result.Order.Status)
	assert.Equal(t, domain.DefaultCourier, result.Order.Courier)
	require.Len(t, result.Accruals, 2)

	accruals := map[uint]domain.ClientAccrual{}
	for _, a := range result.Accruals {
		accruals[a.ClientID] = a
	}
	assert.Equal(t, 10, accruals[member].Points)
	assert.Equal(t, domain.SkipNotMember, accruals[guest].Skipped)

	// Same key and payload replays without a second order.
	replay := ts.request(http.MethodPost, "/api/v1/orders", order, map[string]string{middleware.HeaderIdempotencyKey: "order-1"})
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(middleware.HeaderReplayed))
	assert.JSONEq(t, w.Body.String(), replay.Body.String())

	var list struct {
		Data []domain.OrderSummary `json:"data"`
	}
	w = ts.request(http.MethodGet, "/api/v1/orders", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	for _, c := range list.Data[0].Clients {
		if c.ClientID == member {
			assert.Equal(t, 10, c.PointsEarned)
			assert.Equal(t, 10, c.TotalPoints)
			assert.Equal(t, int64(1), c.TotalOrders)
		}
	}

	// Product and clients are frozen once points were awarded.
	path := fmt.Sprintf("/api/v1/orders/%d", result.Order.ID)
	w = ts.request(http.MethodPut, path, map[string]any{"clients": []map[string]any{{"client_id": member, "quantity": 1}}}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.request(http.MethodPut, path, map[string]any{"status": "delivered"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.request(http.MethodGet, fmt.Sprintf("/api/v1/customers/%d", member), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail domain.ClientDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Len(t, detail.Orders, 1)
	assert.Equal(t, 4, detail.Orders[0].Quantity)
	require.NotNil(t, detail.AffiliateProgram)
	assert.Equal(t, 10, detail.AffiliateProgram.Points)

	w = ts.request(http.MethodDelete, path, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.request(http.MethodGet, fmt.Sprintf("/api/v1/customers/%d", member), nil, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, 0, detail.AffiliateProgram.Points)
	assert.Empty(t, detail.Orders)
}

func TestServer_PromotesAfterThreshold(t *testing.T) {
	ts := newTestServer(t)

	category := ts.create("/api/v1/categories", map[string]any{"name": "Living"})
	product := ts.create("/api/v1/products", map[string]any{
		"name": "LACK side table", "sku": "LACK-001", "price": "12.50", "category_id": category,
	})
	pos := ts.create("/api/v1/points-of-sale", map[string]any{"name": "Milano Centrale", "location": location()})
	member := ts.customer(1, "")

	var promoted []bool
	for i := 0; i < 4; i++ {
		w := ts.request(http.MethodPost, "/api/v1/orders", map[string]any{
			"point_of_sales_id": pos,
			"product_id":        product,
			"total_quantity":    1,
			"clients":           []map[string]any{{"client_id": member, "quantity": 1}},
		}, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var result domain.CreateOrderResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		promoted = append(promoted, result.Accruals[0].Promoted)
	}

	assert.Equal(t, []bool{false, false, true, false}, promoted)

	w := ts.request(http.MethodGet, fmt.Sprintf("/api/v1/customers/%d", member), nil, nil)
	var detail domain.ClientDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, domain.TierPremium, detail.AffiliateProgram.Tier)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.request(http.MethodGet, "/api/v1/orders", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	ts.s.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "workhub_http_requests_total")
}
