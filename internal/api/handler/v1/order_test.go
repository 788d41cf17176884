package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/workhub/orders-api/internal/api/handler/v1/response"
	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) CreateOrder(ctx context.Context, in domain.NewOrder) (domain.CreateOrderResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.CreateOrderResult), args.Error(1)
}

func (m *mockOrderService) GetOrder(ctx context.Context, id uint) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *mockOrderService) UpdateOrder(ctx context.Context, id uint, u domain.OrderUpdate) (domain.Order, error) {
	args := m.Called(ctx, id, u)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *mockOrderService) DeleteOrder(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type mockOrderQuery struct {
	mock.Mock
}

func (m *mockOrderQuery) ListOrders(ctx context.Context) ([]domain.OrderSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.OrderSummary), args.Error(1)
}

type recordingPublisher struct {
	published []domain.CreateOrderResult
}

func (p *recordingPublisher) PublishOrderCreated(result domain.CreateOrderResult) {
	p.published = append(p.published, result)
}

func newOrderRouter(svc OrderService, query OrderQueryService, events OrderPublisher) *gin.Engine {
	h := NewOrderHandler(svc, query, events)

	r := gin.New()
	r.POST("/orders", h.HandleCreateOrder)
	r.GET("/orders", h.HandleListOrders)
	r.GET("/orders/:orderID", h.HandleGetOrder)
	r.PUT("/orders/:orderID", h.HandleUpdateOrder)
	r.DELETE("/orders/:orderID", h.HandleDeleteOrder)

	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) response.Err {
	t.Helper()

	var body response.Err
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

const validOrder = `{"point_of_sales_id":1,"product_id":2,"total_quantity":10,"clients":[{"client_id":3,"quantity":4},{"client_id":4,"quantity":6}]}`

func TestHandleCreateOrder(t *testing.T) {
	t.Run("created and published", func(t *testing.T) {
		svc := &mockOrderService{}
		events := &recordingPublisher{}
		result := domain.CreateOrderResult{
			Order: domain.Order{ID: 7, TotalQuantity: 10},
			Accruals: []domain.ClientAccrual{
				{ClientID: 3, Tier: domain.TierStandard, Points: 8},
				{ClientID: 4, Skipped: domain.SkipNotMember},
			},
		}
		svc.On("CreateOrder", mock.Anything, mock.MatchedBy(func(in domain.NewOrder) bool {
			return in.ProductID == 2 && in.PointOfSalesID == 1 && len(in.Clients) == 2
		})).Return(result, nil)

		w := do(newOrderRouter(svc, &mockOrderQuery{}, events), http.MethodPost, "/orders", validOrder)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"skipped":"no_affiliate_program"`)
		require.Len(t, events.published, 1)
		assert.Equal(t, uint(7), events.published[0].Order.ID)
		svc.AssertExpectations(t)
	})

	t.Run("all violations reported together", func(t *testing.T) {
		svc := &mockOrderService{}
		body := `{"point_of_sales_id":0,"product_id":2,"total_quantity":5,"status":"lost","clients":[{"client_id":3,"quantity":4},{"client_id":3,"quantity":4}]}`

		w := do(newOrderRouter(svc, &mockOrderQuery{}, nil), http.MethodPost, "/orders", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		errBody := decodeErr(t, w)
		joined := strings.Join(errBody.Details, "\n")
		assert.Contains(t, joined, "point_of_sales_id")
		assert.Contains(t, joined, "status")
		assert.Contains(t, joined, domain.ErrAllocationExceedsTotal.Error())
		assert.Contains(t, joined, domain.ErrDuplicateClient.Error())
		svc.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := do(newOrderRouter(&mockOrderService{}, &mockOrderQuery{}, nil), http.MethodPost, "/orders", `{"product_id":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	notFound := []struct {
		name    string
		err     error
		message string
	}{
		{"product", service.ErrProductNotFound, "product with id = 2 not found"},
		{"point of sales", service.ErrPointOfSalesNotFound, "point of sales with id = 1 not found"},
		{"clients", &service.MissingClientsError{IDs: []uint{3, 4}}, "client with id = [3 4] not found"},
	}
	for _, tt := range notFound {
		t.Run("missing "+tt.name, func(t *testing.T) {
			svc := &mockOrderService{}
			svc.On("CreateOrder", mock.Anything, mock.Anything).Return(domain.CreateOrderResult{}, tt.err)
			events := &recordingPublisher{}

			w := do(newOrderRouter(svc, &mockOrderQuery{}, events), http.MethodPost, "/orders", validOrder)

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, tt.message, decodeErr(t, w).Message)
			assert.Empty(t, events.published)
		})
	}

	t.Run("unexpected error hides cause", func(t *testing.T) {
		svc := &mockOrderService{}
		svc.On("CreateOrder", mock.Anything, mock.Anything).Return(domain.CreateOrderResult{}, assert.AnError)

		w := do(newOrderRouter(svc, &mockOrderQuery{}, nil), http.MethodPost, "/orders", validOrder)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", decodeErr(t, w).Message)
	})
}

func TestHandleListOrders(t *testing.T) {
	query := &mockOrderQuery{}
	query.On("ListOrders", mock.Anything).Return([]domain.OrderSummary{
		{ID: 1, Clients: []domain.AllocationSummary{{ClientID: 3, PointsEarned: 4, TotalPoints: 12, TotalOrders: 2}}},
	}, nil)

	w := do(newOrderRouter(&mockOrderService{}, query, nil), http.MethodGet, "/orders", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool                  `json:"success"`
		Data    []domain.OrderSummary `json:"data"`
		Message string                `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "OK", body.Message)
	require.Len(t, body.Data, 1)
	assert.Equal(t, 12, body.Data[0].Clients[0].TotalPoints)
	assert.Equal(t, int64(2), body.Data[0].Clients[0].TotalOrders)
}

func TestHandleGetOrder(t *testing.T) {
	svc := &mockOrderService{}
	svc.On("GetOrder", mock.Anything, uint(5)).Return(domain.Order{ID: 5}, nil)
	svc.On("GetOrder", mock.Anything, uint(6)).Return(domain.Order{}, service.ErrOrderNotFound)
	r := newOrderRouter(svc, &mockOrderQuery{}, nil)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/orders/5", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/orders/6", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/orders/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/orders/0", "").Code)
}

func TestHandleUpdateOrder(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "updated", body: `{"status":"delivered"}`, wantStatus: http.StatusOK},
		{name: "locked", body: `{"product_id":3}`, err: service.ErrOrderLocked, wantStatus: http.StatusConflict},
		{name: "missing order", body: `{"note":"x"}`, err: service.ErrOrderNotFound, wantStatus: http.StatusNotFound},
		{name: "service validation", body: `{"total_quantity":1}`, err: service.NewValidationError(domain.ErrAllocationExceedsTotal), wantStatus: http.StatusBadRequest},
		{name: "empty clients", body: `{"clients":[]}`, wantStatus: http.StatusBadRequest},
		{name: "bad status", body: `{"status":"lost"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{}
			svc.On("UpdateOrder", mock.Anything, uint(9), mock.Anything).Return(domain.Order{ID: 9}, tt.err)

			w := do(newOrderRouter(svc, &mockOrderQuery{}, nil), http.MethodPut, "/orders/9", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusConflict {
				assert.Equal(t, service.ErrOrderLocked.Error(), decodeErr(t, w).Message)
			}
		})
	}
}

func TestHandleDeleteOrder(t *testing.T) {
	svc := &mockOrderService{}
	svc.On("DeleteOrder", mock.Anything, uint(1)).Return(nil)
	svc.On("DeleteOrder", mock.Anything, uint(2)).Return(service.ErrOrderNotFound)
	r := newOrderRouter(svc, &mockOrderQuery{}, nil)

	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/orders/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/orders/2", "").Code)
}
