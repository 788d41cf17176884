package v1

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/service"
)

type mockCustomerService struct {
	mock.Mock
}

func (m *mockCustomerService) RegisterCustomer(ctx context.Context, client domain.Client, tier string) (domain.Client, error) {
	args := m.Called(ctx, client, tier)
	return args.Get(0).(domain.Client), args.Error(1)
}

func (m *mockCustomerService) ListCustomers(ctx context.Context) ([]domain.Client, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Client), args.Error(1)
}

func (m *mockCustomerService) GetCustomer(ctx context.Context, id uint) (domain.ClientDetail, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.ClientDetail), args.Error(1)
}

func (m *mockCustomerService) UpdateCustomer(ctx context.Context, id uint, u domain.ClientUpdate) (domain.Client, error) {
	args := m.Called(ctx, id, u)
	return args.Get(0).(domain.Client), args.Error(1)
}

func (m *mockCustomerService) DeleteCustomer(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func newCustomerRouter(svc CustomerService) *gin.Engine {
	h := NewCustomerHandler(svc)

	r := gin.New()
	r.POST("/customers", h.HandleRegisterCustomer)
	r.GET("/customers", h.HandleListCustomers)
	r.GET("/customers/:customerID", h.HandleGetCustomer)
	r.PATCH("/customers/:customerID", h.HandleUpdateCustomer)
	r.DELETE("/customers/:customerID", h.HandleDeleteCustomer)

	return r
}

func registerBody(tier string) string {
	return fmt.Sprintf(`{
		"email": "Mario.Rossi@Example.com",
		"first_name": "Mario",
		"last_name": "Rossi",
		"fiscal_code": "rssmra80a01f205x",
		"phone_number": "+393331234567",
		"birth_date": "1980-01-01",
		"location": {"address": "Via Roma 1", "city": "Milano", "state": "MI", "zip_code": "20100", "country": "IT"},
		"affiliate_tier": %q
	}`, tier)
}

func TestHandleRegisterCustomer(t *testing.T) {
	tests := []struct {
		name       string
		tier       string
		err        error
		wantStatus int
	}{
		{name: "created", tier: "standard", wantStatus: http.StatusCreated},
		{name: "without program", tier: "none", wantStatus: http.StatusCreated},
		{name: "duplicate email", tier: "standard", err: fmt.Errorf("s.clients.Create -> %w", service.ErrClientEmailExists), wantStatus: http.StatusConflict},
		{name: "duplicate fiscal code", tier: "standard", err: service.ErrClientFiscalCodeExists, wantStatus: http.StatusConflict},
		{name: "tier not configured", tier: "premium", err: service.ErrTierNotFound, wantStatus: http.StatusBadRequest},
		{name: "unknown tier", tier: "gold", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCustomerService{}
			svc.On("RegisterCustomer", mock.Anything, mock.MatchedBy(func(c domain.Client) bool {
				return c.Email == "mario.rossi@example.com" && c.FiscalCode == "RSSMRA80A01F205X"
			}), tt.tier).Return(domain.Client{ID: 1}, tt.err)

			w := do(newCustomerRouter(svc), http.MethodPost, "/customers", registerBody(tt.tier))

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestHandleRegisterCustomer_ReportsEveryViolation(t *testing.T) {
	svc := &mockCustomerService{}

	w := do(newCustomerRouter(svc), http.MethodPost, "/customers", `{"email":"nope","fiscal_code":"123","birth_date":"01/01/1980"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := decodeErr(t, w).Details
	assert.GreaterOrEqual(t, len(details), 5)
	svc.AssertNotCalled(t, "RegisterCustomer", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleGetCustomer(t *testing.T) {
	svc := &mockCustomerService{}
	svc.On("GetCustomer", mock.Anything, uint(1)).Return(domain.ClientDetail{
		Client: domain.Client{ID: 1},
		Orders: []domain.ClientOrder{{OrderID: 4, Quantity: 2}},
	}, nil)
	svc.On("GetCustomer", mock.Anything, uint(2)).Return(domain.ClientDetail{}, service.ErrClientNotFound)
	r := newCustomerRouter(svc)

	w := do(r, http.MethodGet, "/customers/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"order_id":4`)

	w = do(r, http.MethodGet, "/customers/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "customer with id = 2 not found", decodeErr(t, w).Message)
}

func TestHandleUpdateCustomer(t *testing.T) {
	svc := &mockCustomerService{}
	svc.On("UpdateCustomer", mock.Anything, uint(1), mock.MatchedBy(func(u domain.ClientUpdate) bool {
		return u.PhoneNumber != nil && *u.PhoneNumber == "+393330000000" && u.Email == nil
	})).Return(domain.Client{ID: 1}, nil)
	svc.On("UpdateCustomer", mock.Anything, uint(2), mock.Anything).Return(domain.Client{}, service.ErrClientEmailExists)
	r := newCustomerRouter(svc)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPatch, "/customers/1", `{"phone_number":"+393330000000"}`).Code)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPatch, "/customers/2", `{"email":"taken@example.com"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPatch, "/customers/1", `{"email":"not-an-email"}`).Code)
}

func TestHandleDeleteCustomer(t *testing.T) {
	svc := &mockCustomerService{}
	svc.On("DeleteCustomer", mock.Anything, uint(1)).Return(nil)
	svc.On("DeleteCustomer", mock.Anything, uint(2)).Return(service.ErrClientNotFound)
	svc.On("DeleteCustomer", mock.Anything, uint(3)).Return(fmt.Errorf("s.clients.Delete -> %w", service.ErrClientHasOrders))
	r := newCustomerRouter(svc)

	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/customers/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/customers/2", "").Code)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodDelete, "/customers/3", "").Code)
}
