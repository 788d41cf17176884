package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workhub/orders-api/internal/api/handler/v1/request"
	"github.com/workhub/orders-api/internal/api/handler/v1/response"
	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/service"
)

type CustomerService interface {
	RegisterCustomer(ctx context.Context, client domain.Client, tier string) (domain.Client, error)
	ListCustomers(ctx context.Context) ([]domain.Client, error)
	GetCustomer(ctx context.Context, id uint) (domain.ClientDetail, error)
	UpdateCustomer(ctx context.Context, id uint, u domain.ClientUpdate) (domain.Client, error)
	DeleteCustomer(ctx context.Context, id uint) error
}

type CustomerHandler struct {
	svc CustomerService
}

func NewCustomerHandler(svc CustomerService) *CustomerHandler {
	return &CustomerHandler{
		svc: svc,
	}
}

// HandleRegisterCustomer godoc
// @Summary      Register a customer
// @Description  Creates a customer and enrols them in the affiliate program with a new card number.
// @Description  affiliate_tier defaults to standard; "none" registers the customer without a program.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        input  body      request.RegisterCustomerRequest  true  "Customer"
// @Success      201    {object}  domain.Client
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /customers [post]
// @Security     BearerAuth
func (h *CustomerHandler) HandleRegisterCustomer(ctx *gin.Context) {
	var input request.RegisterCustomerRequest
	if !bindAndValidate(ctx, &input) {
		return
	}

	client, err := h.svc.RegisterCustomer(ctx.Request.Context(), input.ToDomain(), input.AffiliateTier)
	if err != nil {
		if respErr, ok := validationErr(err); ok {
			response.RenderErr(ctx, respErr)
			return
		}
		if respErr, ok := conflictErr(err, service.ErrClientEmailExists, service.ErrClientFiscalCodeExists, service.ErrCardNumberExists); ok {
			response.RenderErr(ctx, respErr)
			return
		}
		if errors.Is(err, service.ErrTierNotFound) {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("affiliate tier %q is not configured", input.AffiliateTier)))
			return
		}

		err = fmt.Errorf("HandleRegisterCustomer -> h.svc.RegisterCustomer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, client)
}

// HandleListCustomers godoc
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]domain.Client}
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /customers [get]
// @Security     BearerAuth
func (h *CustomerHandler) HandleListCustomers(ctx *gin.Context) {
	clients, err := h.svc.ListCustomers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListCustomers -> h.svc.ListCustomers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.OK(clients))
}

// HandleGetCustomer godoc
// @Summary      Get a customer
// @Description  Returns the customer, their affiliate program and the orders they appear in.
// @Tags         customers
// @Produce      json
// @Param        customerID  path      int  true  "Customer ID"
// @Success      200         {object}  domain.ClientDetail
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /customers/{customerID} [get]
// @Security     BearerAuth
func (h *CustomerHandler) HandleGetCustomer(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "customerID")
	if !ok {
		return
	}

	detail, err := h.svc.GetCustomer(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("customer", "id", id))
			return
		}

		err = fmt.Errorf("HandleGetCustomer -> h.svc.GetCustomer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, detail)
}

// HandleUpdateCustomer godoc
// @Summary      Update a customer
// @Description  Changes contact and address fields. The affiliate program is not editable here.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        customerID  path      int                            true  "Customer ID"
// @Param        input       body      request.UpdateCustomerRequest  true  "Fields to change"
// @Success      200         {object}  domain.Client
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /customers/{customerID} [patch]
// @Security     BearerAuth
func (h *CustomerHandler) HandleUpdateCustomer(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "customerID")
	if !ok {
		return
	}

	var input request.UpdateCustomerRequest
	if !bindAndValidate(ctx, &input) {
		return
	}

	client, err := h.svc.UpdateCustomer(ctx.Request.Context(), id, input.ToDomain())
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("customer", "id", id))
			return
		}
		if respErr, ok := conflictErr(err, service.ErrClientEmailExists, service.ErrClientFiscalCodeExists); ok {
			response.RenderErr(ctx, respErr)
			return
		}

		err = fmt.Errorf("HandleUpdateCustomer -> h.svc.UpdateCustomer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, client)
}

// HandleDeleteCustomer godoc
// @Summary      Delete a customer
// @Description  Deletes the customer and their affiliate program. Customers that appear in orders cannot be deleted.
// @Tags         customers
// @Produce      json
// @Param        customerID  path      int  true  "Customer ID"
// @Success      200         {object}  response.Envelope
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /customers/{customerID} [delete]
// @Security     BearerAuth
func (h *CustomerHandler) HandleDeleteCustomer(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "customerID")
	if !ok {
		return
	}

	if err := h.svc.DeleteCustomer(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("customer", "id", id))
			return
		}
		if respErr, ok := conflictErr(err, service.ErrClientHasOrders); ok {
			response.RenderErr(ctx, respErr)
			return
		}

		err = fmt.Errorf("HandleDeleteCustomer -> h.svc.DeleteCustomer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.OK(gin.H{"id": id}))
}
