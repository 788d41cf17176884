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

type OrderService interface {
	CreateOrder(ctx context.Context, in domain.NewOrder) (domain.CreateOrderResult, error)
	GetOrder(ctx context.Context, id uint) (domain.Order, error)
	UpdateOrder(ctx context.Context, id uint, u domain.OrderUpdate) (domain.Order, error)
	DeleteOrder(ctx context.Context, id uint) error
}

type OrderQueryService interface {
	ListOrders(ctx context.Context) ([]domain.OrderSummary, error)
}

// OrderPublisher is told about every order created through the API.
type OrderPublisher interface {
	PublishOrderCreated(result domain.CreateOrderResult)
}

type OrderHandler struct {
	svc    OrderService
	query  OrderQueryService
	events OrderPublisher
}

func NewOrderHandler(svc OrderService, query OrderQueryService, events OrderPublisher) *OrderHandler {
	return &OrderHandler{
		svc:    svc,
		query:  query,
		events: events,
	}
}

// HandleCreateOrder godoc
// @Summary      Create an order
// @Description  Creates an order, credits affiliate points to every member client and promotes clients that reach the order threshold.
// @Description  Per-client accrual failures are reported in accruals and do not roll the order back.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                      false  "Replay protection key"
// @Param        input            body      request.CreateOrderRequest  true   "Order"
// @Success      201              {object}  domain.CreateOrderResult
// @Failure      400              {object}  response.Err
// @Failure      401              {object}  response.Err
// @Failure      404              {object}  response.Err
// @Failure      409              {object}  response.Err
// @Failure      500              {object}  response.Err
// @Router       /orders [post]
// @Security     BearerAuth
func (h *OrderHandler) HandleCreateOrder(ctx *gin.Context) {
	var input request.CreateOrderRequest
	if !bindAndValidate(ctx, &input) {
		return
	}

	result, err := h.svc.CreateOrder(ctx.Request.Context(), input.ToDomain())
	if err != nil {
		if respErr, ok := validationErr(err); ok {
			response.RenderErr(ctx, respErr)
			return
		}

		var missing *service.MissingClientsError
		switch {
		case errors.As(err, &missing):
			response.RenderErr(ctx, response.ErrNotFound("client", "id", missing.IDs))
		case errors.Is(err, service.ErrProductNotFound):
			response.RenderErr(ctx, response.ErrNotFound("product", "id", input.ProductID))
		case errors.Is(err, service.ErrPointOfSalesNotFound):
			response.RenderErr(ctx, response.ErrNotFound("point of sales", "id", input.PointOfSalesID))
		default:
			err = fmt.Errorf("HandleCreateOrder -> h.svc.CreateOrder -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	if h.events != nil {
		h.events.PublishOrderCreated(result)
	}

	ctx.JSON(http.StatusCreated, result)
}

// HandleListOrders godoc
// @Summary      List orders
// @Description  Lists every order with the live points, balance and order count of each client.
// @Tags         orders
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]domain.OrderSummary}
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /orders [get]
// @Security     BearerAuth
func (h *OrderHandler) HandleListOrders(ctx *gin.Context) {
	orders, err := h.query.ListOrders(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListOrders -> h.query.ListOrders -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.OK(orders))
}

// HandleGetOrder godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        orderID  path      int  true  "Order ID"
// @Success      200      {object}  domain.Order
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /orders/{orderID} [get]
// @Security     BearerAuth
func (h *OrderHandler) HandleGetOrder(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "orderID")
	if !ok {
		return
	}

	order, err := h.svc.GetOrder(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("order", "id", id))
			return
		}

		err = fmt.Errorf("HandleGetOrder -> h.svc.GetOrder -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleUpdateOrder godoc
// @Summary      Update an order
// @Description  Partially updates an order. Product and clients cannot change once the order has awarded points.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderID  path      int                         true  "Order ID"
// @Param        input    body      request.UpdateOrderRequest  true  "Fields to change"
// @Success      200      {object}  domain.Order
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /orders/{orderID} [put]
// @Security     BearerAuth
func (h *OrderHandler) HandleUpdateOrder(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "orderID")
	if !ok {
		return
	}

	var input request.UpdateOrderRequest
	if !bindAndValidate(ctx, &input) {
		return
	}

	order, err := h.svc.UpdateOrder(ctx.Request.Context(), id, input.ToDomain())
	if err != nil {
		if respErr, ok := validationErr(err); ok {
			response.RenderErr(ctx, respErr)
			return
		}
		if respErr, ok := conflictErr(err, service.ErrOrderLocked); ok {
			response.RenderErr(ctx, respErr)
			return
		}

		var missing *service.MissingClientsError
		switch {
		case errors.As(err, &missing):
			response.RenderErr(ctx, response.ErrNotFound("client", "id", missing.IDs))
		case errors.Is(err, service.ErrOrderNotFound):
			response.RenderErr(ctx, response.ErrNotFound("order", "id", id))
		case errors.Is(err, service.ErrProductNotFound):
			response.RenderErr(ctx, response.ErrNotFound("product", "id", *input.ProductID))
		case errors.Is(err, service.ErrPointOfSalesNotFound):
			response.RenderErr(ctx, response.ErrNotFound("point of sales", "id", *input.PointOfSalesID))
		default:
			err = fmt.Errorf("HandleUpdateOrder -> h.svc.UpdateOrder -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleDeleteOrder godoc
// @Summary      Delete an order
// @Description  Deletes the order and deducts the points it awarded. Balances never go below zero and tiers are kept.
// @Tags         orders
// @Produce      json
// @Param        orderID  path      int  true  "Order ID"
// @Success      200      {object}  response.Envelope
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /orders/{orderID} [delete]
// @Security     BearerAuth
func (h *OrderHandler) HandleDeleteOrder(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "orderID")
	if !ok {
		return
	}

	if err := h.svc.DeleteOrder(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("order", "id", id))
			return
		}

		err = fmt.Errorf("HandleDeleteOrder -> h.svc.DeleteOrder -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.OK(gin.H{"id": id}))
}
