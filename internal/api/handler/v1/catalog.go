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

type CatalogService interface {
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	GetProduct(ctx context.Context, id uint) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateCategory(ctx context.Context, name string) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreatePointOfSales(ctx context.Context, pos domain.PointOfSales) (domain.PointOfSales, error)
	ListPointsOfSales(ctx context.Context) ([]domain.PointOfSales, error)
	ListTiers(ctx context.Context) ([]domain.AffiliateTier, error)
}

type CatalogHandler struct {
	svc CatalogService
}

func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{
		svc: svc,
	}
}

// HandleCreateProduct godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateProductRequest  true  "Product"
// @Success      201    {object}  domain.Product
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /products [post]
// @Security     BearerAuth
func (h *CatalogHandler) HandleCreateProduct(ctx *gin.Context) {
	var input request.CreateProductRequest
	if !bindAndValidate(ctx, &input) {
		return
	}

	product, err := h.svc.CreateProduct(ctx.Request.Context(), input.ToDomain())
	if err != nil {
		if respErr, ok := validationErr(err); ok {
			response.RenderErr(ctx, respErr)
			return
		}
		if respErr, ok := conflictErr(err, service.ErrProductSKUExists); ok {
			response.RenderErr(ctx, respErr)
			return
		}
		if errors.Is(err, service.ErrCategoryNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("category", "id", input.CategoryID))
			return
		}

		err = fmt.Errorf("HandleCreateProduct -> h.svc.CreateProduct -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

// HandleListProducts godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]domain.Product}
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /products [get]
// @Security     BearerAuth
func (h *CatalogHandler) HandleListProducts(ctx *gin.Context) {
	products, err := h.svc.ListProducts(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListProducts -> h.svc.ListProducts -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.OK(products))
}

// HandleGetProduct godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        productID  path      int  true  "Product ID"
// @Success      200        {object}  domain.Product
// @Failure      400        {object}  response.Err
// @Failure      401        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /products/{productID} [get]
// @Security     BearerAuth
func (h *CatalogHandler) HandleGetProduct(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "productID")
	if !ok {
		return
	}

	product, err := h.svc.GetProduct(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("product", "id", id))
			return
		}

		err = fmt.Errorf("HandleGetProduct -> h.svc.GetProduct -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// HandleCreateCategory godoc
// @Summary      Create a product category
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateCategoryRequest  true  "Category"
// @Success      201    {object}  domain.Category
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /categories [post]
// @Security     BearerAuth
func (h *CatalogHandler) HandleCreateCategory(ctx *gin.Context) {
	var input request.CreateCategoryRequest
	if !bindAndValidate(ctx, &input) {
		return
	}

	category, err := h.svc.CreateCategory(ctx.Request.Context(), input.Name)
	if err != nil {
		if respErr, ok := conflictErr(err, service.ErrCategoryExists); ok {
			response.RenderErr(ctx, respErr)
			return
		}

		err = fmt.Errorf("HandleCreateCategory -> h.svc.CreateCategory -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, category)
}

// HandleListCategories godoc
// @Summary      List product categories
// @Tags         products
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]domain.Category}
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /categories [get]
// @Security     BearerAuth
func (h *CatalogHandler) HandleListCategories(ctx *gin.Context) {
	categories, err := h.svc.ListCategories(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListCategories -> h.svc.ListCategories -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.OK(categories))
}

// HandleCreatePointOfSales godoc
// @Summary      Register a point of sale
// @Tags         points-of-sale
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreatePointOfSalesRequest  true  "Point of sale"
// @Success      201    {object}  domain.PointOfSales
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /points-of-sale [post]
// @Security     BearerAuth
func (h *CatalogHandler) HandleCreatePointOfSales(ctx *gin.Context) {
	var input request.CreatePointOfSalesRequest
	if !bindAndValidate(ctx, &input) {
		return
	}

	pos, err := h.svc.CreatePointOfSales(ctx.Request.Context(), input.ToDomain())
	if err != nil {
		if respErr, ok := conflictErr(err, service.ErrPointOfSalesNameExists); ok {
			response.RenderErr(ctx, respErr)
			return
		}

		err = fmt.Errorf("HandleCreatePointOfSales -> h.svc.CreatePointOfSales -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, pos)
}

// HandleListPointsOfSales godoc
// @Summary      List points of sale
// @Tags         points-of-sale
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]domain.PointOfSales}
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /points-of-sale [get]
// @Security     BearerAuth
func (h *CatalogHandler) HandleListPointsOfSales(ctx *gin.Context) {
	points, err := h.svc.ListPointsOfSales(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListPointsOfSales -> h.svc.ListPointsOfSales -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.OK(points))
}

// HandleListTiers godoc
// @Summary      List affiliate tiers
// @Tags         customers
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]domain.AffiliateTier}
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /affiliate-tiers [get]
// @Security     BearerAuth
func (h *CatalogHandler) HandleListTiers(ctx *gin.Context) {
	tiers, err := h.svc.ListTiers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListTiers -> h.svc.ListTiers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.OK(tiers))
}
