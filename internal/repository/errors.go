package repository

import "github.com/workhub/orders-api/internal/repository/dao"

var (
	ErrClientNotFound           = dao.ErrClientNotFound
	ErrClientEmailExists        = dao.ErrClientEmailExists
	ErrClientFiscalCodeExists   = dao.ErrClientFiscalCodeExists
	ErrClientHasOrders          = dao.ErrClientHasOrders
	ErrAffiliateProgramNotFound = dao.ErrAffiliateProgramNotFound
	ErrCardNumberExists         = dao.ErrCardNumberExists
	ErrTierNotFound             = dao.ErrTierNotFound
	ErrProductNotFound          = dao.ErrProductNotFound
	ErrProductSKUExists         = dao.ErrProductSKUExists
	ErrCategoryNotFound         = dao.ErrCategoryNotFound
	ErrCategoryExists           = dao.ErrCategoryExists
	ErrPointOfSalesNotFound     = dao.ErrPointOfSalesNotFound
	ErrPointOfSalesNameExists   = dao.ErrPointOfSalesNameExists
	ErrOrderNotFound            = dao.ErrOrderNotFound
)
