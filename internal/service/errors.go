package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/workhub/orders-api/internal/repository"
)

var (
	ErrClientNotFound           = repository.ErrClientNotFound
	ErrClientEmailExists        = repository.ErrClientEmailExists
	ErrClientFiscalCodeExists   = repository.ErrClientFiscalCodeExists
	ErrClientHasOrders          = repository.ErrClientHasOrders
	ErrAffiliateProgramNotFound = repository.ErrAffiliateProgramNotFound
	ErrCardNumberExists         = repository.ErrCardNumberExists
	ErrTierNotFound             = repository.ErrTierNotFound
	ErrProductNotFound          = repository.ErrProductNotFound
	ErrProductSKUExists         = repository.ErrProductSKUExists
	ErrCategoryNotFound         = repository.ErrCategoryNotFound
	ErrCategoryExists           = repository.ErrCategoryExists
	ErrPointOfSalesNotFound     = repository.ErrPointOfSalesNotFound
	ErrPointOfSalesNameExists   = repository.ErrPointOfSalesNameExists
	ErrOrderNotFound            = repository.ErrOrderNotFound

	ErrOrderLocked = errors.New("order has already accrued points")
)

// ValidationError lists every rule an input broke.
type ValidationError struct {
	Violations []string
}

func NewValidationError(errs ...error) *ValidationError {
	v := &ValidationError{}
	for _, err := range errs {
		if err != nil {
			v.Violations = append(v.Violations, err.Error())
		}
	}

	return v
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// MissingClientsError names the client ids of an order that do not exist.
type MissingClientsError struct {
	IDs []uint
}

func (e *MissingClientsError) Error() string {
	return fmt.Sprintf("%v: %v", ErrClientNotFound, e.IDs)
}

func (e *MissingClientsError) Is(target error) bool {
	return target == ErrClientNotFound
}
