package dao

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrClientNotFound           = errors.New("client not found")
	ErrClientEmailExists        = errors.New("client email already exists")
	ErrClientFiscalCodeExists   = errors.New("client fiscal code already exists")
	ErrClientHasOrders          = errors.New("client appears in orders")
	ErrAffiliateProgramNotFound = errors.New("affiliate program not found")
	ErrCardNumberExists         = errors.New("card number already exists")
	ErrTierNotFound             = errors.New("affiliate tier not found")
	ErrProductNotFound          = errors.New("product not found")
	ErrProductSKUExists         = errors.New("product sku already exists")
	ErrCategoryNotFound         = errors.New("category not found")
	ErrCategoryExists           = errors.New("category already exists")
	ErrPointOfSalesNotFound     = errors.New("point of sales not found")
	ErrPointOfSalesNameExists   = errors.New("point of sales name already exists")
	ErrOrderNotFound            = errors.New("order not found")
)

// uniqueViolation reports whether err is a unique constraint violation and, if
// so, the constraint (postgres) or "table.column" (sqlite) that was violated.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgerrcode.UniqueViolation {
			return pgErr.ConstraintName, true
		}
		return "", false
	}

	const sqlitePrefix = "UNIQUE constraint failed: "
	msg := err.Error()
	if i := strings.Index(msg, sqlitePrefix); i >= 0 {
		return msg[i+len(sqlitePrefix):], true
	}

	return "", false
}

// mapUniqueViolation translates a unique violation on one of columns into the
// matching sentinel error. Other errors are returned unchanged.
func mapUniqueViolation(err error, columns map[string]error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return err
	}

	for column, sentinel := range columns {
		if strings.Contains(constraint, column) {
			return sentinel
		}
	}

	return err
}
