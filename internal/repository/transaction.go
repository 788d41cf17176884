package repository

import (
	"context"

	"github.com/workhub/orders-api/internal/repository/dao"
	"gorm.io/gorm"
)

// TransactionManager scopes repository calls to one database transaction.
type TransactionManager struct {
	tx *dao.TxManager
}

func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{
		tx: dao.NewTxManager(db),
	}
}

func (m *TransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.tx.InTransaction(ctx, fn)
}
