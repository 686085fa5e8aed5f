// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/sales-backoffice/backend/internal/application/adapter"
)

// transactionManager implements adapter.TransactionManager on top of GORM.
type transactionManager struct {
	db *gorm.DB
}

// NewTransactionManager creates a new transaction manager instance.
func NewTransactionManager(db *gorm.DB) adapter.TransactionManager {
	return &transactionManager{
		db: db,
	}
}

// InTransaction runs fn with repositories bound to one database transaction.
// Any error rolls the whole step back.
func (m *transactionManager) InTransaction(ctx context.Context, fn func(repos adapter.Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(adapter.Repositories{
			Reconciliation: NewReconciliationRepository(tx),
			Billing:        NewBillingRepository(tx),
		})
	})
}
