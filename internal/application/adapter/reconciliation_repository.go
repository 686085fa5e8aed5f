// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/sales-backoffice/backend/internal/domain/entity"
)

// ReconciliationRepository defines the persistence operations for batches and
// their lines.
type ReconciliationRepository interface {
	// CreateBatch persists a batch together with its lines.
	CreateBatch(ctx context.Context, batch *entity.ReconciliationBatch, lines []*entity.ReconciliationLine) error

	// GetBatch returns a batch by id, or (nil, nil) when it does not exist.
	GetBatch(ctx context.Context, id uuid.UUID) (*entity.ReconciliationBatch, error)

	// ListBatches returns batches ordered by period descending, plus the total count.
	ListBatches(ctx context.Context, limit, offset int) ([]*entity.ReconciliationBatch, int64, error)

	// DeleteBatch removes a batch and all lines it owns.
	DeleteBatch(ctx context.Context, id uuid.UUID) error

	// GetLine returns a line by id, or (nil, nil) when it does not exist.
	GetLine(ctx context.Context, id uuid.UUID) (*entity.ReconciliationLine, error)

	// ListLines returns every line of a batch in ingestion order.
	ListLines(ctx context.Context, batchID uuid.UUID) ([]*entity.ReconciliationLine, error)

	// SaveLine persists the mutable fields of a line.
	SaveLine(ctx context.Context, line *entity.ReconciliationLine) error

	// SaveBatchAggregate persists the recomputed aggregate fields of a batch.
	SaveBatchAggregate(ctx context.Context, batch *entity.ReconciliationBatch) error
}

// Repositories groups the repositories bound to one storage transaction.
type Repositories struct {
	Reconciliation ReconciliationRepository
	Billing        BillingRepository
}

// TransactionManager runs a function within a single atomic storage
// transaction. Every mutating engine operation re-reads state inside the
// transaction and writes back the recomputed aggregate before commit; on any
// error the whole step rolls back.
type TransactionManager interface {
	InTransaction(ctx context.Context, fn func(repos Repositories) error) error
}
