// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"context"

	"github.com/sales-backoffice/backend/internal/application/adapter"
	"github.com/sales-backoffice/backend/internal/domain/entity"
)

// ListBatchesInput holds pagination parameters.
type ListBatchesInput struct {
	Limit  int
	Offset int
}

// ListBatchesOutput is one page of batches.
type ListBatchesOutput struct {
	Batches []*entity.ReconciliationBatch
	Total   int64
}

// ListBatchesUseCase lists reconciliation batches, newest period first.
type ListBatchesUseCase struct {
	reconciliationRepo adapter.ReconciliationRepository
}

// NewListBatchesUseCase creates a new ListBatchesUseCase instance.
func NewListBatchesUseCase(reconciliationRepo adapter.ReconciliationRepository) *ListBatchesUseCase {
	return &ListBatchesUseCase{
		reconciliationRepo: reconciliationRepo,
	}
}

// Execute returns one page of batches and the total count.
func (uc *ListBatchesUseCase) Execute(ctx context.Context, input ListBatchesInput) (*ListBatchesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	batches, total, err := uc.reconciliationRepo.ListBatches(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	return &ListBatchesOutput{Batches: batches, Total: total}, nil
}
