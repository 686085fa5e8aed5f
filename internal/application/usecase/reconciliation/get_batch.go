// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"context"

	"github.com/google/uuid"

	"github.com/sales-backoffice/backend/internal/application/adapter"
	"github.com/sales-backoffice/backend/internal/domain/entity"
	domainerror "github.com/sales-backoffice/backend/internal/domain/error"
)

// GetBatchInput identifies the batch to fetch.
type GetBatchInput struct {
	BatchID uuid.UUID
}

// GetBatchOutput is the batch with all its lines.
type GetBatchOutput struct {
	Batch *entity.ReconciliationBatch
	Lines []*entity.ReconciliationLine
}

// GetBatchUseCase fetches a batch and its lines for the reviewer screen.
type GetBatchUseCase struct {
	reconciliationRepo adapter.ReconciliationRepository
}

// NewGetBatchUseCase creates a new GetBatchUseCase instance.
func NewGetBatchUseCase(reconciliationRepo adapter.ReconciliationRepository) *GetBatchUseCase {
	return &GetBatchUseCase{
		reconciliationRepo: reconciliationRepo,
	}
}

// Execute returns the batch and its lines.
func (uc *GetBatchUseCase) Execute(ctx context.Context, input GetBatchInput) (*GetBatchOutput, error) {
	batch, err := uc.reconciliationRepo.GetBatch(ctx, input.BatchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeBatchNotFound,
			"reconciliation batch not found",
			domainerror.ErrBatchNotFound,
		)
	}

	lines, err := uc.reconciliationRepo.ListLines(ctx, batch.ID)
	if err != nil {
		return nil, err
	}

	return &GetBatchOutput{Batch: batch, Lines: lines}, nil
}
