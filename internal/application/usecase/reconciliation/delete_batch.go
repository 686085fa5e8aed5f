// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"context"

	"github.com/google/uuid"

	"github.com/sales-backoffice/backend/internal/application/adapter"
	domainerror "github.com/sales-backoffice/backend/internal/domain/error"
)

// DeleteBatchInput identifies the batch to delete.
type DeleteBatchInput struct {
	BatchID uuid.UUID
}

// DeleteBatchOutput represents the result of the deletion.
type DeleteBatchOutput struct {
	Deleted bool
}

// DeleteBatchUseCase removes a batch and every line it owns. Links are weak
// references, so the referenced billing records are untouched.
type DeleteBatchUseCase struct {
	reconciliationRepo adapter.ReconciliationRepository
}

// NewDeleteBatchUseCase creates a new DeleteBatchUseCase instance.
func NewDeleteBatchUseCase(reconciliationRepo adapter.ReconciliationRepository) *DeleteBatchUseCase {
	return &DeleteBatchUseCase{
		reconciliationRepo: reconciliationRepo,
	}
}

// Execute deletes the batch with its lines.
func (uc *DeleteBatchUseCase) Execute(ctx context.Context, input DeleteBatchInput) (*DeleteBatchOutput, error) {
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

	if err := uc.reconciliationRepo.DeleteBatch(ctx, batch.ID); err != nil {
		return nil, err
	}

	return &DeleteBatchOutput{Deleted: true}, nil
}
