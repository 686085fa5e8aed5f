// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sales-backoffice/backend/internal/application/adapter"
	"github.com/sales-backoffice/backend/internal/domain/entity"
	domainerror "github.com/sales-backoffice/backend/internal/domain/error"
)

// SetBatchStateInput is an explicit reviewer state change.
type SetBatchStateInput struct {
	BatchID uuid.UUID
	State   entity.BatchState
	Notes   *string
}

// SetBatchStateOutput carries the updated batch.
type SetBatchStateOutput struct {
	Batch *entity.ReconciliationBatch
}

// SetBatchStateUseCase sets the batch state directly — the escape hatch for
// flagging HAS_PROBLEMS or forcing APPROVED independent of line counts. The
// state is never inferred; only an explicit reviewer action reaches here, and
// the next automatic recomputation may overwrite it through the normal rule.
type SetBatchStateUseCase struct {
	txManager adapter.TransactionManager
}

// NewSetBatchStateUseCase creates a new SetBatchStateUseCase instance.
func NewSetBatchStateUseCase(txManager adapter.TransactionManager) *SetBatchStateUseCase {
	return &SetBatchStateUseCase{
		txManager: txManager,
	}
}

// Execute validates and applies the state, recording the review timestamp.
func (uc *SetBatchStateUseCase) Execute(ctx context.Context, input SetBatchStateInput) (*SetBatchStateOutput, error) {
	if !input.State.IsValid() {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeInvalidBatchState,
			"unknown batch state",
			domainerror.ErrInvalidBatchState,
		)
	}

	var batch *entity.ReconciliationBatch

	err := uc.txManager.InTransaction(ctx, func(repos adapter.Repositories) error {
		b, err := repos.Reconciliation.GetBatch(ctx, input.BatchID)
		if err != nil {
			return err
		}
		if b == nil {
			return domainerror.NewReconciliationError(
				domainerror.ErrCodeBatchNotFound,
				"reconciliation batch not found",
				domainerror.ErrBatchNotFound,
			)
		}

		now := time.Now().UTC()
		b.State = input.State
		b.ReviewedAt = &now
		if input.Notes != nil {
			b.Notes = *input.Notes
		}

		if err := repos.Reconciliation.SaveBatchAggregate(ctx, b); err != nil {
			return err
		}

		batch = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SetBatchStateOutput{Batch: batch}, nil
}
