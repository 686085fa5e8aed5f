// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"context"

	"github.com/google/uuid"

	"github.com/sales-backoffice/backend/internal/application/adapter"
	"github.com/sales-backoffice/backend/internal/domain/entity"
	domainerror "github.com/sales-backoffice/backend/internal/domain/error"
	"github.com/sales-backoffice/backend/internal/domain/valueobject"
)

// UnlinkLineInput identifies the line to unlink.
type UnlinkLineInput struct {
	LineID uuid.UUID
}

// UnlinkLineOutput carries the batch with its freshly recomputed aggregate.
type UnlinkLineOutput struct {
	Batch *entity.ReconciliationBatch
}

// UnlinkLineUseCase removes a line's link and restores its unlinked defaults.
type UnlinkLineUseCase struct {
	txManager adapter.TransactionManager
}

// NewUnlinkLineUseCase creates a new UnlinkLineUseCase instance.
func NewUnlinkLineUseCase(txManager adapter.TransactionManager) *UnlinkLineUseCase {
	return &UnlinkLineUseCase{
		txManager: txManager,
	}
}

// Execute clears the line's link, system-side amounts and evaluation fields,
// then recomputes the batch aggregate. Unlinking an unlinked line is a no-op
// beyond the recompute.
func (uc *UnlinkLineUseCase) Execute(ctx context.Context, input UnlinkLineInput) (*UnlinkLineOutput, error) {
	var batch *entity.ReconciliationBatch

	err := uc.txManager.InTransaction(ctx, func(repos adapter.Repositories) error {
		line, err := repos.Reconciliation.GetLine(ctx, input.LineID)
		if err != nil {
			return err
		}
		if line == nil {
			return domainerror.NewReconciliationError(
				domainerror.ErrCodeLineNotFound,
				"reconciliation line not found",
				domainerror.ErrLineNotFound,
			)
		}

		b, err := repos.Reconciliation.GetBatch(ctx, line.BatchID)
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

		line.ClearLink()
		if err := repos.Reconciliation.SaveLine(ctx, line); err != nil {
			return err
		}

		lines, err := repos.Reconciliation.ListLines(ctx, b.ID)
		if err != nil {
			return err
		}
		valueobject.AggregateBatch(b.TotalDeclaredNet, b.TotalDeclaredFee, lines, b.State).Apply(b)
		if err := repos.Reconciliation.SaveBatchAggregate(ctx, b); err != nil {
			return err
		}

		batch = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &UnlinkLineOutput{Batch: batch}, nil
}
