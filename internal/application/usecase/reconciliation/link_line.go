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

// LinkLineInput represents a reviewer committing a candidate choice.
type LinkLineInput struct {
	LineID          uuid.UUID
	BillingRecordID uuid.UUID
	InstallmentID   *uuid.UUID
}

// LinkLineOutput carries the batch with its freshly recomputed aggregate.
type LinkLineOutput struct {
	Batch *entity.ReconciliationBatch
}

// LinkLineUseCase applies a line-to-billing-record link. The whole operation —
// re-read, write-back, evaluation, aggregate recompute — is one transaction.
type LinkLineUseCase struct {
	txManager adapter.TransactionManager
	config    valueobject.ReconcileConfig
}

// NewLinkLineUseCase creates a new LinkLineUseCase instance.
func NewLinkLineUseCase(txManager adapter.TransactionManager, config valueobject.ReconcileConfig) *LinkLineUseCase {
	return &LinkLineUseCase{
		txManager: txManager,
		config:    config,
	}
}

// Execute links the line to the billing record (optionally to one of its
// installments). Re-linking the same record is a no-op that still re-evaluates,
// so repeated identical calls are idempotent. Linking is not exclusive: two
// lines may point at the same record (partial statement lines).
func (uc *LinkLineUseCase) Execute(ctx context.Context, input LinkLineInput) (*LinkLineOutput, error) {
	var batch *entity.ReconciliationBatch

	err := uc.txManager.InTransaction(ctx, func(repos adapter.Repositories) error {
		// Re-read inside the transaction; values computed before it started
		// could clobber a concurrent reviewer's aggregate.
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

		if line.LinkedBillingRecordID != nil && *line.LinkedBillingRecordID != input.BillingRecordID {
			return domainerror.NewReconciliationError(
				domainerror.ErrCodeLineAlreadyLinked,
				"line already linked to a different billing record, unlink first",
				domainerror.ErrLineAlreadyLinked,
			)
		}

		record, err := repos.Billing.GetByID(ctx, input.BillingRecordID)
		if err != nil {
			return err
		}
		if record == nil {
			return domainerror.NewReconciliationError(
				domainerror.ErrCodeBillingRecordNotFound,
				"billing record not found",
				domainerror.ErrBillingRecordNotFound,
			)
		}

		// The record exists but left the batch window since the candidate list
		// was generated: stale, the reviewer must re-fetch and retry.
		start, end := periodWindow(b.Month, b.Year)
		if !record.PaidWithin(start, end) {
			return domainerror.NewReconciliationError(
				domainerror.ErrCodeStaleCandidate,
				"billing record is no longer paid within the batch period",
				domainerror.ErrStaleCandidate,
			)
		}

		var installment *entity.Installment
		if input.InstallmentID != nil {
			installment = record.InstallmentByID(*input.InstallmentID)
			if installment == nil {
				return domainerror.NewReconciliationError(
					domainerror.ErrCodeStaleCandidate,
					"installment no longer exists on the billing record",
					domainerror.ErrStaleCandidate,
				)
			}
		}

		// Propagate the statement's document number, but never overwrite a
		// number someone entered by hand.
		if record.DocumentNumber == "" && line.DocumentNumber != "" {
			if _, err := repos.Billing.SetInvoiceNumberIfBlank(ctx, record.ID, line.DocumentNumber); err != nil {
				return err
			}
		}

		line.LinkedBillingRecordID = &record.ID
		line.LinkedClientID = record.ClientID
		line.LinkedInstallmentID = input.InstallmentID
		line.Resolved = false
		line.ResolutionNote = ""

		sysNet, sysFee := systemAmounts(record, installment)
		line.SystemNet = &sysNet
		line.SystemFee = &sysFee

		evaluateLinked(line, record, installment, input.InstallmentID != nil, uc.config)

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

	return &LinkLineOutput{Batch: batch}, nil
}
