// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sales-backoffice/backend/internal/application/adapter"
	"github.com/sales-backoffice/backend/internal/domain/entity"
	domainerror "github.com/sales-backoffice/backend/internal/domain/error"
	"github.com/sales-backoffice/backend/internal/domain/valueobject"
)

// OverrideLineInput is a reviewer correction: any subset of the allowed
// fields. Nil means "leave untouched".
type OverrideLineInput struct {
	LineID         uuid.UUID
	DeclaredNet    *decimal.Decimal
	DeclaredFee    *decimal.Decimal
	SystemNet      *decimal.Decimal
	SystemFee      *decimal.Decimal
	Resolved       *bool
	ResolutionNote *string
}

// OverrideLineOutput carries the batch with its freshly recomputed aggregate.
type OverrideLineOutput struct {
	Batch *entity.ReconciliationBatch
}

// OverrideLineUseCase hand-corrects a line's declared or system-side amounts
// and re-runs the discrepancy evaluation over the stored values, so a reviewer
// can fix either side of the comparison independently.
type OverrideLineUseCase struct {
	txManager adapter.TransactionManager
	config    valueobject.ReconcileConfig
}

// NewOverrideLineUseCase creates a new OverrideLineUseCase instance.
func NewOverrideLineUseCase(txManager adapter.TransactionManager, config valueobject.ReconcileConfig) *OverrideLineUseCase {
	return &OverrideLineUseCase{
		txManager: txManager,
		config:    config,
	}
}

func (input OverrideLineInput) hasAmounts() bool {
	return input.DeclaredNet != nil || input.DeclaredFee != nil ||
		input.SystemNet != nil || input.SystemFee != nil
}

func (input OverrideLineInput) validate() error {
	for _, amount := range []*decimal.Decimal{input.DeclaredNet, input.DeclaredFee, input.SystemNet, input.SystemFee} {
		if amount != nil && amount.IsNegative() {
			return domainerror.NewReconciliationError(
				domainerror.ErrCodeNegativeAmount,
				"override amounts must not be negative",
				domainerror.ErrNegativeAmount,
			)
		}
	}
	return nil
}

// Execute applies the overrides. Amount overrides mark the line manually
// edited and re-trigger evaluation; resolved=true alone counts the line as ok
// without touching amounts or the matches flag. The resolution note is an
// audit trail the engine never interprets.
func (uc *OverrideLineUseCase) Execute(ctx context.Context, input OverrideLineInput) (*OverrideLineOutput, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

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

		if input.DeclaredNet != nil {
			line.DeclaredNet = *input.DeclaredNet
			line.ManuallyEdited = true
		}
		if input.DeclaredFee != nil {
			line.DeclaredFee = *input.DeclaredFee
			line.ManuallyEdited = true
		}
		if input.SystemNet != nil {
			value := *input.SystemNet
			line.SystemNet = &value
			line.ManuallyEdited = true
		}
		if input.SystemFee != nil {
			value := *input.SystemFee
			line.SystemFee = &value
			line.ManuallyEdited = true
		}
		if input.Resolved != nil {
			line.Resolved = *input.Resolved
		}
		if input.ResolutionNote != nil {
			line.ResolutionNote = *input.ResolutionNote
		}

		// Re-evaluate over the stored values, which may themselves have just
		// been overridden. Without a system-side net there is nothing to
		// compare against, so evaluation fields stay as they are.
		if input.hasAmounts() && line.SystemNet != nil {
			var record *entity.BillingRecord
			var installment *entity.Installment
			installmentLinked := line.LinkedInstallmentID != nil

			if line.LinkedBillingRecordID != nil {
				// Defensive re-read: the record may be gone by now.
				record, err = repos.Billing.GetByID(ctx, *line.LinkedBillingRecordID)
				if err != nil {
					return err
				}
				if record != nil && installmentLinked {
					installment = record.InstallmentByID(*line.LinkedInstallmentID)
				}
				evaluateLinked(line, record, installment, installmentLinked, uc.config)
			} else {
				// Both sides supplied by hand; compare amounts only.
				in := valueobject.EvaluationInput{
					DeclaredNet:      line.DeclaredNet,
					DeclaredFee:      line.DeclaredFee,
					SystemNet:        *line.SystemNet,
					RecordFound:      true,
					InstallmentFound: true,
					ClientKnown:      true,
					PaymentRecorded:  true,
				}
				if line.SystemFee != nil {
					in.SystemFee = *line.SystemFee
				}
				valueobject.Evaluate(in, uc.config).Apply(line)
			}
		}

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

	return &OverrideLineOutput{Batch: batch}, nil
}
