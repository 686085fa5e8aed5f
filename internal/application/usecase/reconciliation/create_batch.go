// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sales-backoffice/backend/internal/application/adapter"
	"github.com/sales-backoffice/backend/internal/domain/entity"
	domainerror "github.com/sales-backoffice/backend/internal/domain/error"
)

// CreateLineInput is one parsed statement row.
type CreateLineInput struct {
	PaymentDate        time.Time
	ClientCode         string
	ClientNameDeclared string
	DocumentType       string
	Series             string
	DocumentNumber     string
	InstallmentNumber  *int
	DeclaredNet        decimal.Decimal
	DeclaredFee        decimal.Decimal
}

// CreateBatchInput represents a parsed statement: period, declared totals and rows.
type CreateBatchInput struct {
	Month            int
	Year             int
	SourceFile       string
	TotalDeclaredNet decimal.Decimal
	TotalDeclaredFee decimal.Decimal
	Lines            []CreateLineInput
}

// CreateBatchOutput represents the created batch.
type CreateBatchOutput struct {
	Batch *entity.ReconciliationBatch
}

// CreateBatchUseCase ingests an already-parsed statement as a new batch.
// Amount validation happens here, upstream of the engine: the engine assumes
// validated, non-negative decimal inputs.
type CreateBatchUseCase struct {
	reconciliationRepo adapter.ReconciliationRepository
}

// NewCreateBatchUseCase creates a new CreateBatchUseCase instance.
func NewCreateBatchUseCase(reconciliationRepo adapter.ReconciliationRepository) *CreateBatchUseCase {
	return &CreateBatchUseCase{
		reconciliationRepo: reconciliationRepo,
	}
}

// Execute validates the statement and persists the batch with all lines
// unlinked and the batch PENDING.
func (uc *CreateBatchUseCase) Execute(ctx context.Context, input CreateBatchInput) (*CreateBatchOutput, error) {
	if input.Month < 1 || input.Month > 12 || input.Year < 2000 || input.Year > 2200 {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeInvalidPeriod,
			"batch period must be a valid month and year",
			domainerror.ErrInvalidPeriod,
		)
	}
	if input.TotalDeclaredNet.IsNegative() || input.TotalDeclaredFee.IsNegative() {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeNegativeAmount,
			"declared batch totals must not be negative",
			domainerror.ErrNegativeAmount,
		)
	}
	for _, row := range input.Lines {
		if row.DeclaredNet.IsNegative() || row.DeclaredFee.IsNegative() {
			return nil, domainerror.NewReconciliationError(
				domainerror.ErrCodeNegativeAmount,
				"declared line amounts must not be negative",
				domainerror.ErrNegativeAmount,
			)
		}
	}

	batch := entity.NewReconciliationBatch(
		input.Month,
		input.Year,
		input.SourceFile,
		input.TotalDeclaredNet,
		input.TotalDeclaredFee,
		len(input.Lines),
	)

	lines := make([]*entity.ReconciliationLine, len(input.Lines))
	for i, row := range input.Lines {
		lines[i] = entity.NewReconciliationLine(
			batch.ID,
			row.PaymentDate,
			row.ClientCode,
			row.ClientNameDeclared,
			row.DocumentType,
			row.Series,
			row.DocumentNumber,
			row.InstallmentNumber,
			row.DeclaredNet,
			row.DeclaredFee,
		)
	}

	if err := uc.reconciliationRepo.CreateBatch(ctx, batch, lines); err != nil {
		return nil, err
	}

	return &CreateBatchOutput{Batch: batch}, nil
}
