// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"context"
	"testing"

	"github.com/sales-backoffice/backend/internal/domain/entity"
	domainerror "github.com/sales-backoffice/backend/internal/domain/error"
)

func TestCreateBatchUseCase(t *testing.T) {
	ctx := context.Background()

	validInput := func() CreateBatchInput {
		return CreateBatchInput{
			Month:            3,
			Year:             2025,
			SourceFile:       "statement-2025-03.csv",
			TotalDeclaredNet: dec("175.00"),
			TotalDeclaredFee: dec("5.00"),
			Lines: []CreateLineInput{
				{PaymentDate: march(5), ClientCode: "C100", DocumentNumber: "NF-001", DeclaredNet: dec("100.00"), DeclaredFee: dec("3.00")},
				{PaymentDate: march(12), ClientCode: "C200", DocumentNumber: "NF-002", DeclaredNet: dec("75.00"), DeclaredFee: dec("2.00")},
			},
		}
	}

	t.Run("creates a pending batch with unlinked lines", func(t *testing.T) {
		store := newFakeStore()
		uc := NewCreateBatchUseCase(&fakeReconciliationRepo{store: store})

		output, err := uc.Execute(ctx, validInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		batch := output.Batch
		if batch.State != entity.BatchStatePending {
			t.Errorf("expected PENDING, got %s", batch.State)
		}
		if batch.TotalLines != 2 || batch.LinesOk != 0 || batch.LinesProblem != 2 {
			t.Errorf("expected 2 total / 0 ok / 2 problem, got %d / %d / %d",
				batch.TotalLines, batch.LinesOk, batch.LinesProblem)
		}
		if !batch.NetDelta.Equal(dec("175.00")) {
			t.Errorf("expected initial net delta equal to declared total, got %s", batch.NetDelta)
		}

		lines, err := (&fakeReconciliationRepo{store: store}).ListLines(ctx, batch.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 2 {
			t.Fatalf("expected 2 persisted lines, got %d", len(lines))
		}
		for _, line := range lines {
			if line.IsLinked() || line.Matches || line.Resolved {
				t.Error("expected lines to start unlinked and unmatched")
			}
		}
	})

	t.Run("an empty line set is allowed", func(t *testing.T) {
		store := newFakeStore()
		uc := NewCreateBatchUseCase(&fakeReconciliationRepo{store: store})

		input := validInput()
		input.Lines = nil
		input.TotalDeclaredNet = dec("0")
		input.TotalDeclaredFee = dec("0")

		output, err := uc.Execute(ctx, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.Batch.TotalLines != 0 {
			t.Errorf("expected 0 lines, got %d", output.Batch.TotalLines)
		}
	})

	t.Run("rejects an invalid period", func(t *testing.T) {
		uc := NewCreateBatchUseCase(&fakeReconciliationRepo{store: newFakeStore()})

		for _, mutate := range []func(*CreateBatchInput){
			func(in *CreateBatchInput) { in.Month = 0 },
			func(in *CreateBatchInput) { in.Month = 13 },
			func(in *CreateBatchInput) { in.Year = 1999 },
		} {
			input := validInput()
			mutate(&input)

			_, err := uc.Execute(ctx, input)
			expectCode(t, err, domainerror.ErrCodeInvalidPeriod)
		}
	})

	t.Run("rejects negative declared amounts", func(t *testing.T) {
		uc := NewCreateBatchUseCase(&fakeReconciliationRepo{store: newFakeStore()})

		input := validInput()
		input.Lines[1].DeclaredNet = dec("-75.00")

		_, err := uc.Execute(ctx, input)
		expectCode(t, err, domainerror.ErrCodeNegativeAmount)
	})

	t.Run("rejects negative declared totals", func(t *testing.T) {
		uc := NewCreateBatchUseCase(&fakeReconciliationRepo{store: newFakeStore()})

		input := validInput()
		input.TotalDeclaredFee = dec("-0.01")

		_, err := uc.Execute(ctx, input)
		expectCode(t, err, domainerror.ErrCodeNegativeAmount)
	})
}
