// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sales-backoffice/backend/internal/domain/entity"
	domainerror "github.com/sales-backoffice/backend/internal/domain/error"
	"github.com/sales-backoffice/backend/internal/domain/valueobject"
)

func newCandidatesFixture(cfg valueobject.ReconcileConfig) (*fakeStore, *FindCandidatesUseCase) {
	store := newFakeStore()
	uc := NewFindCandidatesUseCase(
		&fakeReconciliationRepo{store: store},
		&fakeBillingRepo{store: store},
		cfg,
	)
	return store, uc
}

func TestFindCandidatesUseCase(t *testing.T) {
	ctx := context.Background()
	cfg := valueobject.DefaultReconcileConfig()

	t.Run("returns only records paid inside the batch month", func(t *testing.T) {
		store, uc := newCandidatesFixture(cfg)
		line := seedLine("C100", "NF-001", "150.00", "4.50", march(10))
		seedBatch(store, 3, 2025, "150.00", "4.50", line)

		inWindow := seedRecord(store, "C100", "NF-001", "150.00", "4.50", timePtr(march(10)))
		seedRecord(store, "C100", "NF-002", "150.00", "4.50",
			timePtr(time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC)))
		seedRecord(store, "C100", "NF-003", "150.00", "4.50",
			timePtr(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))

		output, err := uc.Execute(ctx, FindCandidatesInput{LineID: line.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(output.Candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(output.Candidates))
		}
		if output.Candidates[0].BillingRecordID != inWindow.ID {
			t.Error("expected the in-window record")
		}
	})

	t.Run("month boundaries are inclusive", func(t *testing.T) {
		store, uc := newCandidatesFixture(cfg)
		line := seedLine("C100", "NF-001", "150.00", "4.50", march(10))
		seedBatch(store, 3, 2025, "150.00", "4.50", line)

		seedRecord(store, "C100", "NF-001", "150.00", "4.50",
			timePtr(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
		seedRecord(store, "C100", "NF-002", "150.00", "4.50",
			timePtr(time.Date(2025, 3, 31, 23, 59, 59, 999999999, time.UTC)))

		output, err := uc.Execute(ctx, FindCandidatesInput{LineID: line.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(output.Candidates) != 2 {
			t.Errorf("expected both boundary records, got %d", len(output.Candidates))
		}
	})

	t.Run("ranks by client match before amount closeness", func(t *testing.T) {
		store, uc := newCandidatesFixture(cfg)
		line := seedLine("C100", "NF-001", "150.00", "4.50", march(10))
		seedBatch(store, 3, 2025, "150.00", "4.50", line)

		// Wrong client, almost exact amount.
		closeAmount := seedRecord(store, "C999", "NF-002", "150.01", "4.50", timePtr(march(10)))
		// Right client, amount 50.00 off.
		rightClient := seedRecord(store, "C100", "NF-003", "200.00", "4.50", timePtr(march(11)))

		output, err := uc.Execute(ctx, FindCandidatesInput{LineID: line.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(output.Candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(output.Candidates))
		}
		if output.Candidates[0].BillingRecordID != rightClient.ID {
			t.Error("expected the client-code match ranked first")
		}
		if output.Candidates[1].BillingRecordID != closeAmount.ID {
			t.Error("expected the amount-only match ranked second")
		}
	})

	t.Run("records linked by a sibling line sort last", func(t *testing.T) {
		store, uc := newCandidatesFixture(cfg)
		lineA := seedLine("C100", "NF-001", "150.00", "4.50", march(10))
		lineB := seedLine("C100", "NF-002", "150.00", "4.50", march(11))
		seedBatch(store, 3, 2025, "300.00", "9.00", lineA, lineB)

		taken := seedRecord(store, "C100", "NF-001", "150.00", "4.50", timePtr(march(10)))
		fresh := seedRecord(store, "C100", "NF-002", "150.00", "4.50", timePtr(march(11)))

		lineA.LinkedBillingRecordID = &taken.ID
		store.lines[lineA.ID] = lineA

		output, err := uc.Execute(ctx, FindCandidatesInput{LineID: lineB.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(output.Candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(output.Candidates))
		}
		if output.Candidates[0].BillingRecordID != fresh.ID {
			t.Error("expected the fresh record first")
		}
		if !output.Candidates[1].AlreadyLinked {
			t.Error("expected the taken record flagged and sorted last")
		}
	})

	t.Run("candidates include installment-level payments", func(t *testing.T) {
		store, uc := newCandidatesFixture(cfg)
		line := seedLine("C100", "NF-001", "50.00", "1.00", march(15))
		seedBatch(store, 3, 2025, "50.00", "1.00", line)

		record := seedRecord(store, "C100", "NF-001", "150.00", "4.50", nil)
		record.Paid = false
		record.Installments = []entity.Installment{
			{ID: uuid.New(), BillingRecordID: record.ID, Number: 1, Amount: dec("50.00"), PaidAt: timePtr(time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC))},
			{ID: uuid.New(), BillingRecordID: record.ID, Number: 2, Amount: dec("50.00"), PaidAt: timePtr(march(15))},
		}

		output, err := uc.Execute(ctx, FindCandidatesInput{LineID: line.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(output.Candidates) != 1 {
			t.Fatalf("expected the record through its paid installment, got %d candidates", len(output.Candidates))
		}
		if len(output.Candidates[0].InstallmentIDs) != 1 {
			t.Errorf("expected only the in-window installment listed, got %d", len(output.Candidates[0].InstallmentIDs))
		}
		if output.Candidates[0].InstallmentIDs[0] != record.Installments[1].ID {
			t.Error("expected the March installment")
		}
	})

	t.Run("the candidate cap truncates after scoring", func(t *testing.T) {
		capped := cfg
		capped.CandidateLimit = 2

		store, uc := newCandidatesFixture(capped)
		line := seedLine("C100", "NF-001", "150.00", "4.50", march(10))
		seedBatch(store, 3, 2025, "150.00", "4.50", line)

		seedRecord(store, "C900", "NF-101", "500.00", "4.50", timePtr(march(2)))
		seedRecord(store, "C901", "NF-102", "400.00", "4.50", timePtr(march(3)))
		seedRecord(store, "C902", "NF-103", "300.00", "4.50", timePtr(march(4)))
		best := seedRecord(store, "C100", "NF-104", "150.00", "4.50", timePtr(march(10)))

		output, err := uc.Execute(ctx, FindCandidatesInput{LineID: line.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(output.Candidates) != 2 {
			t.Fatalf("expected the list capped at 2, got %d", len(output.Candidates))
		}
		if output.Candidates[0].BillingRecordID != best.ID {
			t.Error("expected the best-scored record to survive the cap")
		}
	})

	t.Run("an unknown line is not found", func(t *testing.T) {
		_, uc := newCandidatesFixture(cfg)

		_, err := uc.Execute(ctx, FindCandidatesInput{LineID: uuid.New()})
		expectCode(t, err, domainerror.ErrCodeLineNotFound)
	})
}
