// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBillingRepositoryFindPaidInWindow(t *testing.T) {
	ctx := context.Background()
	windowStart := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2025, 3, 31, 23, 59, 59, 999999999, time.UTC)

	t.Run("finds directly paid records and skips records outside the window", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewBillingRepository(db)

		inWindow := insertRecord(t, db, "C100", "NF-001", "150.00", "4.50", timePtr(marchDay(10)))
		insertRecord(t, db, "C200", "NF-002", "99.00", "2.00",
			timePtr(time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC)))
		insertRecord(t, db, "C300", "NF-003", "88.00", "1.00", nil)

		candidates, err := repo.FindPaidInWindow(ctx, windowStart, windowEnd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(candidates))
		}
		got := candidates[0]
		if got.BillingRecordID != inWindow {
			t.Error("expected the in-window record")
		}
		if got.ClientCode != "C100" {
			t.Errorf("expected client code C100, got %q", got.ClientCode)
		}
		if !got.NetAmount.Equal(dec("150.00")) {
			t.Errorf("expected the tax-exclusive amount, got %s", got.NetAmount)
		}
		if len(got.InstallmentIDs) != 0 {
			t.Errorf("expected no installments for a direct payment, got %d", len(got.InstallmentIDs))
		}
	})

	t.Run("finds records paid through an installment in the window", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewBillingRepository(db)

		recordID := insertRecord(t, db, "C100", "NF-001", "150.00", "4.50", nil)
		insertInstallment(t, db, recordID, 1, "50.00",
			timePtr(time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)))
		inWindowInstallment := insertInstallment(t, db, recordID, 2, "50.00", timePtr(marchDay(15)))

		candidates, err := repo.FindPaidInWindow(ctx, windowStart, windowEnd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(candidates) != 1 {
			t.Fatalf("expected the record once through its installment, got %d", len(candidates))
		}
		got := candidates[0]
		if len(got.InstallmentIDs) != 1 || got.InstallmentIDs[0] != inWindowInstallment {
			t.Errorf("expected only the March installment listed, got %v", got.InstallmentIDs)
		}
		if !got.PaymentDate.Equal(marchDay(15)) {
			t.Errorf("expected the installment's payment date, got %s", got.PaymentDate)
		}
	})

	t.Run("a record paid through several installments appears once", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewBillingRepository(db)

		recordID := insertRecord(t, db, "C100", "NF-001", "150.00", "4.50", nil)
		insertInstallment(t, db, recordID, 1, "75.00", timePtr(marchDay(5)))
		insertInstallment(t, db, recordID, 2, "75.00", timePtr(marchDay(20)))

		candidates, err := repo.FindPaidInWindow(ctx, windowStart, windowEnd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(candidates) != 1 {
			t.Fatalf("expected one candidate, got %d", len(candidates))
		}
		if len(candidates[0].InstallmentIDs) != 2 {
			t.Errorf("expected both installments annotated, got %d", len(candidates[0].InstallmentIDs))
		}
		if !candidates[0].PaymentDate.Equal(marchDay(5)) {
			t.Errorf("expected the earliest installment date, got %s", candidates[0].PaymentDate)
		}
	})
}

func TestBillingRepositoryGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("loads the record with client and installments", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewBillingRepository(db)

		recordID := insertRecord(t, db, "C100", "NF-001", "150.00", "4.50", timePtr(marchDay(10)))
		insertInstallment(t, db, recordID, 1, "150.00", timePtr(marchDay(10)))

		record, err := repo.GetByID(ctx, recordID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record == nil {
			t.Fatal("expected the record")
		}
		if record.Client == nil || record.Client.Code != "C100" {
			t.Error("expected the client preloaded")
		}
		if len(record.Installments) != 1 {
			t.Errorf("expected 1 installment preloaded, got %d", len(record.Installments))
		}
	})

	t.Run("returns nil without error when missing", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewBillingRepository(db)

		record, err := repo.GetByID(ctx, uuid.New())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record != nil {
			t.Error("expected nil for a missing record")
		}
	})
}

func TestBillingRepositorySetInvoiceNumberIfBlank(t *testing.T) {
	ctx := context.Background()

	t.Run("writes onto a blank record", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewBillingRepository(db)

		recordID := insertRecord(t, db, "C100", "", "150.00", "4.50", timePtr(marchDay(10)))

		wrote, err := repo.SetInvoiceNumberIfBlank(ctx, recordID, "NF-777")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !wrote {
			t.Error("expected the write to happen")
		}

		record, err := repo.GetByID(ctx, recordID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.DocumentNumber != "NF-777" {
			t.Errorf("expected NF-777 stored, got %q", record.DocumentNumber)
		}
	})

	t.Run("never overwrites an existing number", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewBillingRepository(db)

		recordID := insertRecord(t, db, "C100", "NF-MANUAL", "150.00", "4.50", timePtr(marchDay(10)))

		wrote, err := repo.SetInvoiceNumberIfBlank(ctx, recordID, "NF-777")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if wrote {
			t.Error("expected no write onto a filled number")
		}

		record, err := repo.GetByID(ctx, recordID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.DocumentNumber != "NF-MANUAL" {
			t.Errorf("expected the original number kept, got %q", record.DocumentNumber)
		}
	})
}
