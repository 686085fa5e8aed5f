// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/sales-backoffice/backend/internal/domain/entity"
	domainerror "github.com/sales-backoffice/backend/internal/domain/error"
)

func TestSetBatchStateUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("sets the state and records the review time", func(t *testing.T) {
		store := newFakeStore()
		uc := NewSetBatchStateUseCase(&fakeTxManager{store: store})
		batch := seedBatch(store, 3, 2025, "150.00", "4.50")

		output, err := uc.Execute(ctx, SetBatchStateInput{
			BatchID: batch.ID,
			State:   entity.BatchStateHasProblems,
			Notes:   strPtr("fees disagree across the whole statement"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if output.Batch.State != entity.BatchStateHasProblems {
			t.Errorf("expected HAS_PROBLEMS, got %s", output.Batch.State)
		}
		if output.Batch.ReviewedAt == nil {
			t.Error("expected the review timestamp set")
		}
		if output.Batch.Notes == "" {
			t.Error("expected notes stored")
		}

		saved := store.batches[batch.ID]
		if saved.State != entity.BatchStateHasProblems {
			t.Errorf("expected the state persisted, got %s", saved.State)
		}
	})

	t.Run("notes are optional and kept when omitted", func(t *testing.T) {
		store := newFakeStore()
		uc := NewSetBatchStateUseCase(&fakeTxManager{store: store})
		batch := seedBatch(store, 3, 2025, "150.00", "4.50")
		batch.Notes = "existing note"
		store.batches[batch.ID] = batch

		output, err := uc.Execute(ctx, SetBatchStateInput{BatchID: batch.ID, State: entity.BatchStateApproved})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.Batch.Notes != "existing note" {
			t.Errorf("expected existing notes kept, got %q", output.Batch.Notes)
		}
	})

	t.Run("rejects an unknown state", func(t *testing.T) {
		uc := NewSetBatchStateUseCase(&fakeTxManager{store: newFakeStore()})

		_, err := uc.Execute(ctx, SetBatchStateInput{BatchID: uuid.New(), State: "DONE"})
		expectCode(t, err, domainerror.ErrCodeInvalidBatchState)
	})

	t.Run("an unknown batch is not found", func(t *testing.T) {
		uc := NewSetBatchStateUseCase(&fakeTxManager{store: newFakeStore()})

		_, err := uc.Execute(ctx, SetBatchStateInput{BatchID: uuid.New(), State: entity.BatchStateApproved})
		expectCode(t, err, domainerror.ErrCodeBatchNotFound)
	})
}

func TestGetBatchUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the batch with its lines in ingestion order", func(t *testing.T) {
		store := newFakeStore()
		uc := NewGetBatchUseCase(&fakeReconciliationRepo{store: store})

		lineA := seedLine("C100", "NF-001", "100.00", "3.00", march(5))
		lineB := seedLine("C200", "NF-002", "75.00", "2.00", march(12))
		batch := seedBatch(store, 3, 2025, "175.00", "5.00", lineA, lineB)

		output, err := uc.Execute(ctx, GetBatchInput{BatchID: batch.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if output.Batch.ID != batch.ID {
			t.Error("expected the requested batch")
		}
		if len(output.Lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(output.Lines))
		}
		if output.Lines[0].ID != lineA.ID || output.Lines[1].ID != lineB.ID {
			t.Error("expected lines in ingestion order")
		}
	})

	t.Run("an unknown batch is not found", func(t *testing.T) {
		uc := NewGetBatchUseCase(&fakeReconciliationRepo{store: newFakeStore()})

		_, err := uc.Execute(ctx, GetBatchInput{BatchID: uuid.New()})
		expectCode(t, err, domainerror.ErrCodeBatchNotFound)
	})
}

func TestListBatchesUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("pages newest period first", func(t *testing.T) {
		store := newFakeStore()
		uc := NewListBatchesUseCase(&fakeReconciliationRepo{store: store})

		seedBatch(store, 1, 2025, "10.00", "0")
		seedBatch(store, 3, 2025, "30.00", "0")
		seedBatch(store, 2, 2025, "20.00", "0")

		output, err := uc.Execute(ctx, ListBatchesInput{Limit: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if output.Total != 3 {
			t.Errorf("expected total 3, got %d", output.Total)
		}
		if len(output.Batches) != 2 {
			t.Fatalf("expected 2 batches on the page, got %d", len(output.Batches))
		}
		if output.Batches[0].Month != 3 || output.Batches[1].Month != 2 {
			t.Errorf("expected months [3 2], got [%d %d]", output.Batches[0].Month, output.Batches[1].Month)
		}
	})
}

func TestDeleteBatchUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the batch and its lines", func(t *testing.T) {
		store := newFakeStore()
		uc := NewDeleteBatchUseCase(&fakeReconciliationRepo{store: store})

		line := seedLine("C100", "NF-001", "150.00", "4.50", march(10))
		batch := seedBatch(store, 3, 2025, "150.00", "4.50", line)

		output, err := uc.Execute(ctx, DeleteBatchInput{BatchID: batch.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !output.Deleted {
			t.Error("expected deleted true")
		}
		if _, ok := store.batches[batch.ID]; ok {
			t.Error("expected the batch gone")
		}
		if _, ok := store.lines[line.ID]; ok {
			t.Error("expected the lines gone with the batch")
		}
	})

	t.Run("an unknown batch is not found", func(t *testing.T) {
		uc := NewDeleteBatchUseCase(&fakeReconciliationRepo{store: newFakeStore()})

		_, err := uc.Execute(ctx, DeleteBatchInput{BatchID: uuid.New()})
		expectCode(t, err, domainerror.ErrCodeBatchNotFound)
	})
}
