// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sales-backoffice/backend/internal/application/adapter"
	"github.com/sales-backoffice/backend/internal/domain/entity"
	"github.com/sales-backoffice/backend/internal/integration/persistence/model"
)

// reconciliationRepository implements the adapter.ReconciliationRepository interface.
type reconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository creates a new reconciliation repository instance.
func NewReconciliationRepository(db *gorm.DB) adapter.ReconciliationRepository {
	return &reconciliationRepository{
		db: db,
	}
}

// CreateBatch persists a batch and its lines in one transaction.
func (r *reconciliationRepository) CreateBatch(
	ctx context.Context,
	batch *entity.ReconciliationBatch,
	lines []*entity.ReconciliationLine,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model.BatchModelFromEntity(batch)).Error; err != nil {
			return err
		}

		if len(lines) == 0 {
			return nil
		}
		rows := make([]*model.ReconciliationLineModel, len(lines))
		for i, line := range lines {
			rows[i] = model.LineModelFromEntity(line)
		}
		return tx.Create(rows).Error
	})
}

// GetBatch retrieves a batch by id. Returns (nil, nil) when it does not exist.
func (r *reconciliationRepository) GetBatch(ctx context.Context, id uuid.UUID) (*entity.ReconciliationBatch, error) {
	var row model.ReconciliationBatchModel

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return row.ToEntity(), nil
}

// ListBatches retrieves one page of batches, newest period first.
func (r *reconciliationRepository) ListBatches(
	ctx context.Context,
	limit, offset int,
) ([]*entity.ReconciliationBatch, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.ReconciliationBatchModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.ReconciliationBatchModel
	err := r.db.WithContext(ctx).
		Order("year DESC, month DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	batches := make([]*entity.ReconciliationBatch, len(rows))
	for i := range rows {
		batches[i] = rows[i].ToEntity()
	}

	return batches, total, nil
}

// DeleteBatch removes a batch and the lines it owns.
func (r *reconciliationRepository) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", id).Delete(&model.ReconciliationLineModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.ReconciliationBatchModel{}).Error
	})
}

// GetLine retrieves a line by id. Returns (nil, nil) when it does not exist.
func (r *reconciliationRepository) GetLine(ctx context.Context, id uuid.UUID) (*entity.ReconciliationLine, error) {
	var row model.ReconciliationLineModel

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return row.ToEntity(), nil
}

// ListLines retrieves every line of a batch in ingestion order.
func (r *reconciliationRepository) ListLines(ctx context.Context, batchID uuid.UUID) ([]*entity.ReconciliationLine, error) {
	var rows []model.ReconciliationLineModel

	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]*entity.ReconciliationLine, len(rows))
	for i := range rows {
		lines[i] = rows[i].ToEntity()
	}

	return lines, nil
}

// SaveLine persists the mutable fields of a line.
func (r *reconciliationRepository) SaveLine(ctx context.Context, line *entity.ReconciliationLine) error {
	line.UpdatedAt = time.Now().UTC()
	row := model.LineModelFromEntity(line)

	// Save with Select so nil link and evaluation fields are written back as
	// NULL instead of being skipped as zero values.
	return r.db.WithContext(ctx).
		Model(&model.ReconciliationLineModel{}).
		Where("id = ?", row.ID).
		Select(
			"declared_net", "declared_fee",
			"linked_client_id", "linked_billing_record_id", "linked_installment_id",
			"system_net", "system_fee",
			"matches", "discrepancy_kind", "net_diff", "fee_diff",
			"resolved", "resolution_note", "manually_edited",
			"updated_at",
		).
		Updates(row).Error
}

// SaveBatchAggregate persists the recomputed aggregate fields of a batch.
func (r *reconciliationRepository) SaveBatchAggregate(ctx context.Context, batch *entity.ReconciliationBatch) error {
	batch.UpdatedAt = time.Now().UTC()
	row := model.BatchModelFromEntity(batch)

	return r.db.WithContext(ctx).
		Model(&model.ReconciliationBatchModel{}).
		Where("id = ?", row.ID).
		Select(
			"total_system_net", "total_system_fee", "net_delta", "fee_delta",
			"total_lines", "lines_ok", "lines_problem",
			"state", "notes", "reviewed_at", "updated_at",
		).
		Updates(row).Error
}
