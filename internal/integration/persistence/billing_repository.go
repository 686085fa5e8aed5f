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

// billingRepository implements the adapter.BillingRepository interface.
type billingRepository struct {
	db *gorm.DB
}

// NewBillingRepository creates a new billing repository instance.
func NewBillingRepository(db *gorm.DB) adapter.BillingRepository {
	return &billingRepository{
		db: db,
	}
}

// FindPaidInWindow retrieves billing records paid inside [start, end], either
// directly or through at least one installment. Each record appears once,
// annotated with the installments whose paid date fell inside the window.
func (r *billingRepository) FindPaidInWindow(
	ctx context.Context,
	start, end time.Time,
) ([]adapter.BillingCandidateData, error) {
	var rows []model.BillingRecordModel

	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Installments").
		Where(
			"(paid_at >= ? AND paid_at <= ?) OR EXISTS ("+
				"SELECT 1 FROM billing_installments i "+
				"WHERE i.billing_record_id = billing_records.id "+
				"AND i.paid_at >= ? AND i.paid_at <= ?)",
			start, end, start, end,
		).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]adapter.BillingCandidateData, 0, len(rows))
	for i := range rows {
		record := rows[i].ToEntity()

		paidInstallments := record.InstallmentsPaidWithin(start, end)
		installmentIDs := make([]uuid.UUID, len(paidInstallments))
		for j, inst := range paidInstallments {
			installmentIDs[j] = inst.ID
		}

		// Payment date shown to the reviewer: the direct payment when it is
		// the one inside the window, else the earliest matching installment.
		paymentDate := time.Time{}
		if record.PaidAt != nil && !record.PaidAt.Before(start) && !record.PaidAt.After(end) {
			paymentDate = *record.PaidAt
		} else {
			for _, inst := range paidInstallments {
				if paymentDate.IsZero() || inst.PaidAt.Before(paymentDate) {
					paymentDate = *inst.PaidAt
				}
			}
		}

		candidate := adapter.BillingCandidateData{
			BillingRecordID: record.ID,
			InstallmentIDs:  installmentIDs,
			ClientID:        record.ClientID,
			NetAmount:       record.MatchAmount(),
			FeeAmount:       record.FeeAmount,
			PaymentDate:     paymentDate,
		}
		if record.Client != nil {
			candidate.ClientCode = record.Client.Code
			candidate.ClientName = record.Client.Name
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// GetByID retrieves a billing record with its client and installments.
// Returns (nil, nil) when the record does not exist.
func (r *billingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.BillingRecord, error) {
	var row model.BillingRecordModel

	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Installments").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return row.ToEntity(), nil
}

// SetInvoiceNumberIfBlank writes the invoice number only when the stored one
// is blank; a manually entered number is never overwritten.
func (r *billingRepository) SetInvoiceNumberIfBlank(
	ctx context.Context,
	id uuid.UUID,
	invoiceNumber string,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.BillingRecordModel{}).
		Where("id = ?", id).
		Where("document_number IS NULL OR document_number = ''").
		Updates(map[string]interface{}{
			"document_number": invoiceNumber,
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
