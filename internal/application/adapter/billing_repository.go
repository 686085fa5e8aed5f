// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sales-backoffice/backend/internal/domain/entity"
)

// BillingCandidateData is the narrow projection the candidate finder needs:
// client code, amounts and payment dates only.
type BillingCandidateData struct {
	BillingRecordID uuid.UUID
	// InstallmentIDs lists the installments whose paid date fell inside the
	// window. Empty for records paid directly.
	InstallmentIDs []uuid.UUID
	ClientID       *uuid.UUID
	ClientCode     string
	ClientName     string
	// NetAmount is the tax-exclusive amount when present, gross otherwise.
	NetAmount   decimal.Decimal
	FeeAmount   *decimal.Decimal
	PaymentDate time.Time
}

// BillingRepository is the engine's read/write view of billing records. The
// engine never creates or deletes records; it reads them as candidates and
// writes back an invoice number.
type BillingRepository interface {
	// FindPaidInWindow returns billing records whose payment date, direct or on
	// any installment, falls inside [start, end]. A record paid through several
	// installments in the window appears once. No cap is applied here; the
	// caller scores before truncating.
	FindPaidInWindow(ctx context.Context, start, end time.Time) ([]BillingCandidateData, error)

	// GetByID returns the billing record with its client and installments, or
	// (nil, nil) when it does not exist. Callers must re-read before use:
	// records can be deleted outside the engine.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.BillingRecord, error)

	// SetInvoiceNumberIfBlank writes the invoice number onto the record only
	// when the record's own number is blank, and reports whether it wrote.
	// A non-blank number is never overwritten.
	SetInvoiceNumberIfBlank(ctx context.Context, id uuid.UUID, invoiceNumber string) (bool, error)
}
