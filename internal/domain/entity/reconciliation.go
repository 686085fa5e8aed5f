// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchState represents the approval state of a reconciliation batch.
type BatchState string

const (
	BatchStatePending     BatchState = "PENDING"
	BatchStateInReview    BatchState = "IN_REVIEW"
	BatchStateApproved    BatchState = "APPROVED"
	BatchStateHasProblems BatchState = "HAS_PROBLEMS"
)

// IsValid reports whether the state is one of the known batch states.
func (s BatchState) IsValid() bool {
	switch s {
	case BatchStatePending, BatchStateInReview, BatchStateApproved, BatchStateHasProblems:
		return true
	}
	return false
}

// DiscrepancyKind classifies why a linked line does not match its billing record.
// It is a closed set; the evaluator's classification is exhaustive over it.
type DiscrepancyKind string

const (
	// DiscrepancyRecordMissing means the linked billing record no longer exists.
	DiscrepancyRecordMissing DiscrepancyKind = "billing_record_missing"
	// DiscrepancyInstallmentMissing means the linked installment no longer exists.
	DiscrepancyInstallmentMissing DiscrepancyKind = "installment_missing"
	// DiscrepancyClientMissing means the billing record has no client on the system side.
	DiscrepancyClientMissing DiscrepancyKind = "client_missing"
	// DiscrepancyExtraPayment means the statement declares a payment with no
	// recorded counterpart amount on the system side.
	DiscrepancyExtraPayment DiscrepancyKind = "extra_payment"
	// DiscrepancyValueMismatch means the net amounts differ beyond tolerance.
	DiscrepancyValueMismatch DiscrepancyKind = "value_mismatch"
	// DiscrepancyFeeMismatch means only the fee amounts differ beyond tolerance.
	DiscrepancyFeeMismatch DiscrepancyKind = "fee_mismatch"
)

// ReconciliationBatch represents one statement period: the set of statement
// lines delivered for a month plus their aggregate totals and approval state.
type ReconciliationBatch struct {
	ID         uuid.UUID
	Month      int
	Year       int
	SourceFile string // source document reference, opaque to the engine

	// Declared totals come from the statement header.
	TotalDeclaredNet decimal.Decimal
	TotalDeclaredFee decimal.Decimal

	// System totals are recomputed from linked lines after every mutation.
	TotalSystemNet decimal.Decimal
	TotalSystemFee decimal.Decimal
	NetDelta       decimal.Decimal
	FeeDelta       decimal.Decimal

	TotalLines   int
	LinesOk      int
	LinesProblem int

	State      BatchState
	Notes      string
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewReconciliationBatch creates a batch in its initial PENDING state with no
// line reviewed yet.
func NewReconciliationBatch(
	month, year int,
	sourceFile string,
	totalDeclaredNet, totalDeclaredFee decimal.Decimal,
	totalLines int,
) *ReconciliationBatch {
	now := time.Now().UTC()

	return &ReconciliationBatch{
		ID:               uuid.New(),
		Month:            month,
		Year:             year,
		SourceFile:       sourceFile,
		TotalDeclaredNet: totalDeclaredNet,
		TotalDeclaredFee: totalDeclaredFee,
		TotalSystemNet:   decimal.Zero,
		TotalSystemFee:   decimal.Zero,
		NetDelta:         totalDeclaredNet.Round(2),
		FeeDelta:         totalDeclaredFee.Round(2),
		TotalLines:       totalLines,
		LinesOk:          0,
		LinesProblem:     totalLines,
		State:            BatchStatePending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ReconciliationLine represents one row from the statement, owned by exactly
// one batch. Declared fields are immutable after ingestion except through a
// manual override.
type ReconciliationLine struct {
	ID      uuid.UUID
	BatchID uuid.UUID

	// Declared fields from the statement row.
	PaymentDate        time.Time
	ClientCode         string
	ClientNameDeclared string
	DocumentType       string
	Series             string
	DocumentNumber     string
	InstallmentNumber  *int
	DeclaredNet        decimal.Decimal
	DeclaredFee        decimal.Decimal

	// Link fields, nil until the reviewer commits a link.
	LinkedClientID        *uuid.UUID
	LinkedBillingRecordID *uuid.UUID
	LinkedInstallmentID   *uuid.UUID

	// System-side amounts, populated on link (or by a manual override).
	SystemNet *decimal.Decimal
	SystemFee *decimal.Decimal

	// Evaluation fields.
	Matches         bool
	DiscrepancyKind *DiscrepancyKind
	NetDiff         *decimal.Decimal
	FeeDiff         *decimal.Decimal

	// Resolution fields.
	Resolved       bool
	ResolutionNote string
	ManuallyEdited bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReconciliationLine creates an unlinked, unmatched line for a batch.
func NewReconciliationLine(
	batchID uuid.UUID,
	paymentDate time.Time,
	clientCode, clientNameDeclared, documentType, series, documentNumber string,
	installmentNumber *int,
	declaredNet, declaredFee decimal.Decimal,
) *ReconciliationLine {
	now := time.Now().UTC()

	return &ReconciliationLine{
		ID:                 uuid.New(),
		BatchID:            batchID,
		PaymentDate:        paymentDate,
		ClientCode:         clientCode,
		ClientNameDeclared: clientNameDeclared,
		DocumentType:       documentType,
		Series:             series,
		DocumentNumber:     documentNumber,
		InstallmentNumber:  installmentNumber,
		DeclaredNet:        declaredNet,
		DeclaredFee:        declaredFee,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// IsLinked reports whether the line points at a billing record.
func (l *ReconciliationLine) IsLinked() bool {
	return l.LinkedBillingRecordID != nil
}

// IsOk reports whether the aggregator counts this line as resolved: either it
// matched financially or a reviewer accepted the discrepancy.
func (l *ReconciliationLine) IsOk() bool {
	return l.Matches || l.Resolved
}

// ClearLink resets the line to its unlinked defaults: no link, no system-side
// amounts, no evaluation result, not resolved. Declared fields and the manual
// edit flag are untouched.
func (l *ReconciliationLine) ClearLink() {
	l.LinkedClientID = nil
	l.LinkedBillingRecordID = nil
	l.LinkedInstallmentID = nil
	l.SystemNet = nil
	l.SystemFee = nil
	l.Matches = false
	l.DiscrepancyKind = nil
	l.NetDiff = nil
	l.FeeDiff = nil
	l.Resolved = false
	l.ResolutionNote = ""
}
