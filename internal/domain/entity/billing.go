// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client is the internal customer a billing record belongs to. The engine only
// reads its short code for match scoring.
type Client struct {
	ID   uuid.UUID
	Code string
	Name string
}

// Installment is one parcela of a billing record, with its own amount and
// payment date.
type Installment struct {
	ID              uuid.UUID
	BillingRecordID uuid.UUID
	Number          int
	Amount          decimal.Decimal
	FeeAmount       *decimal.Decimal
	PaidAt          *time.Time
}

// PaidWithin reports whether the installment was paid inside [start, end].
func (i *Installment) PaidWithin(start, end time.Time) bool {
	return i.PaidAt != nil && !i.PaidAt.Before(start) && !i.PaidAt.After(end)
}

// BillingRecord is an internally issued charge (cobrança). The engine treats
// it as an external collaborator: it reads records as match candidates and
// writes back an invoice number, but never creates or deletes them.
type BillingRecord struct {
	ID             uuid.UUID
	ClientID       *uuid.UUID
	Client         *Client
	DocumentNumber string // invoice number; write-back target when blank

	// NetAmount is the tax-exclusive amount, when the record carries one.
	NetAmount   *decimal.Decimal
	GrossAmount decimal.Decimal
	FeeAmount   *decimal.Decimal

	Paid   bool
	PaidAt *time.Time

	Installments []Installment

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatchAmount returns the amount candidates are compared on: the tax-exclusive
// amount when present, the gross amount otherwise.
func (r *BillingRecord) MatchAmount() decimal.Decimal {
	if r.NetAmount != nil {
		return *r.NetAmount
	}
	return r.GrossAmount
}

// InstallmentByID returns the installment with the given id, or nil.
func (r *BillingRecord) InstallmentByID(id uuid.UUID) *Installment {
	for i := range r.Installments {
		if r.Installments[i].ID == id {
			return &r.Installments[i]
		}
	}
	return nil
}

// InstallmentsPaidWithin returns the installments paid inside [start, end].
func (r *BillingRecord) InstallmentsPaidWithin(start, end time.Time) []Installment {
	var paid []Installment
	for _, inst := range r.Installments {
		if inst.PaidWithin(start, end) {
			paid = append(paid, inst)
		}
	}
	return paid
}

// PaidWithin reports whether the record was paid inside [start, end], either
// directly or through at least one installment.
func (r *BillingRecord) PaidWithin(start, end time.Time) bool {
	if r.PaidAt != nil && !r.PaidAt.Before(start) && !r.PaidAt.After(end) {
		return true
	}
	return len(r.InstallmentsPaidWithin(start, end)) > 0
}

// HasRecordedPayment reports whether any payment is recorded on the record at
// all, directly or on any installment.
func (r *BillingRecord) HasRecordedPayment() bool {
	if r.Paid || r.PaidAt != nil {
		return true
	}
	for _, inst := range r.Installments {
		if inst.PaidAt != nil {
			return true
		}
	}
	return false
}
