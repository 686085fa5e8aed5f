// Package valueobject contains domain value objects for the back-office system.
package valueobject

import (
	"github.com/shopspring/decimal"

	"github.com/sales-backoffice/backend/internal/domain/entity"
)

// EvaluationInput carries everything the discrepancy evaluator compares: the
// line's declared amounts, the system-side amounts of the linked record or
// installment, and the defensive re-read flags for the linked entities.
type EvaluationInput struct {
	DeclaredNet decimal.Decimal
	DeclaredFee decimal.Decimal
	SystemNet   decimal.Decimal
	SystemFee   decimal.Decimal

	// RecordFound is false when the linked billing record no longer exists.
	RecordFound bool
	// InstallmentFound is false when the link is installment-level and the
	// installment no longer exists.
	InstallmentFound bool
	// ClientKnown is false when the billing record carries no client.
	ClientKnown bool
	// PaymentRecorded is false when the system side records no payment at all
	// for the linked entity.
	PaymentRecorded bool
}

// Evaluation is the result of comparing a line against its linked record.
type Evaluation struct {
	Matches bool
	Kind    *entity.DiscrepancyKind
	NetDiff decimal.Decimal
	FeeDiff decimal.Decimal
}

func kind(k entity.DiscrepancyKind) *entity.DiscrepancyKind {
	return &k
}

// Evaluate compares declared and system amounts within the configured
// tolerances and classifies the result.
//
// A matching line stores zeroed diffs and no discrepancy kind: the rounding
// noise is zeroed once accepted, not hidden. Classification follows a strict
// priority: a missing linked entity beats a value mismatch, which beats a
// fee-only mismatch.
//
// Declared amounts are validated non-negative at ingestion; a negative value
// reaching the evaluator is a programming-contract violation.
func Evaluate(in EvaluationInput, cfg ReconcileConfig) Evaluation {
	if in.DeclaredNet.IsNegative() || in.DeclaredFee.IsNegative() {
		panic("valueobject: negative declared amount past ingestion validation")
	}

	netDiff := in.DeclaredNet.Sub(in.SystemNet)
	feeDiff := in.DeclaredFee.Sub(in.SystemFee)

	if !in.RecordFound {
		return Evaluation{Kind: kind(entity.DiscrepancyRecordMissing), NetDiff: netDiff, FeeDiff: feeDiff}
	}
	if !in.InstallmentFound {
		return Evaluation{Kind: kind(entity.DiscrepancyInstallmentMissing), NetDiff: netDiff, FeeDiff: feeDiff}
	}
	if !in.ClientKnown {
		return Evaluation{Kind: kind(entity.DiscrepancyClientMissing), NetDiff: netDiff, FeeDiff: feeDiff}
	}
	if !in.PaymentRecorded {
		return Evaluation{Kind: kind(entity.DiscrepancyExtraPayment), NetDiff: netDiff, FeeDiff: feeDiff}
	}

	if WithinTolerance(netDiff, cfg.NetTolerance) && WithinTolerance(feeDiff, cfg.FeeTolerance) {
		return Evaluation{Matches: true, NetDiff: decimal.Zero, FeeDiff: decimal.Zero}
	}

	if !WithinTolerance(netDiff, cfg.NetTolerance) {
		return Evaluation{Kind: kind(entity.DiscrepancyValueMismatch), NetDiff: netDiff, FeeDiff: feeDiff}
	}
	return Evaluation{Kind: kind(entity.DiscrepancyFeeMismatch), NetDiff: netDiff, FeeDiff: feeDiff}
}

// Apply writes an evaluation onto a line.
func (e Evaluation) Apply(line *entity.ReconciliationLine) {
	netDiff := e.NetDiff
	feeDiff := e.FeeDiff
	line.Matches = e.Matches
	line.DiscrepancyKind = e.Kind
	line.NetDiff = &netDiff
	line.FeeDiff = &feeDiff
}
