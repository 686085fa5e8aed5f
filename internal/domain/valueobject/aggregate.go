// Package valueobject contains domain value objects for the back-office system.
package valueobject

import (
	"github.com/shopspring/decimal"

	"github.com/sales-backoffice/backend/internal/domain/entity"
)

// BatchAggregate holds the batch-level fields recomputed from the full set of
// lines after any mutation.
type BatchAggregate struct {
	TotalSystemNet decimal.Decimal
	TotalSystemFee decimal.Decimal
	NetDelta       decimal.Decimal
	FeeDelta       decimal.Decimal
	TotalLines     int
	LinesOk        int
	LinesProblem   int
	State          entity.BatchState
}

// AggregateBatch recomputes totals, counters and the approval state from the
// batch's lines. It is a pure function invoked by the transaction wrapper
// after each mutation.
//
// State rule: no problem lines means APPROVED; a mix of ok and problem lines
// means IN_REVIEW; with no ok lines the current state is kept, so an explicit
// APPROVED or HAS_PROBLEMS set by a reviewer is never regressed to PENDING.
func AggregateBatch(
	totalDeclaredNet, totalDeclaredFee decimal.Decimal,
	lines []*entity.ReconciliationLine,
	currentState entity.BatchState,
) BatchAggregate {
	agg := BatchAggregate{
		TotalSystemNet: decimal.Zero,
		TotalSystemFee: decimal.Zero,
		TotalLines:     len(lines),
		State:          currentState,
	}

	for _, line := range lines {
		if line.IsOk() {
			agg.LinesOk++
		}
		if line.SystemNet != nil {
			agg.TotalSystemNet = agg.TotalSystemNet.Add(*line.SystemNet)
		}
		if line.SystemFee != nil {
			agg.TotalSystemFee = agg.TotalSystemFee.Add(*line.SystemFee)
		}
	}
	agg.LinesProblem = agg.TotalLines - agg.LinesOk

	agg.NetDelta = RoundCents(totalDeclaredNet.Sub(agg.TotalSystemNet))
	agg.FeeDelta = RoundCents(totalDeclaredFee.Sub(agg.TotalSystemFee))

	switch {
	case agg.LinesProblem == 0:
		agg.State = entity.BatchStateApproved
	case agg.LinesOk > 0:
		agg.State = entity.BatchStateInReview
	}

	return agg
}

// Apply writes the aggregate onto a batch.
func (a BatchAggregate) Apply(batch *entity.ReconciliationBatch) {
	batch.TotalSystemNet = a.TotalSystemNet
	batch.TotalSystemFee = a.TotalSystemFee
	batch.NetDelta = a.NetDelta
	batch.FeeDelta = a.FeeDelta
	batch.TotalLines = a.TotalLines
	batch.LinesOk = a.LinesOk
	batch.LinesProblem = a.LinesProblem
	batch.State = a.State
}
