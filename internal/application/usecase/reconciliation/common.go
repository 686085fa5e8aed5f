// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sales-backoffice/backend/internal/domain/entity"
	"github.com/sales-backoffice/backend/internal/domain/valueobject"
)

// periodWindow returns the inclusive bounds of a batch's calendar month:
// [first day 00:00:00, last instant of the last day].
func periodWindow(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// systemAmounts resolves the system-side net and fee for a link. An
// installment-level link takes the installment's amounts, falling back to the
// record's fee when the installment carries none.
func systemAmounts(record *entity.BillingRecord, installment *entity.Installment) (decimal.Decimal, decimal.Decimal) {
	if installment != nil {
		fee := decimal.Zero
		switch {
		case installment.FeeAmount != nil:
			fee = *installment.FeeAmount
		case record.FeeAmount != nil:
			fee = *record.FeeAmount
		}
		return installment.Amount, fee
	}

	fee := decimal.Zero
	if record.FeeAmount != nil {
		fee = *record.FeeAmount
	}
	return record.MatchAmount(), fee
}

// evaluateLinked runs the discrepancy evaluator for a line against the current
// state of its linked record and writes the result onto the line.
func evaluateLinked(
	line *entity.ReconciliationLine,
	record *entity.BillingRecord,
	installment *entity.Installment,
	installmentLinked bool,
	cfg valueobject.ReconcileConfig,
) {
	in := valueobject.EvaluationInput{
		DeclaredNet: line.DeclaredNet,
		DeclaredFee: line.DeclaredFee,
		RecordFound: record != nil,
	}
	if line.SystemNet != nil {
		in.SystemNet = *line.SystemNet
	}
	if line.SystemFee != nil {
		in.SystemFee = *line.SystemFee
	}
	if record != nil {
		in.InstallmentFound = !installmentLinked || installment != nil
		in.ClientKnown = record.Client != nil && record.Client.Code != ""
		in.PaymentRecorded = record.HasRecordedPayment()
	}

	valueobject.Evaluate(in, cfg).Apply(line)
}
