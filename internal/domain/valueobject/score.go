// Package valueobject contains domain value objects for the back-office system.
package valueobject

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// clientMatchBonus dominates any plausible amount noise: client codes are
// short, stable identifiers and equality is the strongest matching signal.
var clientMatchBonus = decimal.NewFromInt(10000)

// feeWeight outranks the net-amount weight: fees are smaller, more diagnostic
// numbers, where rounding and withholding errors show up first.
var feeWeight = decimal.NewFromInt(100)

// Candidate is a billing record proposed as a match for one statement line.
// A record paid through several installments in the window appears once,
// annotated with the installments that matched.
type Candidate struct {
	BillingRecordID uuid.UUID
	InstallmentIDs  []uuid.UUID
	ClientID        *uuid.UUID
	ClientCode      string
	ClientName      string
	NetAmount       decimal.Decimal // tax-exclusive when available, gross otherwise
	FeeAmount       *decimal.Decimal
	PaymentDate     time.Time

	// AlreadyLinked marks candidates some line of the same batch already
	// points at; reviewers see fresh options first.
	AlreadyLinked bool

	Score decimal.Decimal
}

// ClientCodeEqual compares two client codes after trimming and case-folding.
// Blank codes never match.
func ClientCodeEqual(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// ScoreCandidate computes the match score of a candidate relative to a line's
// declared amounts and client code. Lower is better.
//
//	score = |declaredNet - netAmount| + |declaredFee - feeAmount|*100
//	score -= 10000 when the client codes match
//
// A candidate with no fee recorded contributes zero fee difference.
func ScoreCandidate(lineClientCode string, declaredNet, declaredFee decimal.Decimal, c Candidate) decimal.Decimal {
	netDiff := AbsDiff(declaredNet, c.NetAmount)

	feeDiff := decimal.Zero
	if c.FeeAmount != nil {
		feeDiff = AbsDiff(declaredFee, *c.FeeAmount)
	}

	score := netDiff.Add(feeDiff.Mul(feeWeight))
	if ClientCodeEqual(lineClientCode, c.ClientCode) {
		score = score.Sub(clientMatchBonus)
	}
	return score
}

// SortCandidates orders candidates for the reviewer: not-yet-linked before
// already-linked, then ascending score. The sort is stable so candidates equal
// under this ordering keep their incoming order.
func SortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].AlreadyLinked != candidates[j].AlreadyLinked {
			return !candidates[i].AlreadyLinked
		}
		return candidates[i].Score.LessThan(candidates[j].Score)
	})
}
