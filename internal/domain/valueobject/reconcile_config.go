// Package valueobject contains domain value objects for the back-office system.
package valueobject

import "github.com/shopspring/decimal"

// ReconcileConfig contains the tolerances and limits of the reconciliation
// engine. The tolerances are business policy and are tuned through
// configuration, not per call site.
type ReconcileConfig struct {
	// NetTolerance is the maximum |declaredNet - systemNet| still considered a match.
	NetTolerance decimal.Decimal
	// FeeTolerance is the maximum |declaredFee - systemFee| still considered a match.
	FeeTolerance decimal.Decimal
	// CandidateLimit bounds the candidate list shown to a reviewer. Scoring is
	// applied before truncation.
	CandidateLimit int
}

// DefaultReconcileConfig returns the default engine configuration.
func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		NetTolerance:   decimal.NewFromFloat(0.10),
		FeeTolerance:   decimal.NewFromFloat(0.15),
		CandidateLimit: 200,
	}
}
