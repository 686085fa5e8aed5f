// Package error defines domain-specific errors for the back-office application.
package error

import "errors"

// Reconciliation domain errors.
var (
	// ErrBatchNotFound is returned when a reconciliation batch does not exist.
	ErrBatchNotFound = errors.New("reconciliation batch not found")

	// ErrLineNotFound is returned when a reconciliation line does not exist.
	ErrLineNotFound = errors.New("reconciliation line not found")

	// ErrLineNotInBatch is returned when a line does not belong to the referenced batch.
	ErrLineNotInBatch = errors.New("line does not belong to batch")

	// ErrBillingRecordNotFound is returned when the referenced billing record does not exist.
	ErrBillingRecordNotFound = errors.New("billing record not found")

	// ErrLineAlreadyLinked is returned when a line is already linked to a different billing record.
	ErrLineAlreadyLinked = errors.New("line already linked to a different billing record")

	// ErrInvalidBatchState is returned when a requested state is not a known batch state.
	ErrInvalidBatchState = errors.New("invalid batch state")

	// ErrInvalidPeriod is returned when a batch period is malformed.
	ErrInvalidPeriod = errors.New("invalid batch period")

	// ErrNegativeAmount is returned when a declared or overridden amount is negative.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrOverrideFieldNotAllowed is returned when an override touches a field outside the allowed set.
	ErrOverrideFieldNotAllowed = errors.New("field not allowed in override")

	// ErrStaleCandidate is returned when billing data changed after the candidate
	// list was generated; the caller must re-fetch candidates and retry.
	ErrStaleCandidate = errors.New("billing data changed since candidates were listed")
)

// ReconciliationErrorCode defines error codes for reconciliation errors.
// Format: REC-XXYYYY where XX is category and YYYY is specific error.
type ReconciliationErrorCode string

const (
	// Validation / invalid transition errors (01XXXX)
	ErrCodeInvalidPeriod           ReconciliationErrorCode = "REC-010001"
	ErrCodeNegativeAmount          ReconciliationErrorCode = "REC-010002"
	ErrCodeInvalidBatchState       ReconciliationErrorCode = "REC-010003"
	ErrCodeOverrideFieldNotAllowed ReconciliationErrorCode = "REC-010004"
	ErrCodeLineAlreadyLinked       ReconciliationErrorCode = "REC-010005"
	ErrCodeRateLimited             ReconciliationErrorCode = "REC-010099"

	// Not found errors (02XXXX)
	ErrCodeBatchNotFound         ReconciliationErrorCode = "REC-020001"
	ErrCodeLineNotFound          ReconciliationErrorCode = "REC-020002"
	ErrCodeLineNotInBatch        ReconciliationErrorCode = "REC-020003"
	ErrCodeBillingRecordNotFound ReconciliationErrorCode = "REC-020004"

	// Stale read errors (03XXXX) — retryable by re-fetching candidates.
	ErrCodeStaleCandidate ReconciliationErrorCode = "REC-030001"
)

// ReconciliationError represents a reconciliation error with code and message.
type ReconciliationError struct {
	Code      ReconciliationErrorCode
	Message   string
	Retryable bool
	Err       error
}

// Error implements the error interface.
func (e *ReconciliationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// NewReconciliationError creates a new ReconciliationError with the given code and message.
func NewReconciliationError(code ReconciliationErrorCode, message string, err error) *ReconciliationError {
	return &ReconciliationError{
		Code:      code,
		Message:   message,
		Retryable: code == ErrCodeStaleCandidate,
		Err:       err,
	}
}

// IsRetryable reports whether the error is a stale-read condition the caller
// can resolve by re-fetching candidates and retrying.
func IsRetryable(err error) bool {
	var recErr *ReconciliationError
	if errors.As(err, &recErr) {
		return recErr.Retryable
	}
	return false
}
