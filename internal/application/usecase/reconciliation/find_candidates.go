// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"context"

	"github.com/google/uuid"

	"github.com/sales-backoffice/backend/internal/application/adapter"
	domainerror "github.com/sales-backoffice/backend/internal/domain/error"
	"github.com/sales-backoffice/backend/internal/domain/valueobject"
)

// FindCandidatesInput identifies the line to propose candidates for.
type FindCandidatesInput struct {
	LineID uuid.UUID
}

// FindCandidatesOutput is the ranked candidate list, ascending by score.
type FindCandidatesOutput struct {
	Candidates []valueobject.Candidate
}

// FindCandidatesUseCase proposes billing records plausibly matching one
// statement line: every record paid, directly or through an installment,
// inside the batch's calendar month. Read-only; runs outside a transaction.
type FindCandidatesUseCase struct {
	reconciliationRepo adapter.ReconciliationRepository
	billingRepo        adapter.BillingRepository
	config             valueobject.ReconcileConfig
}

// NewFindCandidatesUseCase creates a new FindCandidatesUseCase instance.
func NewFindCandidatesUseCase(
	reconciliationRepo adapter.ReconciliationRepository,
	billingRepo adapter.BillingRepository,
	config valueobject.ReconcileConfig,
) *FindCandidatesUseCase {
	return &FindCandidatesUseCase{
		reconciliationRepo: reconciliationRepo,
		billingRepo:        billingRepo,
		config:             config,
	}
}

// Execute returns the scored candidate list for a line. Scoring runs over the
// full result set before the safety cap truncates it, so the cap never hides a
// better-ranked candidate.
func (uc *FindCandidatesUseCase) Execute(ctx context.Context, input FindCandidatesInput) (*FindCandidatesOutput, error) {
	line, err := uc.reconciliationRepo.GetLine(ctx, input.LineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeLineNotFound,
			"reconciliation line not found",
			domainerror.ErrLineNotFound,
		)
	}

	batch, err := uc.reconciliationRepo.GetBatch(ctx, line.BatchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeBatchNotFound,
			"reconciliation batch not found",
			domainerror.ErrBatchNotFound,
		)
	}

	start, end := periodWindow(batch.Month, batch.Year)
	records, err := uc.billingRepo.FindPaidInWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}

	// Records some line of this batch already points at sort after fresh ones.
	siblings, err := uc.reconciliationRepo.ListLines(ctx, batch.ID)
	if err != nil {
		return nil, err
	}
	linked := make(map[uuid.UUID]bool, len(siblings))
	for _, sibling := range siblings {
		if sibling.LinkedBillingRecordID != nil {
			linked[*sibling.LinkedBillingRecordID] = true
		}
	}

	candidates := make([]valueobject.Candidate, len(records))
	for i, record := range records {
		candidate := valueobject.Candidate{
			BillingRecordID: record.BillingRecordID,
			InstallmentIDs:  record.InstallmentIDs,
			ClientID:        record.ClientID,
			ClientCode:      record.ClientCode,
			ClientName:      record.ClientName,
			NetAmount:       record.NetAmount,
			FeeAmount:       record.FeeAmount,
			PaymentDate:     record.PaymentDate,
			AlreadyLinked:   linked[record.BillingRecordID],
		}
		candidate.Score = valueobject.ScoreCandidate(line.ClientCode, line.DeclaredNet, line.DeclaredFee, candidate)
		candidates[i] = candidate
	}

	valueobject.SortCandidates(candidates)
	if uc.config.CandidateLimit > 0 && len(candidates) > uc.config.CandidateLimit {
		candidates = candidates[:uc.config.CandidateLimit]
	}

	return &FindCandidatesOutput{Candidates: candidates}, nil
}
