// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/sales-backoffice/backend/internal/domain/entity"
	"github.com/sales-backoffice/backend/internal/domain/valueobject"
)

// CreateLineRequestDTO is one parsed statement row in a batch creation request.
type CreateLineRequestDTO struct {
	PaymentDate        string `json:"payment_date" binding:"required"` // YYYY-MM-DD
	ClientCode         string `json:"client_code"`
	ClientNameDeclared string `json:"client_name_declared"`
	DocumentType       string `json:"document_type"`
	Series             string `json:"series"`
	DocumentNumber     string `json:"document_number"`
	InstallmentNumber  *int   `json:"installment_number"`
	DeclaredNet        string `json:"declared_net" binding:"required"`
	DeclaredFee        string `json:"declared_fee"`
}

// CreateBatchRequestDTO represents the request for POST /reconciliation/batches.
type CreateBatchRequestDTO struct {
	Month            int                    `json:"month" binding:"required"`
	Year             int                    `json:"year" binding:"required"`
	SourceFile       string                 `json:"source_file"`
	TotalDeclaredNet string                 `json:"total_declared_net" binding:"required"`
	TotalDeclaredFee string                 `json:"total_declared_fee"`
	Lines            []CreateLineRequestDTO `json:"lines"`
}

// LinkLineRequestDTO represents the request for POST /reconciliation/lines/:id/link.
type LinkLineRequestDTO struct {
	BillingRecordID string  `json:"billing_record_id" binding:"required"`
	InstallmentID   *string `json:"installment_id"`
}

// OverrideLineRequestDTO represents the request for PATCH /reconciliation/lines/:id.
// The field set is closed; unknown fields are rejected before any write.
type OverrideLineRequestDTO struct {
	DeclaredNet    *string `json:"declared_net"`
	DeclaredFee    *string `json:"declared_fee"`
	SystemNet      *string `json:"system_net"`
	SystemFee      *string `json:"system_fee"`
	Resolved       *bool   `json:"resolved"`
	ResolutionNote *string `json:"resolution_note"`
}

// SetBatchStateRequestDTO represents the request for POST /reconciliation/batches/:id/state.
type SetBatchStateRequestDTO struct {
	State string  `json:"state" binding:"required"`
	Notes *string `json:"notes"`
}

// BatchAggregateDTO is the updated batch aggregate returned by every mutating
// operation.
type BatchAggregateDTO struct {
	ID               string  `json:"id"`
	Month            int     `json:"month"`
	Year             int     `json:"year"`
	SourceFile       string  `json:"source_file,omitempty"`
	TotalDeclaredNet string  `json:"total_declared_net"`
	TotalDeclaredFee string  `json:"total_declared_fee"`
	TotalSystemNet   string  `json:"total_system_net"`
	TotalSystemFee   string  `json:"total_system_fee"`
	NetDelta         string  `json:"net_delta"`
	FeeDelta         string  `json:"fee_delta"`
	TotalLines       int     `json:"total_lines"`
	LinesOk          int     `json:"lines_ok"`
	LinesProblem     int     `json:"lines_problem"`
	State            string  `json:"state"`
	Notes            string  `json:"notes,omitempty"`
	ReviewedAt       *string `json:"reviewed_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// LineDTO represents one reconciliation line in responses.
type LineDTO struct {
	ID                    string  `json:"id"`
	BatchID               string  `json:"batch_id"`
	PaymentDate           string  `json:"payment_date"`
	ClientCode            string  `json:"client_code,omitempty"`
	ClientNameDeclared    string  `json:"client_name_declared,omitempty"`
	DocumentType          string  `json:"document_type,omitempty"`
	Series                string  `json:"series,omitempty"`
	DocumentNumber        string  `json:"document_number,omitempty"`
	InstallmentNumber     *int    `json:"installment_number,omitempty"`
	DeclaredNet           string  `json:"declared_net"`
	DeclaredFee           string  `json:"declared_fee"`
	LinkedClientID        *string `json:"linked_client_id,omitempty"`
	LinkedBillingRecordID *string `json:"linked_billing_record_id,omitempty"`
	LinkedInstallmentID   *string `json:"linked_installment_id,omitempty"`
	SystemNet             *string `json:"system_net,omitempty"`
	SystemFee             *string `json:"system_fee,omitempty"`
	Matches               bool    `json:"matches"`
	DiscrepancyKind       *string `json:"discrepancy_kind,omitempty"`
	NetDiff               *string `json:"net_diff,omitempty"`
	FeeDiff               *string `json:"fee_diff,omitempty"`
	Resolved              bool    `json:"resolved"`
	ResolutionNote        string  `json:"resolution_note,omitempty"`
	ManuallyEdited        bool    `json:"manually_edited"`
}

// CandidateDTO represents one ranked match candidate.
type CandidateDTO struct {
	BillingRecordID string   `json:"billing_record_id"`
	InstallmentIDs  []string `json:"installment_ids,omitempty"`
	ClientID        *string  `json:"client_id,omitempty"`
	ClientCode      string   `json:"client_code,omitempty"`
	ClientName      string   `json:"client_name,omitempty"`
	NetAmount       string   `json:"net_amount"`
	FeeAmount       *string  `json:"fee_amount,omitempty"`
	PaymentDate     string   `json:"payment_date"`
	AlreadyLinked   bool     `json:"already_linked_to_this_batch"`
	Score           string   `json:"score"`
}

// FindCandidatesResponseDTO represents the response for GET /reconciliation/lines/:id/candidates.
type FindCandidatesResponseDTO struct {
	Candidates []CandidateDTO `json:"candidates"`
}

// GetBatchResponseDTO represents the response for GET /reconciliation/batches/:id.
type GetBatchResponseDTO struct {
	Batch BatchAggregateDTO `json:"batch"`
	Lines []LineDTO         `json:"lines"`
}

// ListBatchesResponseDTO represents the response for GET /reconciliation/batches.
type ListBatchesResponseDTO struct {
	Batches []BatchAggregateDTO `json:"batches"`
	Total   int64               `json:"total"`
}

// ToBatchAggregateDTO converts a batch entity to its response DTO.
func ToBatchAggregateDTO(b *entity.ReconciliationBatch) BatchAggregateDTO {
	var reviewedAt *string
	if b.ReviewedAt != nil {
		formatted := b.ReviewedAt.UTC().Format(time.RFC3339)
		reviewedAt = &formatted
	}

	return BatchAggregateDTO{
		ID:               b.ID.String(),
		Month:            b.Month,
		Year:             b.Year,
		SourceFile:       b.SourceFile,
		TotalDeclaredNet: valueobject.RoundCents(b.TotalDeclaredNet).String(),
		TotalDeclaredFee: valueobject.RoundCents(b.TotalDeclaredFee).String(),
		TotalSystemNet:   valueobject.RoundCents(b.TotalSystemNet).String(),
		TotalSystemFee:   valueobject.RoundCents(b.TotalSystemFee).String(),
		NetDelta:         b.NetDelta.String(),
		FeeDelta:         b.FeeDelta.String(),
		TotalLines:       b.TotalLines,
		LinesOk:          b.LinesOk,
		LinesProblem:     b.LinesProblem,
		State:            string(b.State),
		Notes:            b.Notes,
		ReviewedAt:       reviewedAt,
		CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ToLineDTO converts a line entity to its response DTO.
func ToLineDTO(l *entity.ReconciliationLine) LineDTO {
	dto := LineDTO{
		ID:                 l.ID.String(),
		BatchID:            l.BatchID.String(),
		PaymentDate:        l.PaymentDate.Format("2006-01-02"),
		ClientCode:         l.ClientCode,
		ClientNameDeclared: l.ClientNameDeclared,
		DocumentType:       l.DocumentType,
		Series:             l.Series,
		DocumentNumber:     l.DocumentNumber,
		InstallmentNumber:  l.InstallmentNumber,
		DeclaredNet:        l.DeclaredNet.String(),
		DeclaredFee:        l.DeclaredFee.String(),
		Matches:            l.Matches,
		Resolved:           l.Resolved,
		ResolutionNote:     l.ResolutionNote,
		ManuallyEdited:     l.ManuallyEdited,
	}

	if l.LinkedClientID != nil {
		id := l.LinkedClientID.String()
		dto.LinkedClientID = &id
	}
	if l.LinkedBillingRecordID != nil {
		id := l.LinkedBillingRecordID.String()
		dto.LinkedBillingRecordID = &id
	}
	if l.LinkedInstallmentID != nil {
		id := l.LinkedInstallmentID.String()
		dto.LinkedInstallmentID = &id
	}
	if l.SystemNet != nil {
		value := l.SystemNet.String()
		dto.SystemNet = &value
	}
	if l.SystemFee != nil {
		value := l.SystemFee.String()
		dto.SystemFee = &value
	}
	if l.DiscrepancyKind != nil {
		kind := string(*l.DiscrepancyKind)
		dto.DiscrepancyKind = &kind
	}
	if l.NetDiff != nil {
		value := l.NetDiff.String()
		dto.NetDiff = &value
	}
	if l.FeeDiff != nil {
		value := l.FeeDiff.String()
		dto.FeeDiff = &value
	}

	return dto
}

// ToCandidateDTO converts a candidate value object to its response DTO.
func ToCandidateDTO(c valueobject.Candidate) CandidateDTO {
	dto := CandidateDTO{
		BillingRecordID: c.BillingRecordID.String(),
		ClientCode:      c.ClientCode,
		ClientName:      c.ClientName,
		NetAmount:       c.NetAmount.String(),
		PaymentDate:     c.PaymentDate.Format("2006-01-02"),
		AlreadyLinked:   c.AlreadyLinked,
		Score:           c.Score.String(),
	}

	if len(c.InstallmentIDs) > 0 {
		dto.InstallmentIDs = make([]string, len(c.InstallmentIDs))
		for i, id := range c.InstallmentIDs {
			dto.InstallmentIDs[i] = id.String()
		}
	}
	if c.ClientID != nil {
		id := c.ClientID.String()
		dto.ClientID = &id
	}
	if c.FeeAmount != nil {
		value := c.FeeAmount.String()
		dto.FeeAmount = &value
	}

	return dto
}
