// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sales-backoffice/backend/internal/domain/entity"
)

// ReconciliationBatchModel represents the reconciliation_batches table.
type ReconciliationBatchModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Month      int       `gorm:"not null;index:idx_recon_batches_period"`
	Year       int       `gorm:"not null;index:idx_recon_batches_period"`
	SourceFile string    `gorm:"type:varchar(255)"`

	TotalDeclaredNet decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalDeclaredFee decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalSystemNet   decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalSystemFee   decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	NetDelta         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	FeeDelta         decimal.Decimal `gorm:"type:decimal(15,2);not null"`

	TotalLines   int `gorm:"not null"`
	LinesOk      int `gorm:"not null"`
	LinesProblem int `gorm:"not null"`

	State      string `gorm:"type:varchar(20);not null;index"`
	Notes      string `gorm:"type:text"`
	ReviewedAt *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`

	// Owned lines; deleting the batch cascades.
	Lines []ReconciliationLineModel `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the ReconciliationBatchModel.
func (ReconciliationBatchModel) TableName() string {
	return "reconciliation_batches"
}

// ReconciliationLineModel represents the reconciliation_lines table.
type ReconciliationLineModel struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	BatchID uuid.UUID `gorm:"type:uuid;not null;index"`

	PaymentDate        time.Time `gorm:"type:date;not null"`
	ClientCode         string    `gorm:"type:varchar(30);index"`
	ClientNameDeclared string    `gorm:"type:varchar(255)"`
	DocumentType       string    `gorm:"type:varchar(20)"`
	Series             string    `gorm:"type:varchar(20)"`
	DocumentNumber     string    `gorm:"type:varchar(40)"`
	InstallmentNumber  *int
	DeclaredNet        decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	DeclaredFee        decimal.Decimal `gorm:"type:decimal(15,2);not null"`

	// Weak references into billing data; no FK constraints, records can be
	// deleted outside the engine.
	LinkedClientID        *uuid.UUID `gorm:"type:uuid"`
	LinkedBillingRecordID *uuid.UUID `gorm:"type:uuid;index"`
	LinkedInstallmentID   *uuid.UUID `gorm:"type:uuid"`

	SystemNet *decimal.Decimal `gorm:"type:decimal(15,2)"`
	SystemFee *decimal.Decimal `gorm:"type:decimal(15,2)"`

	Matches         bool    `gorm:"not null;default:false"`
	DiscrepancyKind *string `gorm:"type:varchar(30)"`
	// Diffs keep full precision; they are only rounded for display.
	NetDiff *decimal.Decimal `gorm:"type:decimal(15,4)"`
	FeeDiff *decimal.Decimal `gorm:"type:decimal(15,4)"`

	Resolved       bool   `gorm:"not null;default:false"`
	ResolutionNote string `gorm:"type:text"`
	ManuallyEdited bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the ReconciliationLineModel.
func (ReconciliationLineModel) TableName() string {
	return "reconciliation_lines"
}

// ToEntity converts a ReconciliationBatchModel to a domain entity.
func (m *ReconciliationBatchModel) ToEntity() *entity.ReconciliationBatch {
	return &entity.ReconciliationBatch{
		ID:               m.ID,
		Month:            m.Month,
		Year:             m.Year,
		SourceFile:       m.SourceFile,
		TotalDeclaredNet: m.TotalDeclaredNet,
		TotalDeclaredFee: m.TotalDeclaredFee,
		TotalSystemNet:   m.TotalSystemNet,
		TotalSystemFee:   m.TotalSystemFee,
		NetDelta:         m.NetDelta,
		FeeDelta:         m.FeeDelta,
		TotalLines:       m.TotalLines,
		LinesOk:          m.LinesOk,
		LinesProblem:     m.LinesProblem,
		State:            entity.BatchState(m.State),
		Notes:            m.Notes,
		ReviewedAt:       m.ReviewedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// BatchModelFromEntity converts a domain batch to its database model.
func BatchModelFromEntity(b *entity.ReconciliationBatch) *ReconciliationBatchModel {
	return &ReconciliationBatchModel{
		ID:               b.ID,
		Month:            b.Month,
		Year:             b.Year,
		SourceFile:       b.SourceFile,
		TotalDeclaredNet: b.TotalDeclaredNet,
		TotalDeclaredFee: b.TotalDeclaredFee,
		TotalSystemNet:   b.TotalSystemNet,
		TotalSystemFee:   b.TotalSystemFee,
		NetDelta:         b.NetDelta,
		FeeDelta:         b.FeeDelta,
		TotalLines:       b.TotalLines,
		LinesOk:          b.LinesOk,
		LinesProblem:     b.LinesProblem,
		State:            string(b.State),
		Notes:            b.Notes,
		ReviewedAt:       b.ReviewedAt,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// ToEntity converts a ReconciliationLineModel to a domain entity.
func (m *ReconciliationLineModel) ToEntity() *entity.ReconciliationLine {
	var kind *entity.DiscrepancyKind
	if m.DiscrepancyKind != nil {
		k := entity.DiscrepancyKind(*m.DiscrepancyKind)
		kind = &k
	}

	return &entity.ReconciliationLine{
		ID:                    m.ID,
		BatchID:               m.BatchID,
		PaymentDate:           m.PaymentDate,
		ClientCode:            m.ClientCode,
		ClientNameDeclared:    m.ClientNameDeclared,
		DocumentType:          m.DocumentType,
		Series:                m.Series,
		DocumentNumber:        m.DocumentNumber,
		InstallmentNumber:     m.InstallmentNumber,
		DeclaredNet:           m.DeclaredNet,
		DeclaredFee:           m.DeclaredFee,
		LinkedClientID:        m.LinkedClientID,
		LinkedBillingRecordID: m.LinkedBillingRecordID,
		LinkedInstallmentID:   m.LinkedInstallmentID,
		SystemNet:             m.SystemNet,
		SystemFee:             m.SystemFee,
		Matches:               m.Matches,
		DiscrepancyKind:       kind,
		NetDiff:               m.NetDiff,
		FeeDiff:               m.FeeDiff,
		Resolved:              m.Resolved,
		ResolutionNote:        m.ResolutionNote,
		ManuallyEdited:        m.ManuallyEdited,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// LineModelFromEntity converts a domain line to its database model.
func LineModelFromEntity(l *entity.ReconciliationLine) *ReconciliationLineModel {
	var kind *string
	if l.DiscrepancyKind != nil {
		k := string(*l.DiscrepancyKind)
		kind = &k
	}

	return &ReconciliationLineModel{
		ID:                    l.ID,
		BatchID:               l.BatchID,
		PaymentDate:           l.PaymentDate,
		ClientCode:            l.ClientCode,
		ClientNameDeclared:    l.ClientNameDeclared,
		DocumentType:          l.DocumentType,
		Series:                l.Series,
		DocumentNumber:        l.DocumentNumber,
		InstallmentNumber:     l.InstallmentNumber,
		DeclaredNet:           l.DeclaredNet,
		DeclaredFee:           l.DeclaredFee,
		LinkedClientID:        l.LinkedClientID,
		LinkedBillingRecordID: l.LinkedBillingRecordID,
		LinkedInstallmentID:   l.LinkedInstallmentID,
		SystemNet:             l.SystemNet,
		SystemFee:             l.SystemFee,
		Matches:               l.Matches,
		DiscrepancyKind:       kind,
		NetDiff:               l.NetDiff,
		FeeDiff:               l.FeeDiff,
		Resolved:              l.Resolved,
		ResolutionNote:        l.ResolutionNote,
		ManuallyEdited:        l.ManuallyEdited,
		CreatedAt:             l.CreatedAt,
		UpdatedAt:             l.UpdatedAt,
	}
}
