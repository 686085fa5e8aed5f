// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sales-backoffice/backend/internal/domain/entity"
)

// ClientModel represents the clients table.
type ClientModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	Name      string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the ClientModel.
func (ClientModel) TableName() string {
	return "clients"
}

// ToEntity converts a ClientModel to a domain entity.
func (m *ClientModel) ToEntity() *entity.Client {
	return &entity.Client{
		ID:   m.ID,
		Code: m.Code,
		Name: m.Name,
	}
}

// BillingRecordModel represents the billing_records table.
type BillingRecordModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ClientID       *uuid.UUID `gorm:"type:uuid;index"`
	DocumentNumber string     `gorm:"type:varchar(40);index"`

	NetAmount   *decimal.Decimal `gorm:"type:decimal(15,2)"`
	GrossAmount decimal.Decimal  `gorm:"type:decimal(15,2);not null"`
	FeeAmount   *decimal.Decimal `gorm:"type:decimal(15,2)"`

	Paid   bool       `gorm:"not null;default:false"`
	PaidAt *time.Time `gorm:"index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Relationships (not loaded by default, use Preload)
	Client       *ClientModel       `gorm:"foreignKey:ClientID;references:ID"`
	Installments []InstallmentModel `gorm:"foreignKey:BillingRecordID;references:ID"`
}

// TableName returns the table name for the BillingRecordModel.
func (BillingRecordModel) TableName() string {
	return "billing_records"
}

// InstallmentModel represents the billing_installments table.
type InstallmentModel struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	BillingRecordID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Number          int              `gorm:"not null"`
	Amount          decimal.Decimal  `gorm:"type:decimal(15,2);not null"`
	FeeAmount       *decimal.Decimal `gorm:"type:decimal(15,2)"`
	PaidAt          *time.Time       `gorm:"index"`
}

// TableName returns the table name for the InstallmentModel.
func (InstallmentModel) TableName() string {
	return "billing_installments"
}

// ToEntity converts an InstallmentModel to a domain entity.
func (m *InstallmentModel) ToEntity() entity.Installment {
	return entity.Installment{
		ID:              m.ID,
		BillingRecordID: m.BillingRecordID,
		Number:          m.Number,
		Amount:          m.Amount,
		FeeAmount:       m.FeeAmount,
		PaidAt:          m.PaidAt,
	}
}

// ToEntity converts a BillingRecordModel with its associations to a domain entity.
func (m *BillingRecordModel) ToEntity() *entity.BillingRecord {
	record := &entity.BillingRecord{
		ID:             m.ID,
		ClientID:       m.ClientID,
		DocumentNumber: m.DocumentNumber,
		NetAmount:      m.NetAmount,
		GrossAmount:    m.GrossAmount,
		FeeAmount:      m.FeeAmount,
		Paid:           m.Paid,
		PaidAt:         m.PaidAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}

	if m.Client != nil {
		record.Client = m.Client.ToEntity()
	}

	record.Installments = make([]entity.Installment, len(m.Installments))
	for i := range m.Installments {
		record.Installments[i] = m.Installments[i].ToEntity()
	}

	return record
}
