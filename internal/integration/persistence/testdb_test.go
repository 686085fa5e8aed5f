// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sales-backoffice/backend/internal/domain/entity"
	"github.com/sales-backoffice/backend/internal/integration/persistence/model"
)

// newTestDB opens a fresh in-memory SQLite database migrated with every model.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// One in-memory database per connection; keep the pool on a single one.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.ClientModel{},
		&model.BillingRecordModel{},
		&model.InstallmentModel{},
		&model.ReconciliationBatchModel{},
		&model.ReconciliationLineModel{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func timePtr(t time.Time) *time.Time { return &t }

func marchDay(day int) time.Time {
	return time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC)
}

// insertRecord stores a client and a billing record paid directly at paidAt.
func insertRecord(t *testing.T, db *gorm.DB, clientCode, documentNumber, net, fee string, paidAt *time.Time) uuid.UUID {
	t.Helper()

	now := time.Now().UTC()
	client := model.ClientModel{
		ID:        uuid.New(),
		Code:      clientCode,
		Name:      "Client " + clientCode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("failed to insert client: %v", err)
	}

	record := model.BillingRecordModel{
		ID:             uuid.New(),
		ClientID:       &client.ID,
		DocumentNumber: documentNumber,
		NetAmount:      decPtr(net),
		GrossAmount:    dec(net).Mul(dec("1.1")),
		FeeAmount:      decPtr(fee),
		Paid:           paidAt != nil,
		PaidAt:         paidAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("failed to insert billing record: %v", err)
	}

	return record.ID
}

func insertInstallment(t *testing.T, db *gorm.DB, recordID uuid.UUID, number int, amount string, paidAt *time.Time) uuid.UUID {
	t.Helper()

	row := model.InstallmentModel{
		ID:              uuid.New(),
		BillingRecordID: recordID,
		Number:          number,
		Amount:          dec(amount),
		PaidAt:          paidAt,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("failed to insert installment: %v", err)
	}
	return row.ID
}

func newBatchWithLine(t *testing.T, db *gorm.DB) (*entity.ReconciliationBatch, *entity.ReconciliationLine) {
	t.Helper()

	batch := entity.NewReconciliationBatch(3, 2025, "statement.csv", dec("150.00"), dec("4.50"), 1)
	line := entity.NewReconciliationLine(
		batch.ID, marchDay(10),
		"C100", "Declared Client", "NF", "A", "NF-001",
		nil, dec("150.00"), dec("4.50"),
	)

	repo := NewReconciliationRepository(db)
	if err := repo.CreateBatch(context.Background(), batch, []*entity.ReconciliationLine{line}); err != nil {
		t.Fatalf("failed to create batch: %v", err)
	}
	return batch, line
}
