// Package reconciliation contains the statement reconciliation use cases.
package reconciliation

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sales-backoffice/backend/internal/application/adapter"
	"github.com/sales-backoffice/backend/internal/domain/entity"
)

// fakeStore is an in-memory stand-in for the persistence layer. All fakes share
// it so a use case sees its own writes, as it would inside a real transaction.
type fakeStore struct {
	batches map[uuid.UUID]*entity.ReconciliationBatch
	lines   map[uuid.UUID]*entity.ReconciliationLine
	records map[uuid.UUID]*entity.BillingRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		batches: make(map[uuid.UUID]*entity.ReconciliationBatch),
		lines:   make(map[uuid.UUID]*entity.ReconciliationLine),
		records: make(map[uuid.UUID]*entity.BillingRecord),
	}
}

type fakeReconciliationRepo struct {
	store *fakeStore
}

func (r *fakeReconciliationRepo) CreateBatch(_ context.Context, batch *entity.ReconciliationBatch, lines []*entity.ReconciliationLine) error {
	b := *batch
	r.store.batches[batch.ID] = &b
	for _, line := range lines {
		l := *line
		r.store.lines[line.ID] = &l
	}
	return nil
}

func (r *fakeReconciliationRepo) GetBatch(_ context.Context, id uuid.UUID) (*entity.ReconciliationBatch, error) {
	batch, ok := r.store.batches[id]
	if !ok {
		return nil, nil
	}
	b := *batch
	return &b, nil
}

func (r *fakeReconciliationRepo) ListBatches(_ context.Context, limit, offset int) ([]*entity.ReconciliationBatch, int64, error) {
	var all []*entity.ReconciliationBatch
	for _, batch := range r.store.batches {
		b := *batch
		all = append(all, &b)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Year != all[j].Year {
			return all[i].Year > all[j].Year
		}
		return all[i].Month > all[j].Month
	})

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *fakeReconciliationRepo) DeleteBatch(_ context.Context, id uuid.UUID) error {
	delete(r.store.batches, id)
	for lineID, line := range r.store.lines {
		if line.BatchID == id {
			delete(r.store.lines, lineID)
		}
	}
	return nil
}

func (r *fakeReconciliationRepo) GetLine(_ context.Context, id uuid.UUID) (*entity.ReconciliationLine, error) {
	line, ok := r.store.lines[id]
	if !ok {
		return nil, nil
	}
	l := *line
	return &l, nil
}

func (r *fakeReconciliationRepo) ListLines(_ context.Context, batchID uuid.UUID) ([]*entity.ReconciliationLine, error) {
	var lines []*entity.ReconciliationLine
	for _, line := range r.store.lines {
		if line.BatchID == batchID {
			l := *line
			lines = append(lines, &l)
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].CreatedAt.Equal(lines[j].CreatedAt) {
			return lines[i].CreatedAt.Before(lines[j].CreatedAt)
		}
		return lines[i].ID.String() < lines[j].ID.String()
	})
	return lines, nil
}

func (r *fakeReconciliationRepo) SaveLine(_ context.Context, line *entity.ReconciliationLine) error {
	l := *line
	r.store.lines[line.ID] = &l
	return nil
}

func (r *fakeReconciliationRepo) SaveBatchAggregate(_ context.Context, batch *entity.ReconciliationBatch) error {
	b := *batch
	r.store.batches[batch.ID] = &b
	return nil
}

type fakeBillingRepo struct {
	store *fakeStore
}

func (r *fakeBillingRepo) FindPaidInWindow(_ context.Context, start, end time.Time) ([]adapter.BillingCandidateData, error) {
	var out []adapter.BillingCandidateData
	for _, record := range r.store.records {
		if !record.PaidWithin(start, end) {
			continue
		}

		data := adapter.BillingCandidateData{
			BillingRecordID: record.ID,
			ClientID:        record.ClientID,
			NetAmount:       record.MatchAmount(),
			FeeAmount:       record.FeeAmount,
		}
		if record.Client != nil {
			data.ClientCode = record.Client.Code
			data.ClientName = record.Client.Name
		}
		if record.PaidAt != nil && !record.PaidAt.Before(start) && !record.PaidAt.After(end) {
			data.PaymentDate = *record.PaidAt
		}
		for _, inst := range record.InstallmentsPaidWithin(start, end) {
			data.InstallmentIDs = append(data.InstallmentIDs, inst.ID)
			if data.PaymentDate.IsZero() || inst.PaidAt.Before(data.PaymentDate) {
				data.PaymentDate = *inst.PaidAt
			}
		}
		out = append(out, data)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BillingRecordID.String() < out[j].BillingRecordID.String()
	})
	return out, nil
}

func (r *fakeBillingRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.BillingRecord, error) {
	record, ok := r.store.records[id]
	if !ok {
		return nil, nil
	}
	rec := *record
	return &rec, nil
}

func (r *fakeBillingRepo) SetInvoiceNumberIfBlank(_ context.Context, id uuid.UUID, invoiceNumber string) (bool, error) {
	record, ok := r.store.records[id]
	if !ok || record.DocumentNumber != "" {
		return false, nil
	}
	record.DocumentNumber = invoiceNumber
	return true, nil
}

type fakeTxManager struct {
	store *fakeStore
}

func (m *fakeTxManager) InTransaction(_ context.Context, fn func(repos adapter.Repositories) error) error {
	return fn(adapter.Repositories{
		Reconciliation: &fakeReconciliationRepo{store: m.store},
		Billing:        &fakeBillingRepo{store: m.store},
	})
}

// Fixture helpers.

func seedBatch(store *fakeStore, month, year int, declaredNet, declaredFee string, lines ...*entity.ReconciliationLine) *entity.ReconciliationBatch {
	batch := entity.NewReconciliationBatch(month, year, "statement.csv", dec(declaredNet), dec(declaredFee), len(lines))
	store.batches[batch.ID] = batch
	for i, line := range lines {
		line.BatchID = batch.ID
		// Spread creation times so ingestion order is deterministic.
		line.CreatedAt = line.CreatedAt.Add(time.Duration(i) * time.Millisecond)
		store.lines[line.ID] = line
	}
	return batch
}

func seedLine(clientCode, documentNumber, declaredNet, declaredFee string, paymentDate time.Time) *entity.ReconciliationLine {
	return entity.NewReconciliationLine(
		uuid.Nil, paymentDate,
		clientCode, "Declared Client", "NF", "A", documentNumber,
		nil, dec(declaredNet), dec(declaredFee),
	)
}

func seedRecord(store *fakeStore, clientCode, documentNumber, net, fee string, paidAt *time.Time) *entity.BillingRecord {
	clientID := uuid.New()
	record := &entity.BillingRecord{
		ID:             uuid.New(),
		ClientID:       &clientID,
		Client:         &entity.Client{ID: clientID, Code: clientCode, Name: "Client " + clientCode},
		DocumentNumber: documentNumber,
		NetAmount:      decPtr(net),
		GrossAmount:    dec(net).Mul(decimal.NewFromFloat(1.1)),
		FeeAmount:      decPtr(fee),
		Paid:           paidAt != nil,
		PaidAt:         paidAt,
	}
	store.records[record.ID] = record
	return record
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

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }
