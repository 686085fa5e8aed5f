package steps

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sales-backoffice/backend/internal/integration/persistence/model"
)

func (t *testContext) registerSteps(ctx *godog.ScenarioContext) {
	// Givens: system-side billing data.
	ctx.Step(`^a billing record "([^"]*)" for client "([^"]*)" of ([\d.]+) net and ([\d.]+) fee paid on (\d{4}-\d{2}-\d{2})$`, t.aPaidBillingRecord)
	ctx.Step(`^an unpaid billing record "([^"]*)" for client "([^"]*)" of ([\d.]+) net and ([\d.]+) fee$`, t.anUnpaidBillingRecord)
	ctx.Step(`^a billing record with a blank invoice number for client "([^"]*)" of ([\d.]+) net and ([\d.]+) fee paid on (\d{4}-\d{2}-\d{2})$`, t.aBlankInvoiceBillingRecord)
	ctx.Step(`^billing record "([^"]*)" has installment (\d+) of ([\d.]+) paid on (\d{4}-\d{2}-\d{2})$`, t.billingRecordHasInstallment)

	// Whens: reviewer actions through the API.
	ctx.Step(`^I ingest a statement for (\d{4})-(\d{2}) declaring ([\d.]+) net and ([\d.]+) fee with lines:$`, t.iIngestAStatement)
	ctx.Step(`^I request candidates for line "([^"]*)"$`, t.iRequestCandidates)
	ctx.Step(`^I link line "([^"]*)" to billing record "([^"]*)"$`, t.iLinkLine)
	ctx.Step(`^I link line "([^"]*)" to installment (\d+) of billing record "([^"]*)"$`, t.iLinkLineToInstallment)
	ctx.Step(`^I link line "([^"]*)" to an unknown billing record$`, t.iLinkLineToUnknownRecord)
	ctx.Step(`^I unlink line "([^"]*)"$`, t.iUnlinkLine)
	ctx.Step(`^I override line "([^"]*)" with:$`, t.iOverrideLine)
	ctx.Step(`^I resolve line "([^"]*)" with note "([^"]*)"$`, t.iResolveLine)
	ctx.Step(`^I set the batch state to "([^"]*)" with notes "([^"]*)"$`, t.iSetBatchState)
	ctx.Step(`^I fetch the batch$`, t.iFetchBatch)
	ctx.Step(`^I delete the batch$`, t.iDeleteBatch)
	ctx.Step(`^I list batches$`, t.iListBatches)

	// Thens: response and persisted-state assertions.
	ctx.Step(`^the response status should be (\d+)$`, t.theResponseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, t.theResponseFieldShouldBe)
	ctx.Step(`^the error code should be "([^"]*)"$`, t.theErrorCodeShouldBe)
	ctx.Step(`^the batch state should be "([^"]*)"$`, t.theBatchStateShouldBe)
	ctx.Step(`^the batch should count (\d+) ok and (\d+) problem lines$`, t.theBatchShouldCount)
	ctx.Step(`^there should be (\d+) candidates$`, t.thereShouldBeCandidates)
	ctx.Step(`^candidate (\d+) should be billing record "([^"]*)"$`, t.candidateShouldBeRecord)
	ctx.Step(`^line "([^"]*)" should match$`, t.lineShouldMatch)
	ctx.Step(`^line "([^"]*)" should show discrepancy "([^"]*)"$`, t.lineShouldShowDiscrepancy)
	ctx.Step(`^line "([^"]*)" should be resolved$`, t.lineShouldBeResolved)
	ctx.Step(`^line "([^"]*)" should be unlinked$`, t.lineShouldBeUnlinked)
	ctx.Step(`^billing record "([^"]*)" should carry invoice number "([^"]*)"$`, t.recordShouldCarryInvoiceNumber)
}

func (t *testContext) aPaidBillingRecord(documentNumber, clientCode, net, fee, paidOn string) error {
	paidAt, err := time.Parse("2006-01-02", paidOn)
	if err != nil {
		return err
	}
	return t.insertBillingRecord(documentNumber, documentNumber, clientCode, net, fee, &paidAt)
}

func (t *testContext) anUnpaidBillingRecord(documentNumber, clientCode, net, fee string) error {
	return t.insertBillingRecord(documentNumber, documentNumber, clientCode, net, fee, nil)
}

// aBlankInvoiceBillingRecord seeds a record whose invoice number has not been
// issued yet. The record is remembered under the key "blank".
func (t *testContext) aBlankInvoiceBillingRecord(clientCode, net, fee, paidOn string) error {
	paidAt, err := time.Parse("2006-01-02", paidOn)
	if err != nil {
		return err
	}
	return t.insertBillingRecord("blank", "", clientCode, net, fee, &paidAt)
}

func (t *testContext) insertBillingRecord(key, documentNumber, clientCode, net, fee string, paidAt *time.Time) error {
	netAmount, err := decimal.NewFromString(net)
	if err != nil {
		return err
	}
	feeAmount, err := decimal.NewFromString(fee)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	client := model.ClientModel{
		ID:        uuid.New(),
		Code:      clientCode,
		Name:      "Client " + clientCode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.db.DbConn.Create(&client).Error; err != nil {
		return err
	}

	record := model.BillingRecordModel{
		ID:             uuid.New(),
		ClientID:       &client.ID,
		DocumentNumber: documentNumber,
		NetAmount:      &netAmount,
		GrossAmount:    netAmount,
		FeeAmount:      &feeAmount,
		Paid:           paidAt != nil,
		PaidAt:         paidAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := t.db.DbConn.Create(&record).Error; err != nil {
		return err
	}

	t.recordIDs[key] = record.ID.String()
	return nil
}

func (t *testContext) billingRecordHasInstallment(documentNumber string, number int, amount, paidOn string) error {
	recordID, ok := t.recordIDs[documentNumber]
	if !ok {
		return fmt.Errorf("no billing record seeded as %q", documentNumber)
	}
	paidAt, err := time.Parse("2006-01-02", paidOn)
	if err != nil {
		return err
	}
	installmentAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}

	row := model.InstallmentModel{
		ID:              uuid.New(),
		BillingRecordID: uuid.MustParse(recordID),
		Number:          number,
		Amount:          installmentAmount,
		PaidAt:          &paidAt,
	}
	return t.db.DbConn.Create(&row).Error
}

// iIngestAStatement posts a batch built from the scenario table and, when the
// creation succeeds, captures the batch and per-line ids keyed by document
// number.
func (t *testContext) iIngestAStatement(year, month, totalNet, totalFee string, table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("the statement table needs a header and at least one line")
	}

	header := make(map[int]string, len(table.Rows[0].Cells))
	for i, cell := range table.Rows[0].Cells {
		header[i] = cell.Value
	}

	lines := make([]map[string]any, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		line := make(map[string]any, len(row.Cells))
		for i, cell := range row.Cells {
			if cell.Value == "" {
				continue
			}
			if header[i] == "installment_number" {
				number, err := strconv.Atoi(cell.Value)
				if err != nil {
					return err
				}
				line[header[i]] = number
				continue
			}
			line[header[i]] = cell.Value
		}
		lines = append(lines, line)
	}

	monthValue, err := strconv.Atoi(month)
	if err != nil {
		return err
	}
	yearValue, err := strconv.Atoi(year)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"month":              monthValue,
		"year":               yearValue,
		"source_file":        "statement.csv",
		"total_declared_net": totalNet,
		"total_declared_fee": totalFee,
		"lines":              lines,
	}
	if err := t.request(http.MethodPost, "/api/v1/reconciliation/batches", payload); err != nil {
		return err
	}
	if t.status != http.StatusCreated {
		return nil
	}

	id, err := t.field("id")
	if err != nil {
		return err
	}
	t.batchID = id.(string)
	return t.captureLineIDs()
}

// captureLineIDs reads the batch back and remembers each line id under its
// document number.
func (t *testContext) captureLineIDs() error {
	resp, err := http.Get(t.server.URL + "/api/v1/reconciliation/batches/" + t.batchID)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body struct {
		Lines []struct {
			ID             string `json:"id"`
			DocumentNumber string `json:"document_number"`
		} `json:"lines"`
	}
	if err := jsonDecode(resp.Body, &body); err != nil {
		return err
	}
	for _, line := range body.Lines {
		t.lineIDs[line.DocumentNumber] = line.ID
	}
	return nil
}

func (t *testContext) iRequestCandidates(documentNumber string) error {
	lineID, err := t.lineID(documentNumber)
	if err != nil {
		return err
	}
	return t.request(http.MethodGet, "/api/v1/reconciliation/lines/"+lineID+"/candidates", nil)
}

func (t *testContext) iLinkLine(lineDoc, recordDoc string) error {
	lineID, err := t.lineID(lineDoc)
	if err != nil {
		return err
	}
	recordID, ok := t.recordIDs[recordDoc]
	if !ok {
		return fmt.Errorf("no billing record seeded as %q", recordDoc)
	}
	return t.request(http.MethodPost, "/api/v1/reconciliation/lines/"+lineID+"/link",
		map[string]any{"billing_record_id": recordID})
}

func (t *testContext) iLinkLineToInstallment(lineDoc string, number int, recordDoc string) error {
	lineID, err := t.lineID(lineDoc)
	if err != nil {
		return err
	}
	recordID, ok := t.recordIDs[recordDoc]
	if !ok {
		return fmt.Errorf("no billing record seeded as %q", recordDoc)
	}

	var row model.InstallmentModel
	err = t.db.DbConn.
		Where("billing_record_id = ? AND number = ?", uuid.MustParse(recordID), number).
		First(&row).Error
	if err != nil {
		return fmt.Errorf("installment %d of %q not seeded: %w", number, recordDoc, err)
	}

	return t.request(http.MethodPost, "/api/v1/reconciliation/lines/"+lineID+"/link",
		map[string]any{"billing_record_id": recordID, "installment_id": row.ID.String()})
}

func (t *testContext) iLinkLineToUnknownRecord(lineDoc string) error {
	lineID, err := t.lineID(lineDoc)
	if err != nil {
		return err
	}
	return t.request(http.MethodPost, "/api/v1/reconciliation/lines/"+lineID+"/link",
		map[string]any{"billing_record_id": uuid.NewString()})
}

func (t *testContext) iUnlinkLine(lineDoc string) error {
	lineID, err := t.lineID(lineDoc)
	if err != nil {
		return err
	}
	return t.request(http.MethodPost, "/api/v1/reconciliation/lines/"+lineID+"/unlink", nil)
}

func (t *testContext) iOverrideLine(lineDoc string, table *godog.Table) error {
	lineID, err := t.lineID(lineDoc)
	if err != nil {
		return err
	}

	payload := make(map[string]any, len(table.Rows))
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("override table rows need a field and a value")
		}
		field, value := row.Cells[0].Value, row.Cells[1].Value
		if field == "resolved" {
			payload[field] = value == "true"
			continue
		}
		payload[field] = value
	}

	return t.request(http.MethodPatch, "/api/v1/reconciliation/lines/"+lineID, payload)
}

func (t *testContext) iResolveLine(lineDoc, note string) error {
	lineID, err := t.lineID(lineDoc)
	if err != nil {
		return err
	}
	return t.request(http.MethodPatch, "/api/v1/reconciliation/lines/"+lineID,
		map[string]any{"resolved": true, "resolution_note": note})
}

func (t *testContext) iSetBatchState(state, notes string) error {
	return t.request(http.MethodPost, "/api/v1/reconciliation/batches/"+t.batchID+"/state",
		map[string]any{"state": state, "notes": notes})
}

func (t *testContext) iFetchBatch() error {
	return t.request(http.MethodGet, "/api/v1/reconciliation/batches/"+t.batchID, nil)
}

func (t *testContext) iDeleteBatch() error {
	return t.request(http.MethodDelete, "/api/v1/reconciliation/batches/"+t.batchID, nil)
}

func (t *testContext) iListBatches() error {
	return t.request(http.MethodGet, "/api/v1/reconciliation/batches", nil)
}

func (t *testContext) theResponseStatusShouldBe(expected int) error {
	if t.status != expected {
		return fmt.Errorf("expected status %d, got %d (body: %v)", expected, t.status, t.body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(path, expected string) error {
	value, err := t.field(path)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected %q at %q, got %q", expected, path, got)
	}
	return nil
}

func (t *testContext) theErrorCodeShouldBe(expected string) error {
	return t.theResponseFieldShouldBe("code", expected)
}

// theBatchStateShouldBe checks the state on the last returned aggregate,
// whether it came back bare from a mutation or nested under "batch".
func (t *testContext) theBatchStateShouldBe(expected string) error {
	path := "state"
	if _, ok := t.body["batch"]; ok {
		path = "batch.state"
	}
	return t.theResponseFieldShouldBe(path, expected)
}

func (t *testContext) theBatchShouldCount(ok, problem int) error {
	prefix := ""
	if _, nested := t.body["batch"]; nested {
		prefix = "batch."
	}
	if err := t.theResponseFieldShouldBe(prefix+"lines_ok", strconv.Itoa(ok)); err != nil {
		return err
	}
	return t.theResponseFieldShouldBe(prefix+"lines_problem", strconv.Itoa(problem))
}

func (t *testContext) thereShouldBeCandidates(expected int) error {
	candidates, err := t.candidateList()
	if err != nil {
		return err
	}
	if len(candidates) != expected {
		return fmt.Errorf("expected %d candidates, got %d", expected, len(candidates))
	}
	return nil
}

func (t *testContext) candidateShouldBeRecord(position int, recordDoc string) error {
	recordID, ok := t.recordIDs[recordDoc]
	if !ok {
		return fmt.Errorf("no billing record seeded as %q", recordDoc)
	}
	candidates, err := t.candidateList()
	if err != nil {
		return err
	}
	if position < 1 || position > len(candidates) {
		return fmt.Errorf("candidate %d out of range, got %d candidates", position, len(candidates))
	}

	candidate, ok := candidates[position-1].(map[string]any)
	if !ok {
		return fmt.Errorf("candidate %d is not an object", position)
	}
	if got := fmt.Sprint(candidate["billing_record_id"]); got != recordID {
		return fmt.Errorf("expected candidate %d to be record %q (%s), got %s", position, recordDoc, recordID, got)
	}
	return nil
}

func (t *testContext) candidateList() ([]any, error) {
	raw, ok := t.body["candidates"]
	if !ok {
		return nil, fmt.Errorf("the last response carries no candidates")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("candidates is not a list")
	}
	return list, nil
}

func (t *testContext) lineShouldMatch(lineDoc string) error {
	line, err := t.fetchLine(lineDoc)
	if err != nil {
		return err
	}
	if line["matches"] != true {
		return fmt.Errorf("expected line %q to match, got discrepancy %v", lineDoc, line["discrepancy_kind"])
	}
	return nil
}

func (t *testContext) lineShouldShowDiscrepancy(lineDoc, expected string) error {
	line, err := t.fetchLine(lineDoc)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(line["discrepancy_kind"]); got != expected {
		return fmt.Errorf("expected discrepancy %q on line %q, got %q", expected, lineDoc, got)
	}
	return nil
}

func (t *testContext) lineShouldBeResolved(lineDoc string) error {
	line, err := t.fetchLine(lineDoc)
	if err != nil {
		return err
	}
	if line["resolved"] != true {
		return fmt.Errorf("expected line %q resolved", lineDoc)
	}
	return nil
}

func (t *testContext) lineShouldBeUnlinked(lineDoc string) error {
	line, err := t.fetchLine(lineDoc)
	if err != nil {
		return err
	}
	if _, linked := line["linked_billing_record_id"]; linked {
		return fmt.Errorf("expected line %q unlinked", lineDoc)
	}
	if line["matches"] != false {
		return fmt.Errorf("expected line %q back to unmatched", lineDoc)
	}
	return nil
}

func (t *testContext) recordShouldCarryInvoiceNumber(recordDoc, expected string) error {
	recordID, ok := t.recordIDs[recordDoc]
	if !ok {
		return fmt.Errorf("no billing record seeded as %q", recordDoc)
	}

	var row model.BillingRecordModel
	if err := t.db.DbConn.Where("id = ?", uuid.MustParse(recordID)).First(&row).Error; err != nil {
		return err
	}
	if row.DocumentNumber != expected {
		return fmt.Errorf("expected invoice number %q, got %q", expected, row.DocumentNumber)
	}
	return nil
}

// fetchLine reads the batch fresh and returns the line with the given document
// number as the raw response object.
func (t *testContext) fetchLine(documentNumber string) (map[string]any, error) {
	lineID, err := t.lineID(documentNumber)
	if err != nil {
		return nil, err
	}

	resp, err := http.Get(t.server.URL + "/api/v1/reconciliation/batches/" + t.batchID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Lines []map[string]any `json:"lines"`
	}
	if err := jsonDecode(resp.Body, &body); err != nil {
		return nil, err
	}
	for _, line := range body.Lines {
		if fmt.Sprint(line["id"]) == lineID {
			return line, nil
		}
	}
	return nil, fmt.Errorf("line %q not found in batch %s", documentNumber, t.batchID)
}

func (t *testContext) lineID(documentNumber string) (string, error) {
	id, ok := t.lineIDs[documentNumber]
	if !ok {
		return "", fmt.Errorf("no statement line captured as %q", documentNumber)
	}
	return id, nil
}
