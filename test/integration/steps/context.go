// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"

	"github.com/sales-backoffice/backend/internal/application/usecase/reconciliation"
	"github.com/sales-backoffice/backend/internal/domain/valueobject"
	"github.com/sales-backoffice/backend/internal/infra/server/router"
	"github.com/sales-backoffice/backend/internal/integration/entrypoint/controller"
	"github.com/sales-backoffice/backend/internal/integration/persistence"
	"github.com/sales-backoffice/backend/internal/integration/persistence/model"
	"github.com/sales-backoffice/backend/test/integration/mock"
)

// testContext holds the state of one scenario: the server under test, the
// in-memory database behind it, and the last response plus remembered ids.
type testContext struct {
	db     *mock.Db
	server *httptest.Server
	client *http.Client

	status int
	body   map[string]any

	// Ids remembered across steps, keyed by document number.
	batchID   string
	lineIDs   map[string]string
	recordIDs map[string]string
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	test := &testContext{
		client: &http.Client{},
		db: mock.NewDb("sales_backoffice", map[string]any{
			"clients":                &model.ClientModel{},
			"billing_records":        &model.BillingRecordModel{},
			"billing_installments":   &model.InstallmentModel{},
			"reconciliation_batches": &model.ReconciliationBatchModel{},
			"reconciliation_lines":   &model.ReconciliationLineModel{},
		}),
	}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		if err := test.db.ClearDB(); err != nil {
			return ctx, err
		}
		test.startServer()
		test.status = 0
		test.body = nil
		test.batchID = ""
		test.lineIDs = make(map[string]string)
		test.recordIDs = make(map[string]string)
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if test.server != nil {
			test.server.Close()
		}
		return ctx, nil
	})

	test.registerSteps(ctx)
}

// startServer wires the full stack on the scenario's database and exposes it
// over an httptest server.
func (t *testContext) startServer() {
	db := t.db.DbConn
	cfg := valueobject.DefaultReconcileConfig()

	reconciliationRepo := persistence.NewReconciliationRepository(db)
	billingRepo := persistence.NewBillingRepository(db)
	txManager := persistence.NewTransactionManager(db)

	reconciliationController := controller.NewReconciliationController(
		reconciliation.NewCreateBatchUseCase(reconciliationRepo),
		reconciliation.NewListBatchesUseCase(reconciliationRepo),
		reconciliation.NewGetBatchUseCase(reconciliationRepo),
		reconciliation.NewDeleteBatchUseCase(reconciliationRepo),
		reconciliation.NewFindCandidatesUseCase(reconciliationRepo, billingRepo, cfg),
		reconciliation.NewLinkLineUseCase(txManager, cfg),
		reconciliation.NewUnlinkLineUseCase(txManager),
		reconciliation.NewOverrideLineUseCase(txManager, cfg),
		reconciliation.NewSetBatchStateUseCase(txManager),
	)
	healthController := controller.NewHealthController(func() bool { return true })

	r := router.NewRouter(healthController, reconciliationController, nil)
	t.server = httptest.NewServer(r.Setup("test"))
}

// request sends an HTTP request against the server under test and decodes the
// JSON response, if any, into t.body.
func (t *testContext) request(method, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, t.server.URL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.status = resp.StatusCode
	t.body = nil
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &t.body); err != nil {
			return fmt.Errorf("response is not a JSON object: %w", err)
		}
	}
	return nil
}

// field resolves a dotted path like "batch.state" in the last response body.
func (t *testContext) field(path string) (any, error) {
	var current any = t.body
	for _, part := range splitPath(path) {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", path, part)
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not present in response", path)
		}
	}
	return current, nil
}

func jsonDecode(r io.Reader, target any) error {
	return json.NewDecoder(r).Decode(target)
}

func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	return append(parts, path[start:])
}
