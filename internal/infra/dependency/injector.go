// Package dependency provides dependency injection for the application.
package dependency

import (
	"time"

	"gorm.io/gorm"

	"github.com/sales-backoffice/backend/config"
	"github.com/sales-backoffice/backend/internal/application/usecase/reconciliation"
	"github.com/sales-backoffice/backend/internal/domain/valueobject"
	"github.com/sales-backoffice/backend/internal/infra/server/router"
	"github.com/sales-backoffice/backend/internal/integration/entrypoint/controller"
	"github.com/sales-backoffice/backend/internal/integration/entrypoint/middleware"
	"github.com/sales-backoffice/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config *config.Config
	DB     *gorm.DB
	Router *router.Router
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, db *gorm.DB) *Injector {
	// Create repositories
	reconciliationRepo := persistence.NewReconciliationRepository(db)
	billingRepo := persistence.NewBillingRepository(db)
	txManager := persistence.NewTransactionManager(db)

	reconcileConfig := valueobject.ReconcileConfig{
		NetTolerance:   cfg.Reconciliation.NetTolerance,
		FeeTolerance:   cfg.Reconciliation.FeeTolerance,
		CandidateLimit: cfg.Reconciliation.CandidateLimit,
	}

	// Create reconciliation use cases
	createBatchUseCase := reconciliation.NewCreateBatchUseCase(reconciliationRepo)
	listBatchesUseCase := reconciliation.NewListBatchesUseCase(reconciliationRepo)
	getBatchUseCase := reconciliation.NewGetBatchUseCase(reconciliationRepo)
	deleteBatchUseCase := reconciliation.NewDeleteBatchUseCase(reconciliationRepo)
	findCandidatesUseCase := reconciliation.NewFindCandidatesUseCase(reconciliationRepo, billingRepo, reconcileConfig)
	linkLineUseCase := reconciliation.NewLinkLineUseCase(txManager, reconcileConfig)
	unlinkLineUseCase := reconciliation.NewUnlinkLineUseCase(txManager)
	overrideLineUseCase := reconciliation.NewOverrideLineUseCase(txManager, reconcileConfig)
	setStateUseCase := reconciliation.NewSetBatchStateUseCase(txManager)

	// Create controllers
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	})

	reconciliationController := controller.NewReconciliationController(
		createBatchUseCase,
		listBatchesUseCase,
		getBatchUseCase,
		deleteBatchUseCase,
		findCandidatesUseCase,
		linkLineUseCase,
		unlinkLineUseCase,
		overrideLineUseCase,
		setStateUseCase,
	)

	// Create middleware
	// Use higher rate limits for test environments to prevent flaky tests
	var writeRateLimiter *middleware.RateLimiter
	if cfg.Server.Environment == "test" {
		writeRateLimiter = middleware.NewRateLimiterWithConfig(10000, 1*time.Minute)
	} else {
		writeRateLimiter = middleware.NewRateLimiter()
	}

	// Create router
	r := router.NewRouter(healthController, reconciliationController, writeRateLimiter)

	return &Injector{
		Config: cfg,
		DB:     db,
		Router: r,
	}
}
