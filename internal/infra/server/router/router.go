// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/sales-backoffice/backend/internal/integration/entrypoint/controller"
	"github.com/sales-backoffice/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                   *gin.Engine
	healthController         *controller.HealthController
	reconciliationController *controller.ReconciliationController
	writeRateLimiter         *middleware.RateLimiter
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	reconciliationController *controller.ReconciliationController,
	writeRateLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		healthController:         healthController,
		reconciliationController: reconciliationController,
		writeRateLimiter:         writeRateLimiter,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes. Mutating endpoints run
// behind the write rate limiter; reads are unthrottled.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")

	if r.reconciliationController == nil {
		return
	}

	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if r.writeRateLimiter != nil {
		limit = r.writeRateLimiter.Middleware()
	}

	rec := v1.Group("/reconciliation")
	{
		batches := rec.Group("/batches")
		{
			batches.POST("", limit, r.reconciliationController.CreateBatch)
			batches.GET("", r.reconciliationController.ListBatches)
			batches.GET("/:id", r.reconciliationController.GetBatch)
			batches.DELETE("/:id", limit, r.reconciliationController.DeleteBatch)
			batches.POST("/:id/state", limit, r.reconciliationController.SetBatchState)
		}

		lines := rec.Group("/lines")
		{
			lines.GET("/:id/candidates", r.reconciliationController.FindCandidates)
			lines.POST("/:id/link", limit, r.reconciliationController.LinkLine)
			lines.POST("/:id/unlink", limit, r.reconciliationController.UnlinkLine)
			lines.PATCH("/:id", limit, r.reconciliationController.OverrideLine)
		}
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
