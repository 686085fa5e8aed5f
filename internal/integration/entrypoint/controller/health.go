// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthController answers the liveness probe.
type HealthController struct {
	dbHealthChecker func() bool
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// NewHealthController creates a new health controller instance.
func NewHealthController(dbHealthChecker func() bool) *HealthController {
	return &HealthController{dbHealthChecker: dbHealthChecker}
}

// Check handles GET /health. The service is useless without its database, so
// a failed ping degrades the overall status instead of only the database
// field.
func (h *HealthController) Check(c *gin.Context) {
	status, dbStatus := "ok", "connected"
	if h.dbHealthChecker == nil || !h.dbHealthChecker() {
		status, dbStatus = "degraded", "disconnected"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Database:  dbStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
