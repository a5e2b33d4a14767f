package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/cmis/studentportal/internal/pkg/filestorage"
	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports liveness and dependency status
type HealthController struct {
	db       Pinger
	storage  filestorage.ObjectStorage
	sessions string
}

// NewHealthController creates a new HealthController. sessions names the session backend.
func NewHealthController(db Pinger, storage filestorage.ObjectStorage, sessions string) *HealthController {
	return &HealthController{db: db, storage: storage, sessions: sessions}
}

// Ping handles GET /ping
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (c *HealthController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health handles GET /api/health
// @Summary Dependency health
// @Description Reports database reachability and storage presign fallback count
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthCheckTimeout)
	defer cancel()

	stats := c.storage.Stats()
	resp := dto.HealthResponse{
		Status:   "ok",
		Database: "up",
		Sessions: c.sessions,
		Storage: dto.StorageHealth{
			Configured:       stats.Configured,
			PresignFallbacks: stats.PresignFallbacks,
		},
	}

	status := http.StatusOK
	if err := c.db.Ping(checkCtx); err != nil {
		resp.Status = "degraded"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, resp)
}
