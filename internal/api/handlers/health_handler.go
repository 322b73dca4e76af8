package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wardle-dev/lookout/internal/scheduler"
	"github.com/wardle-dev/lookout/internal/version"
)

// HealthHandler reports process health: database reachability and scheduler
// heartbeat freshness.
type HealthHandler struct {
	db       *gorm.DB
	liveness scheduler.LivenessSignal
}

func NewHealthHandler(db *gorm.DB, liveness scheduler.LivenessSignal) *HealthHandler {
	return &HealthHandler{db: db, liveness: liveness}
}

func (h *HealthHandler) Health(c *gin.Context) {
	healthy := true

	sqlDB, err := h.db.DB()
	dbOK := err == nil && sqlDB.Ping() == nil
	if !dbOK {
		healthy = false
	}

	schedulerFresh, err := h.liveness.Fresh(c.Request.Context(), scheduler.HeartbeatTTL)
	if err != nil || !schedulerFresh {
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"healthy":   healthy,
		"database":  dbOK,
		"scheduler": schedulerFresh,
		"version":   version.Full(),
	})
}
