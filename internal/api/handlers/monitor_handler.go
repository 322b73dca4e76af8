package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wardle-dev/lookout/internal/api/middleware"
	"github.com/wardle-dev/lookout/internal/services"
)

// Enqueuer accepts a manual check task. Satisfied by the scheduler.
type Enqueuer interface {
	Enqueue(monitorID string) bool
}

type MonitorHandler struct {
	monitors *services.MonitorService
	uptime   *services.UptimeService
	queue    Enqueuer
}

func NewMonitorHandler(monitors *services.MonitorService, uptime *services.UptimeService, queue Enqueuer) *MonitorHandler {
	return &MonitorHandler{monitors: monitors, uptime: uptime, queue: queue}
}

func (h *MonitorHandler) List(c *gin.Context) {
	monitors, err := h.monitors.List(middleware.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, monitors)
}

func (h *MonitorHandler) Create(c *gin.Context) {
	var in services.MonitorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	monitor, err := h.monitors.Create(middleware.CurrentUserID(c), in)
	if err != nil {
		var verrs services.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verrs})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, monitor)
}

func (h *MonitorHandler) Get(c *gin.Context) {
	monitor, err := h.monitors.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.renderMonitorError(c, err)
		return
	}
	c.JSON(http.StatusOK, monitor)
}

func (h *MonitorHandler) Update(c *gin.Context) {
	var in services.MonitorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	monitor, err := h.monitors.Update(middleware.CurrentUserID(c), c.Param("id"), in)
	if err != nil {
		var verrs services.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verrs})
			return
		}
		h.renderMonitorError(c, err)
		return
	}
	c.JSON(http.StatusOK, monitor)
}

func (h *MonitorHandler) Delete(c *gin.Context) {
	if err := h.monitors.Delete(middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.renderMonitorError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "monitor deleted"})
}

// CheckNow enqueues one immediate check, bypassing the due filter. The check
// runs asynchronously on the same path as scheduled checks.
func (h *MonitorHandler) CheckNow(c *gin.Context) {
	monitor, err := h.monitors.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.renderMonitorError(c, err)
		return
	}

	if !h.queue.Enqueue(monitor.ID) {
		c.JSON(http.StatusConflict, gin.H{"error": "a check for this monitor is already running"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "check enqueued"})
}

func (h *MonitorHandler) Uptime(c *gin.Context) {
	monitor, err := h.monitors.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.renderMonitorError(c, err)
		return
	}

	hours, err := strconv.Atoi(c.DefaultQuery("hours", "24"))
	if err != nil || hours < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be a positive integer"})
		return
	}

	uptime, err := h.uptime.CalculateUptime(monitor.ID, hours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// uptime is nil when there is no data in the window; the JSON null is
	// deliberate and distinct from 0.
	c.JSON(http.StatusOK, gin.H{"monitor_id": monitor.ID, "hours": hours, "uptime": uptime})
}

func (h *MonitorHandler) Checks(c *gin.Context) {
	monitor, err := h.monitors.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		h.renderMonitorError(c, err)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 50
	}

	checks, err := h.uptime.RecentChecks(monitor.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, checks)
}

func (h *MonitorHandler) renderMonitorError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "monitor not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
