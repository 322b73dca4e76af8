package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wardle-dev/lookout/internal/api/middleware"
	"github.com/wardle-dev/lookout/internal/models"
	"github.com/wardle-dev/lookout/internal/services"
)

type fakeEnqueuer struct {
	accept bool
	ids    []string
}

func (f *fakeEnqueuer) Enqueue(monitorID string) bool {
	f.ids = append(f.ids, monitorID)
	return f.accept
}

type monitorHandlerFixture struct {
	router *gin.Engine
	db     *gorm.DB
	queue  *fakeEnqueuer
	userID string
}

func newMonitorHandlerFixture(t *testing.T) *monitorHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Monitor{}, &models.Check{}))

	queue := &fakeEnqueuer{accept: true}
	h := NewMonitorHandler(services.NewMonitorService(db), services.NewUptimeService(db), queue)

	userID := uuid.New().String()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	})
	r.GET("/api/monitors", h.List)
	r.POST("/api/monitors", h.Create)
	r.GET("/api/monitors/:id", h.Get)
	r.PUT("/api/monitors/:id", h.Update)
	r.DELETE("/api/monitors/:id", h.Delete)
	r.POST("/api/monitors/:id/check", h.CheckNow)
	r.GET("/api/monitors/:id/uptime", h.Uptime)
	r.GET("/api/monitors/:id/checks", h.Checks)

	return &monitorHandlerFixture{router: r, db: db, queue: queue, userID: userID}
}

func (f *monitorHandlerFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *monitorHandlerFixture) seedMonitor(t *testing.T, name string) *models.Monitor {
	t.Helper()
	m := &models.Monitor{
		UserID:          f.userID,
		Name:            name,
		URL:             "https://example.com",
		IntervalMinutes: 5,
	}
	require.NoError(t, f.db.Create(m).Error)
	return m
}

func TestMonitorHandler_CreateAndList(t *testing.T) {
	f := newMonitorHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/api/monitors", gin.H{
		"name":             "Main site",
		"url":              "https://example.com/health",
		"interval_minutes": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Monitor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.StatusPending, created.Status)
	assert.NotEmpty(t, created.ID)

	w = f.do(t, http.MethodGet, "/api/monitors", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []models.Monitor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestMonitorHandler_CreateValidationErrors(t *testing.T) {
	f := newMonitorHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/api/monitors", gin.H{
		"name":             "",
		"url":              "ftp://example.com",
		"interval_minutes": 0,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "name")
	assert.Contains(t, resp.Errors, "url")
	assert.Contains(t, resp.Errors, "interval_minutes")
}

func TestMonitorHandler_GetScopedToOwner(t *testing.T) {
	f := newMonitorHandlerFixture(t)

	other := &models.Monitor{
		UserID:          uuid.New().String(),
		Name:            "Someone else's",
		URL:             "https://example.org",
		IntervalMinutes: 5,
	}
	require.NoError(t, f.db.Create(other).Error)

	w := f.do(t, http.MethodGet, "/api/monitors/"+other.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMonitorHandler_UpdateAndDelete(t *testing.T) {
	f := newMonitorHandlerFixture(t)
	m := f.seedMonitor(t, "Before")

	w := f.do(t, http.MethodPut, "/api/monitors/"+m.ID, gin.H{
		"name":             "After",
		"url":              "https://example.com/status",
		"interval_minutes": 10,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Monitor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, 10, updated.IntervalMinutes)

	w = f.do(t, http.MethodDelete, "/api/monitors/"+m.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/monitors/"+m.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMonitorHandler_CheckNow(t *testing.T) {
	f := newMonitorHandlerFixture(t)
	m := f.seedMonitor(t, "Checked on demand")

	w := f.do(t, http.MethodPost, "/api/monitors/"+m.ID+"/check", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, f.queue.ids, 1)
	assert.Equal(t, m.ID, f.queue.ids[0])
}

func TestMonitorHandler_CheckNowAlreadyRunning(t *testing.T) {
	f := newMonitorHandlerFixture(t)
	f.queue.accept = false
	m := f.seedMonitor(t, "Busy")

	w := f.do(t, http.MethodPost, "/api/monitors/"+m.ID+"/check", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMonitorHandler_UptimeNoData(t *testing.T) {
	f := newMonitorHandlerFixture(t)
	m := f.seedMonitor(t, "Fresh")

	w := f.do(t, http.MethodGet, "/api/monitors/"+m.ID+"/uptime", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Hours  int      `json:"hours"`
		Uptime *float64 `json:"uptime"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 24, resp.Hours)
	assert.Nil(t, resp.Uptime)
}

func TestMonitorHandler_UptimeWithChecks(t *testing.T) {
	f := newMonitorHandlerFixture(t)
	m := f.seedMonitor(t, "Mostly up")

	now := time.Now()
	for i, status := range []models.CheckStatus{
		models.CheckSuccess, models.CheckSuccess, models.CheckSuccess, models.CheckFailed,
	} {
		check := models.Check{
			MonitorID: m.ID,
			Status:    status,
			CheckedAt: now.Add(-time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.db.Create(&check).Error)
	}

	w := f.do(t, http.MethodGet, "/api/monitors/"+m.ID+"/uptime?hours=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Uptime *float64 `json:"uptime"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Uptime)
	assert.InDelta(t, 75.0, *resp.Uptime, 0.001)
}

func TestMonitorHandler_UptimeRejectsBadHours(t *testing.T) {
	f := newMonitorHandlerFixture(t)
	m := f.seedMonitor(t, "Strict")

	w := f.do(t, http.MethodGet, "/api/monitors/"+m.ID+"/uptime?hours=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMonitorHandler_ChecksHistory(t *testing.T) {
	f := newMonitorHandlerFixture(t)
	m := f.seedMonitor(t, "History")

	now := time.Now()
	for i := 0; i < 3; i++ {
		check := models.Check{
			MonitorID: m.ID,
			Status:    models.CheckSuccess,
			CheckedAt: now.Add(-time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.db.Create(&check).Error)
	}

	w := f.do(t, http.MethodGet, "/api/monitors/"+m.ID+"/checks?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var checks []models.Check
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checks))
	require.Len(t, checks, 2)
	assert.True(t, checks[0].CheckedAt.After(checks[1].CheckedAt))
}
