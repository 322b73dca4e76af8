package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wardle-dev/lookout/internal/models"
	"github.com/wardle-dev/lookout/internal/services"
)

func newAuthFixture(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	h := NewAuthHandler(services.NewAuthService(db, "test-secret"))
	r := gin.New()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	r := newAuthFixture(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"email":    "owner@example.com",
		"password": "hunter2hunter2",
		"name":     "Owner",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2hunter2")

	w = postJSON(t, r, "/api/auth/login", gin.H{
		"email":    "owner@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestAuthHandler_RegisterDuplicateEmail(t *testing.T) {
	r := newAuthFixture(t)

	body := gin.H{"email": "dup@example.com", "password": "hunter2hunter2", "name": "First"}
	w := postJSON(t, r, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/api/auth/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_RegisterRejectsShortPassword(t *testing.T) {
	r := newAuthFixture(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"email":    "short@example.com",
		"password": "short",
		"name":     "Short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	r := newAuthFixture(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"email":    "owner@example.com",
		"password": "hunter2hunter2",
		"name":     "Owner",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/api/auth/login", gin.H{
		"email":    "owner@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
