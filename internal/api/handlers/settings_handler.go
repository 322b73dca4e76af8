package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wardle-dev/lookout/internal/api/middleware"
	"github.com/wardle-dev/lookout/internal/config"
	"github.com/wardle-dev/lookout/internal/models"
	"github.com/wardle-dev/lookout/internal/notify"
)

// SettingsHandler manages per-user notification settings with upsert
// semantics. Secrets are never echoed back; responses carry masked previews
// and the resolved credential source instead.
type SettingsHandler struct {
	db  *gorm.DB
	cfg config.Config
}

func NewSettingsHandler(db *gorm.DB, cfg config.Config) *SettingsHandler {
	return &SettingsHandler{db: db, cfg: cfg}
}

type settingsRequest struct {
	EmailEnabled     bool   `json:"email_enabled"`
	EmailAddress     string `json:"email_address"`
	PushoverEnabled  bool   `json:"pushover_enabled"`
	PushoverUserKey  string `json:"pushover_user_key"`
	PushoverAPIToken string `json:"pushover_api_token"`
}

func (h *SettingsHandler) Get(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var settings models.NotificationSettings
	err := h.db.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.NotificationSettings{UserID: userID}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.render(settings))
}

func (h *SettingsHandler) Update(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var settings models.NotificationSettings
	err := h.db.Where("user_id = ?", userID).First(&settings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	settings.UserID = userID
	settings.EmailEnabled = req.EmailEnabled
	settings.EmailAddress = req.EmailAddress
	settings.PushoverEnabled = req.PushoverEnabled
	settings.PushoverUserKey = req.PushoverUserKey
	settings.PushoverAPIToken = req.PushoverAPIToken

	if err := h.db.Save(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.render(settings))
}

func (h *SettingsHandler) render(settings models.NotificationSettings) gin.H {
	resolver := notify.NewCredentialResolver(settings, h.cfg.Pushover.UserKey, h.cfg.Pushover.APIToken)
	key := resolver.EffectiveUserKey()
	token := resolver.EffectiveAPIToken()

	return gin.H{
		"email_enabled":             settings.EmailEnabled,
		"email_address":             settings.EmailAddress,
		"email_effective":           resolver.EmailEnabled(),
		"pushover_enabled":          settings.PushoverEnabled,
		"pushover_effective":        resolver.PushoverEnabled(),
		"pushover_user_key_preview": notify.Mask(key.Value),
		"pushover_user_key_source":  key.Source,
		"pushover_token_preview":    notify.Mask(token.Value),
		"pushover_token_source":     token.Source,
	}
}
