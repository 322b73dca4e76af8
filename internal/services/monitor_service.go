package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gorm.io/gorm"

	"github.com/wardle-dev/lookout/internal/models"
)

// Monitor intervals are bounded to one minute through one day.
const (
	MinIntervalMinutes = 1
	MaxIntervalMinutes = 1440
)

// ErrNotFound is returned when a monitor does not exist or belongs to
// another user.
var ErrNotFound = errors.New("monitor not found")

// ValidationErrors maps field names to human-readable problems. Returned
// synchronously at creation/update time; invalid monitors never reach the
// scheduling core.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// MonitorInput carries the user-editable monitor fields.
type MonitorInput struct {
	Name            string `json:"name"`
	URL             string `json:"url"`
	IntervalMinutes int    `json:"interval_minutes"`
}

// ValidateMonitorInput checks the user-supplied fields: the URL must be
// http/https, non-localhost, and carry a TLD; the interval must be within
// bounds.
func ValidateMonitorInput(in MonitorInput) ValidationErrors {
	errs := ValidationErrors{}

	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "name is required"
	}

	if err := validateURL(in.URL); err != "" {
		errs["url"] = err
	}

	if in.IntervalMinutes < MinIntervalMinutes || in.IntervalMinutes > MaxIntervalMinutes {
		errs["interval_minutes"] = fmt.Sprintf("interval must be between %d and %d minutes", MinIntervalMinutes, MaxIntervalMinutes)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateURL(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "url is required"
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "url is not valid"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "url must use http or https"
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "url must include a host"
	}
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return "localhost urls cannot be monitored"
	}
	if !strings.Contains(host, ".") {
		return "url host must include a domain"
	}

	return ""
}

// MonitorService owns monitor CRUD. It never touches Status,
// LastCheckedAt, or LastStatusChangeAt; those belong to the orchestrator.
type MonitorService struct {
	db *gorm.DB
}

func NewMonitorService(db *gorm.DB) *MonitorService {
	return &MonitorService{db: db}
}

// Create persists a new monitor in the pending state.
func (s *MonitorService) Create(userID string, in MonitorInput) (*models.Monitor, error) {
	if errs := ValidateMonitorInput(in); errs != nil {
		return nil, errs
	}

	monitor := models.Monitor{
		UserID:          userID,
		Name:            strings.TrimSpace(in.Name),
		URL:             strings.TrimSpace(in.URL),
		IntervalMinutes: in.IntervalMinutes,
		Status:          models.StatusPending,
	}
	if err := s.db.Create(&monitor).Error; err != nil {
		return nil, err
	}
	return &monitor, nil
}

// List returns all monitors owned by a user.
func (s *MonitorService) List(userID string) ([]models.Monitor, error) {
	var monitors []models.Monitor
	err := s.db.Where("user_id = ?", userID).Order("name asc").Find(&monitors).Error
	return monitors, err
}

// Get loads one monitor, scoped to its owner.
func (s *MonitorService) Get(userID, id string) (*models.Monitor, error) {
	var monitor models.Monitor
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&monitor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &monitor, nil
}

// Update rewrites the user-editable fields of a monitor.
func (s *MonitorService) Update(userID, id string, in MonitorInput) (*models.Monitor, error) {
	monitor, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if errs := ValidateMonitorInput(in); errs != nil {
		return nil, errs
	}

	err = s.db.Model(monitor).Updates(map[string]interface{}{
		"name":             strings.TrimSpace(in.Name),
		"url":              strings.TrimSpace(in.URL),
		"interval_minutes": in.IntervalMinutes,
	}).Error
	if err != nil {
		return nil, err
	}
	return monitor, nil
}

// Delete removes a monitor and all of its checks.
func (s *MonitorService) Delete(userID, id string) error {
	monitor, err := s.Get(userID, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("monitor_id = ?", monitor.ID).Delete(&models.Check{}).Error; err != nil {
			return err
		}
		return tx.Delete(monitor).Error
	})
}
