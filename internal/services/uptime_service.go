package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/wardle-dev/lookout/internal/logger"
	"github.com/wardle-dev/lookout/internal/models"
)

// UptimeService aggregates stored checks into uptime percentages and prunes
// old check records.
type UptimeService struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewUptimeService(db *gorm.DB) *UptimeService {
	return &UptimeService{db: db, log: logger.WithComponent("uptime")}
}

// CalculateUptime returns successful/total*100 over the trailing window, or
// nil when the monitor has no checks in the window. "No data" is distinct
// from 0% uptime; callers must not conflate them. Checks exactly at the
// window boundary are included.
func (s *UptimeService) CalculateUptime(monitorID string, hours int) (*float64, error) {
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	var total, successes int64
	if err := s.db.Model(&models.Check{}).
		Where("monitor_id = ? AND checked_at >= ?", monitorID, since).
		Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	if err := s.db.Model(&models.Check{}).
		Where("monitor_id = ? AND checked_at >= ? AND status = ?", monitorID, since, models.CheckSuccess).
		Count(&successes).Error; err != nil {
		return nil, err
	}

	uptime := float64(successes) / float64(total) * 100
	return &uptime, nil
}

// RecentChecks returns the newest checks for a monitor, most recent first.
func (s *UptimeService) RecentChecks(monitorID string, limit int) ([]models.Check, error) {
	var checks []models.Check
	err := s.db.Where("monitor_id = ?", monitorID).
		Order("checked_at desc").Limit(limit).Find(&checks).Error
	return checks, err
}

// PruneChecks deletes checks older than retentionDays. Zero means unlimited
// retention. With dryRun it only reports how many rows would go.
func (s *UptimeService) PruneChecks(retentionDays int, dryRun bool) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	if dryRun {
		var count int64
		err := s.db.Model(&models.Check{}).Where("checked_at < ?", cutoff).Count(&count).Error
		return count, err
	}

	res := s.db.Where("checked_at < ?", cutoff).Delete(&models.Check{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		s.log.WithFields(logrus.Fields{"deleted": res.RowsAffected, "retention_days": retentionDays}).
			Info("pruned old checks")
	}
	return res.RowsAffected, nil
}
