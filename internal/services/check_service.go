package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/wardle-dev/lookout/internal/checker"
	"github.com/wardle-dev/lookout/internal/logger"
	"github.com/wardle-dev/lookout/internal/metrics"
	"github.com/wardle-dev/lookout/internal/models"
	"github.com/wardle-dev/lookout/internal/notify"
	"github.com/wardle-dev/lookout/internal/status"
)

// Executor performs one classified probe. Satisfied by checker.HTTPChecker.
type Executor interface {
	Execute(ctx context.Context, url string) checker.Outcome
}

// Dispatcher fans a transition out to notification channels. It absorbs
// channel failures; the orchestrator never sees them as errors.
type Dispatcher interface {
	Dispatch(ctx context.Context, event notify.Event) []notify.Result
}

// CheckService is the orchestrator: the atomic unit of work per monitor
// check. Both scheduler-driven tasks and manual check-now requests run
// through RunCheck so behavior stays identical.
type CheckService struct {
	db         *gorm.DB
	executor   Executor
	dispatcher Dispatcher
	log        *logrus.Entry
}

func NewCheckService(db *gorm.DB, executor Executor, dispatcher Dispatcher) *CheckService {
	return &CheckService{
		db:         db,
		executor:   executor,
		dispatcher: dispatcher,
		log:        logger.WithComponent("orchestrator"),
	}
}

// RunCheck probes one monitor, persists the result, applies the status
// transition, and dispatches notifications on a real transition. Only
// persistence failures propagate; the queueing layer treats those as a
// failed, retryable task.
func (s *CheckService) RunCheck(ctx context.Context, monitorID string) (*models.Check, error) {
	var monitor models.Monitor
	if err := s.db.WithContext(ctx).First(&monitor, "id = ?", monitorID).Error; err != nil {
		return nil, fmt.Errorf("load monitor %s: %w", monitorID, err)
	}

	// Capture the comparison basis before probing so a slow probe (up to the
	// full 30s timeout) cannot skew it.
	checkedAt := time.Now().UTC()
	oldStatus := monitor.Status

	probeStart := time.Now()
	outcome := s.executor.Execute(ctx, monitor.URL)
	metrics.ObserveCheckDuration(time.Since(probeStart).Seconds())
	metrics.IncCheck(string(outcome.Status))

	check := models.Check{
		MonitorID:      monitor.ID,
		Status:         outcome.Status,
		StatusCode:     outcome.StatusCode,
		ResponseTimeMs: outcome.ResponseTimeMs,
		ErrorMessage:   outcome.ErrorMessage,
		CheckedAt:      checkedAt,
	}
	if err := s.db.WithContext(ctx).Create(&check).Error; err != nil {
		return nil, fmt.Errorf("persist check for monitor %s: %w", monitor.ID, err)
	}

	newStatus, transitioned := status.Evaluate(oldStatus, outcome.Status)

	updates := map[string]interface{}{
		"status":          newStatus,
		"last_checked_at": checkedAt,
	}
	if transitioned {
		updates["last_status_change_at"] = checkedAt
	}

	// Guard the write with the captured status so the monitor row is never
	// mutated concurrently with itself; the scheduler's in-flight set makes
	// a conflict unlikely, this makes it harmless.
	res := s.db.WithContext(ctx).Model(&models.Monitor{}).
		Where("id = ? AND status = ?", monitor.ID, oldStatus).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("persist monitor %s: %w", monitor.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// The monitor was deleted or mutated since we loaded it; the check
		// record stands, but the transition basis is gone.
		s.log.WithField("monitor_id", monitor.ID).
			Warn("monitor changed during check, skipping status update")
		return &check, nil
	}

	if transitioned {
		s.log.WithFields(logrus.Fields{
			"monitor_id": monitor.ID,
			"old_status": oldStatus,
			"new_status": newStatus,
		}).Info("monitor status changed")
		s.dispatcher.Dispatch(ctx, notify.Event{
			Monitor:   monitor,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			At:        checkedAt,
		})
	}

	return &check, nil
}
