// Package notify fans status transitions out to the owner's enabled
// delivery channels. Channel failures are isolated: one channel erroring
// never prevents the others from being attempted, and nothing in this
// package propagates an error back to the check orchestrator.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/wardle-dev/lookout/internal/config"
	"github.com/wardle-dev/lookout/internal/logger"
	"github.com/wardle-dev/lookout/internal/metrics"
	"github.com/wardle-dev/lookout/internal/models"
)

// Event describes one status transition. Callers guarantee OldStatus !=
// NewStatus and OldStatus != pending.
type Event struct {
	Monitor   models.Monitor
	OldStatus models.MonitorStatus
	NewStatus models.MonitorStatus
	At        time.Time
}

// Channel is one delivery mechanism. Notify either delivers the event or
// returns an error describing why it could not; it must not panic.
type Channel interface {
	Name() string
	Notify(ctx context.Context, event Event) error
}

// Result records one channel attempt for diagnostics and tests.
type Result struct {
	Channel string
	Err     error
}

// Dispatcher resolves the monitor owner's settings into a list of
// effectively-enabled channels and attempts each of them.
type Dispatcher struct {
	db     *gorm.DB
	mailer Mailer
	cfg    config.Config
	log    *logrus.Entry
}

// NewDispatcher wires the dispatcher with its outbound collaborators.
func NewDispatcher(db *gorm.DB, mailer Mailer, cfg config.Config) *Dispatcher {
	return &Dispatcher{
		db:     db,
		mailer: mailer,
		cfg:    cfg,
		log:    logger.WithComponent("notify"),
	}
}

// Dispatch notifies all effectively-enabled channels for the monitor's
// owner. It never returns an error; per-channel failures are logged and
// reported in the result slice.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) []Result {
	resolver, err := d.resolverFor(event.Monitor.UserID)
	if err != nil {
		d.log.WithError(err).WithField("monitor_id", event.Monitor.ID).
			Warn("no notification settings, skipping dispatch")
		return nil
	}

	channels := d.channelsFor(resolver)
	results := make([]Result, 0, len(channels))

	for _, ch := range channels {
		res := Result{Channel: ch.Name(), Err: d.attempt(ctx, ch, event)}
		results = append(results, res)

		entry := d.log.WithFields(logrus.Fields{
			"channel":    res.Channel,
			"monitor_id": event.Monitor.ID,
			"old_status": event.OldStatus,
			"new_status": event.NewStatus,
		})
		if res.Err != nil {
			metrics.IncNotification(res.Channel, "error")
			entry.WithError(res.Err).Error("notification delivery failed")
		} else {
			metrics.IncNotification(res.Channel, "ok")
			entry.Info("notification delivered")
		}
	}

	return results
}

// attempt shields the dispatcher from a misbehaving channel implementation.
func (d *Dispatcher) attempt(ctx context.Context, ch Channel, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panic: %v", r)
		}
	}()
	return ch.Notify(ctx, event)
}

func (d *Dispatcher) resolverFor(userID string) (*CredentialResolver, error) {
	var settings models.NotificationSettings
	if err := d.db.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, err
	}
	return NewCredentialResolver(settings, d.cfg.Pushover.UserKey, d.cfg.Pushover.APIToken), nil
}

func (d *Dispatcher) channelsFor(resolver *CredentialResolver) []Channel {
	var channels []Channel
	if resolver.EmailEnabled() {
		channels = append(channels, NewEmailChannel(d.mailer, resolver.EmailAddress()))
	}
	if resolver.PushoverEnabled() {
		channels = append(channels, NewPushoverChannel(
			resolver.EffectiveAPIToken(),
			resolver.EffectiveUserKey(),
			d.cfg.Pushover.Endpoint,
			d.cfg.BaseURL,
		))
	}
	return channels
}
