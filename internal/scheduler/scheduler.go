// Package scheduler decides which monitors are due, feeds them to a bounded
// pool of check workers, and records a liveness heartbeat so operators can
// detect a stalled scan loop.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/wardle-dev/lookout/internal/logger"
	"github.com/wardle-dev/lookout/internal/metrics"
	"github.com/wardle-dev/lookout/internal/models"
)

// Runner executes one check for one monitor. The check orchestrator
// implements it.
type Runner interface {
	RunCheck(ctx context.Context, monitorID string) (*models.Check, error)
}

// Options tunes the worker pool.
type Options struct {
	Workers   int
	QueueSize int
}

// Scheduler scans monitors for dueness and hands check tasks to workers. A
// monitor that is already queued or executing is not enqueued again; that is
// a safety valve against queue buildup, not an exclusion lock.
type Scheduler struct {
	db       *gorm.DB
	runner   Runner
	liveness LivenessSignal
	log      *logrus.Entry

	queue chan string

	mu       sync.Mutex
	inflight map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a scheduler and launches its workers.
func New(db *gorm.DB, runner Runner, liveness LivenessSignal, opts Options) *Scheduler {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 256
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		db:       db,
		runner:   runner,
		liveness: liveness,
		log:      logger.WithComponent("scheduler"),
		queue:    make(chan string, opts.QueueSize),
		inflight: make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}

	s.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go s.worker()
	}

	return s
}

// Stop cancels the workers and waits for in-flight checks to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// EnqueueDue scans all monitors, enqueues one task per due monitor, records
// the liveness heartbeat, and returns the number enqueued. It never blocks
// on a full queue.
func (s *Scheduler) EnqueueDue(ctx context.Context) (int, error) {
	now := time.Now()
	if err := s.liveness.Record(ctx, now); err != nil {
		s.log.WithError(err).Warn("failed to record scheduler heartbeat")
	}

	var monitors []models.Monitor
	if err := s.db.WithContext(ctx).Find(&monitors).Error; err != nil {
		return 0, err
	}

	enqueued := 0
	for _, m := range monitors {
		if !Due(m, now) {
			continue
		}
		if s.Enqueue(m.ID) {
			enqueued++
		}
	}

	s.log.WithFields(logrus.Fields{"scanned": len(monitors), "enqueued": enqueued}).
		Debug("scheduler scan complete")
	return enqueued, nil
}

// Enqueue submits one check task, bypassing the due filter (manual
// check-now). Returns false when the monitor already has a task queued or
// executing, or when the queue is full.
func (s *Scheduler) Enqueue(monitorID string) bool {
	s.mu.Lock()
	if _, busy := s.inflight[monitorID]; busy {
		s.mu.Unlock()
		return false
	}
	s.inflight[monitorID] = struct{}{}
	s.mu.Unlock()

	select {
	case s.queue <- monitorID:
		metrics.IncScheduled()
		return true
	default:
		s.release(monitorID)
		s.log.WithField("monitor_id", monitorID).Warn("check queue full, task dropped")
		return false
	}
}

// Due reports whether a monitor should be checked at now: never checked, or
// its interval has elapsed since the last check. Evaluated in-process so the
// predicate does not depend on storage-engine interval arithmetic.
func Due(m models.Monitor, now time.Time) bool {
	if m.LastCheckedAt == nil {
		return true
	}
	return now.Sub(*m.LastCheckedAt) >= time.Duration(m.IntervalMinutes)*time.Minute
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case monitorID := <-s.queue:
			s.run(monitorID)
		}
	}
}

func (s *Scheduler) run(monitorID string) {
	defer s.release(monitorID)

	if _, err := s.runner.RunCheck(s.ctx, monitorID); err != nil {
		s.log.WithError(err).WithField("monitor_id", monitorID).Error("check task failed")
	}
}

func (s *Scheduler) release(monitorID string) {
	s.mu.Lock()
	delete(s.inflight, monitorID)
	s.mu.Unlock()
}
