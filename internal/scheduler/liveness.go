package scheduler

import (
	"context"
	"sync"
	"time"
)

// HeartbeatTTL is how stale the scheduler heartbeat may be before an
// external health check should consider the scan loop dead.
const HeartbeatTTL = 90 * time.Second

// LivenessSignal is the heartbeat collaborator written on every scheduler
// run. It is injected rather than kept as ambient global state so health
// checks and tests can observe it directly.
type LivenessSignal interface {
	Record(ctx context.Context, at time.Time) error
	Fresh(ctx context.Context, ttl time.Duration) (bool, error)
}

// MemorySignal keeps the heartbeat in process memory. Used when no Redis
// address is configured, and in tests.
type MemorySignal struct {
	mu   sync.Mutex
	last time.Time
}

func NewMemorySignal() *MemorySignal {
	return &MemorySignal{}
}

func (m *MemorySignal) Record(_ context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = at
	return nil
}

func (m *MemorySignal) Fresh(_ context.Context, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last.IsZero() {
		return false, nil
	}
	return time.Since(m.last) <= ttl, nil
}
