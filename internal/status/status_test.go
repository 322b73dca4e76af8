package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wardle-dev/lookout/internal/models"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name        string
		current     models.MonitorStatus
		outcome     models.CheckStatus
		wantNext    models.MonitorStatus
		wantChanged bool
	}{
		{"first check success", models.StatusPending, models.CheckSuccess, models.StatusUp, false},
		{"first check failure", models.StatusPending, models.CheckFailed, models.StatusDown, false},
		{"up stays up", models.StatusUp, models.CheckSuccess, models.StatusUp, false},
		{"up goes down", models.StatusUp, models.CheckFailed, models.StatusDown, true},
		{"down recovers", models.StatusDown, models.CheckSuccess, models.StatusUp, true},
		{"down stays down", models.StatusDown, models.CheckFailed, models.StatusDown, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, changed := Evaluate(tc.current, tc.outcome)
			assert.Equal(t, tc.wantNext, next)
			assert.Equal(t, tc.wantChanged, changed)
		})
	}
}

func TestEvaluate_PendingNeverTransitions(t *testing.T) {
	// A monitor that fails its first check and keeps failing never raises a
	// transition until it first comes up.
	next, changed := Evaluate(models.StatusPending, models.CheckFailed)
	assert.Equal(t, models.StatusDown, next)
	assert.False(t, changed)

	next, changed = Evaluate(next, models.CheckFailed)
	assert.Equal(t, models.StatusDown, next)
	assert.False(t, changed)

	next, changed = Evaluate(next, models.CheckSuccess)
	assert.Equal(t, models.StatusUp, next)
	assert.True(t, changed)
}
