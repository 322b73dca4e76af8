// Package status decides the next state of a monitor from one check outcome.
// It is a pure transition table with no I/O so every branch is testable.
package status

import "github.com/wardle-dev/lookout/internal/models"

// Evaluate maps (current monitor status, check outcome) to the next status
// and whether a notifiable transition occurred.
//
// A successful check always resolves to up, a failed one to down. The
// transition flag is only raised when the monitor was already in a resolved
// state and that state changed: the very first check of a monitor's life
// (current == pending) never counts as a transition, whatever its outcome.
func Evaluate(current models.MonitorStatus, outcome models.CheckStatus) (models.MonitorStatus, bool) {
	next := models.StatusDown
	if outcome == models.CheckSuccess {
		next = models.StatusUp
	}

	transitioned := current != models.StatusPending && current != next

	return next, transitioned
}
