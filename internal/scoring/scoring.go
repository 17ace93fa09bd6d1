// Package scoring decides whether completing a task earns the on-time bonus.
package scoring

import (
	"time"

	"github.com/Raisondetr3/tasktango/internal/model"
)

const (
	OnTimeTolerance   = 15 * time.Minute
	OnTimeBonusPoints = 1
)

// IsOnTime reports whether now is on the same calendar day as due and no
// later than due plus tolerance. Early completion on the same day counts.
// The calendar day is taken in due's location.
func IsOnTime(now, due time.Time, tolerance time.Duration) bool {
	now = now.In(due.Location())

	ny, nm, nd := now.Date()
	dy, dm, dd := due.Date()
	if ny != dy || nm != dm || nd != dd {
		return false
	}

	return !now.After(due.Add(tolerance))
}

// Award returns the bonus earned by completing task at now. Tasks without a
// due date, or that already hold points, never earn anything.
func Award(now time.Time, task model.Task) (int, bool) {
	if !task.HasDueDate() || task.Points > 0 {
		return 0, false
	}
	if !IsOnTime(now, *task.DueDate, OnTimeTolerance) {
		return 0, false
	}
	return OnTimeBonusPoints, true
}
