package sync

import (
	"time"

	"github.com/kerkhofftech/autotask-sync/internal/models"
	"github.com/kerkhofftech/autotask-sync/internal/rest"
)

// CompletedWindow excludes records in the terminal complete status unless
// they completed within the trailing window. Long-closed tickets and tasks
// stop churning through every run but recent closures still land locally.
func CompletedWindow(statusField, completedField string, window time.Duration) Condition {
	return func(now time.Time) rest.Filter {
		cutoff := now.Add(-window).Format(time.RFC3339)
		return rest.Or(
			rest.NotEq(statusField, models.CompleteStatusID),
			rest.Gte(completedField, cutoff),
		)
	}
}
