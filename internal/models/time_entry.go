package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntry mirrors a remote time entry. An entry references either a
// ticket or a task, never both.
type TimeEntry struct {
	ID            int64           `json:"id" db:"id"`
	SummaryNotes  string          `json:"summaryNotes" db:"summary_notes"`
	HoursWorked   decimal.Decimal `json:"hoursWorked" db:"hours_worked"`
	HoursToBill   decimal.Decimal `json:"hoursToBill" db:"hours_to_bill"`
	DateWorked    *time.Time      `json:"dateWorked,omitempty" db:"date_worked"`
	StartDateTime *time.Time      `json:"startDateTime,omitempty" db:"start_date_time"`
	EndDateTime   *time.Time      `json:"endDateTime,omitempty" db:"end_date_time"`
	ResourceID    *int64          `json:"resourceID,omitempty" db:"resource_id"`
	TicketID      *int64          `json:"ticketID,omitempty" db:"ticket_id"`
	TaskID        *int64          `json:"taskID,omitempty" db:"task_id"`
}

// RemoteID returns the remote primary key.
func (e *TimeEntry) RemoteID() int64 { return e.ID }

// Equal reports whether both records hold the same mapped attributes.
func (e *TimeEntry) Equal(other *TimeEntry) bool {
	return e.ID == other.ID &&
		e.SummaryNotes == other.SummaryNotes &&
		eqDecimal(e.HoursWorked, other.HoursWorked) &&
		eqDecimal(e.HoursToBill, other.HoursToBill) &&
		eqTimePtr(e.DateWorked, other.DateWorked) &&
		eqTimePtr(e.StartDateTime, other.StartDateTime) &&
		eqTimePtr(e.EndDateTime, other.EndDateTime) &&
		eqInt64Ptr(e.ResourceID, other.ResourceID) &&
		eqInt64Ptr(e.TicketID, other.TicketID) &&
		eqInt64Ptr(e.TaskID, other.TaskID)
}
