package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Task mirrors a remote project task record. Tasks only exist within a
// project, so the project relation is required.
type Task struct {
	ID                 int64           `json:"id" db:"id"`
	Title              string          `json:"title" db:"title"`
	TaskNumber         string          `json:"taskNumber" db:"task_number"`
	Description        string          `json:"description" db:"description"`
	EstimatedHours     decimal.Decimal `json:"estimatedHours" db:"estimated_hours"`
	RemainingHours     decimal.Decimal `json:"remainingHours" db:"remaining_hours"`
	StartDateTime      *time.Time      `json:"startDateTime,omitempty" db:"start_date_time"`
	EndDateTime        *time.Time      `json:"endDateTime,omitempty" db:"end_date_time"`
	CompletedDate      *time.Time      `json:"completedDateTime,omitempty" db:"completed_date"`
	LastActivityDate   *time.Time      `json:"lastActivityDateTime,omitempty" db:"last_activity_date"`
	StatusID           *int64          `json:"status,omitempty" db:"status_id"`
	ProjectID          *int64          `json:"projectID,omitempty" db:"project_id"`
	AssignedResourceID *int64          `json:"assignedResourceID,omitempty" db:"assigned_resource_id"`
}

// RemoteID returns the remote primary key.
func (t *Task) RemoteID() int64 { return t.ID }

// Complete reports whether the task is in the terminal complete status.
func (t *Task) Complete() bool {
	return t.StatusID != nil && *t.StatusID == CompleteStatusID
}

// Equal reports whether both records hold the same mapped attributes.
func (t *Task) Equal(other *Task) bool {
	return t.ID == other.ID &&
		t.Title == other.Title &&
		t.TaskNumber == other.TaskNumber &&
		t.Description == other.Description &&
		eqDecimal(t.EstimatedHours, other.EstimatedHours) &&
		eqDecimal(t.RemainingHours, other.RemainingHours) &&
		eqTimePtr(t.StartDateTime, other.StartDateTime) &&
		eqTimePtr(t.EndDateTime, other.EndDateTime) &&
		eqTimePtr(t.CompletedDate, other.CompletedDate) &&
		eqTimePtr(t.LastActivityDate, other.LastActivityDate) &&
		eqInt64Ptr(t.StatusID, other.StatusID) &&
		eqInt64Ptr(t.ProjectID, other.ProjectID) &&
		eqInt64Ptr(t.AssignedResourceID, other.AssignedResourceID)
}
