package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket mirrors a remote service ticket record.
type Ticket struct {
	ID                 int64           `json:"id" db:"id"`
	Title              string          `json:"title" db:"title"`
	TicketNumber       string          `json:"ticketNumber" db:"ticket_number"`
	Description        string          `json:"description" db:"description"`
	EstimatedHours     decimal.Decimal `json:"estimatedHours" db:"estimated_hours"`
	CreateDate         *time.Time      `json:"createDate,omitempty" db:"create_date"`
	DueDateTime        *time.Time      `json:"dueDateTime,omitempty" db:"due_date_time"`
	CompletedDate      *time.Time      `json:"completedDate,omitempty" db:"completed_date"`
	LastActivityDate   *time.Time      `json:"lastActivityDate,omitempty" db:"last_activity_date"`
	StatusID           *int64          `json:"status,omitempty" db:"status_id"`
	PriorityID         *int64          `json:"priority,omitempty" db:"priority_id"`
	QueueID            *int64          `json:"queueID,omitempty" db:"queue_id"`
	SourceID           *int64          `json:"source,omitempty" db:"source_id"`
	CompanyID          *int64          `json:"companyID,omitempty" db:"company_id"`
	ProjectID          *int64          `json:"projectID,omitempty" db:"project_id"`
	ContractID         *int64          `json:"contractID,omitempty" db:"contract_id"`
	AssignedResourceID *int64          `json:"assignedResourceID,omitempty" db:"assigned_resource_id"`
}

// RemoteID returns the remote primary key.
func (t *Ticket) RemoteID() int64 { return t.ID }

// Complete reports whether the ticket is in the terminal complete status.
func (t *Ticket) Complete() bool {
	return t.StatusID != nil && *t.StatusID == CompleteStatusID
}

// Equal reports whether both records hold the same mapped attributes.
func (t *Ticket) Equal(other *Ticket) bool {
	return t.ID == other.ID &&
		t.Title == other.Title &&
		t.TicketNumber == other.TicketNumber &&
		t.Description == other.Description &&
		eqDecimal(t.EstimatedHours, other.EstimatedHours) &&
		eqTimePtr(t.CreateDate, other.CreateDate) &&
		eqTimePtr(t.DueDateTime, other.DueDateTime) &&
		eqTimePtr(t.CompletedDate, other.CompletedDate) &&
		eqTimePtr(t.LastActivityDate, other.LastActivityDate) &&
		eqInt64Ptr(t.StatusID, other.StatusID) &&
		eqInt64Ptr(t.PriorityID, other.PriorityID) &&
		eqInt64Ptr(t.QueueID, other.QueueID) &&
		eqInt64Ptr(t.SourceID, other.SourceID) &&
		eqInt64Ptr(t.CompanyID, other.CompanyID) &&
		eqInt64Ptr(t.ProjectID, other.ProjectID) &&
		eqInt64Ptr(t.ContractID, other.ContractID) &&
		eqInt64Ptr(t.AssignedResourceID, other.AssignedResourceID)
}
