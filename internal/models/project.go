package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project mirrors a remote project record.
type Project struct {
	ID             int64           `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	ProjectNumber  string          `json:"projectNumber" db:"project_number"`
	Description    string          `json:"description" db:"description"`
	EstimatedTime  decimal.Decimal `json:"estimatedTime" db:"estimated_time"`
	StartDateTime  *time.Time      `json:"startDateTime,omitempty" db:"start_date_time"`
	EndDateTime    *time.Time      `json:"endDateTime,omitempty" db:"end_date_time"`
	CompletedDate  *time.Time      `json:"completedDate,omitempty" db:"completed_date"`
	LastActivity   *time.Time      `json:"lastActivityDateTime,omitempty" db:"last_activity"`
	StatusID       *int64          `json:"status,omitempty" db:"status_id"`
	CompanyID      *int64          `json:"companyID,omitempty" db:"company_id"`
	ProjectLeadID  *int64          `json:"projectLeadResourceID,omitempty" db:"project_lead_id"`
	ContractID     *int64          `json:"contractID,omitempty" db:"contract_id"`
}

// RemoteID returns the remote primary key.
func (p *Project) RemoteID() int64 { return p.ID }

// Equal reports whether both records hold the same mapped attributes.
func (p *Project) Equal(other *Project) bool {
	return p.ID == other.ID &&
		p.Name == other.Name &&
		p.ProjectNumber == other.ProjectNumber &&
		p.Description == other.Description &&
		eqDecimal(p.EstimatedTime, other.EstimatedTime) &&
		eqTimePtr(p.StartDateTime, other.StartDateTime) &&
		eqTimePtr(p.EndDateTime, other.EndDateTime) &&
		eqTimePtr(p.CompletedDate, other.CompletedDate) &&
		eqTimePtr(p.LastActivity, other.LastActivity) &&
		eqInt64Ptr(p.StatusID, other.StatusID) &&
		eqInt64Ptr(p.CompanyID, other.CompanyID) &&
		eqInt64Ptr(p.ProjectLeadID, other.ProjectLeadID) &&
		eqInt64Ptr(p.ContractID, other.ContractID)
}
