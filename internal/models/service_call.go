package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceCall mirrors a remote service call record.
type ServiceCall struct {
	ID            int64           `json:"id" db:"id"`
	Description   string          `json:"description" db:"description"`
	Duration      decimal.Decimal `json:"duration" db:"duration"`
	Complete      bool            `json:"isComplete" db:"complete"`
	Canceled      bool            `json:"canceled" db:"canceled"`
	StartDateTime *time.Time      `json:"startDateTime,omitempty" db:"start_date_time"`
	EndDateTime   *time.Time      `json:"endDateTime,omitempty" db:"end_date_time"`
	CompanyID     *int64          `json:"companyID,omitempty" db:"company_id"`
}

// RemoteID returns the remote primary key.
func (s *ServiceCall) RemoteID() int64 { return s.ID }

// Equal reports whether both records hold the same mapped attributes.
func (s *ServiceCall) Equal(other *ServiceCall) bool {
	return s.ID == other.ID &&
		s.Description == other.Description &&
		eqDecimal(s.Duration, other.Duration) &&
		s.Complete == other.Complete &&
		s.Canceled == other.Canceled &&
		eqTimePtr(s.StartDateTime, other.StartDateTime) &&
		eqTimePtr(s.EndDateTime, other.EndDateTime) &&
		eqInt64Ptr(s.CompanyID, other.CompanyID)
}
