package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract mirrors a remote contract record.
type Contract struct {
	ID             int64           `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	ContractNumber string          `json:"contractNumber" db:"contract_number"`
	Status         int64           `json:"status" db:"status"`
	SetupFee       decimal.Decimal `json:"setupFee" db:"setup_fee"`
	StartDate      *time.Time      `json:"startDate,omitempty" db:"start_date"`
	EndDate        *time.Time      `json:"endDate,omitempty" db:"end_date"`
	CompanyID      *int64          `json:"companyID,omitempty" db:"company_id"`
}

// RemoteID returns the remote primary key.
func (c *Contract) RemoteID() int64 { return c.ID }

// Equal reports whether both records hold the same mapped attributes.
func (c *Contract) Equal(other *Contract) bool {
	return c.ID == other.ID &&
		c.Name == other.Name &&
		c.ContractNumber == other.ContractNumber &&
		c.Status == other.Status &&
		eqDecimal(c.SetupFee, other.SetupFee) &&
		eqTimePtr(c.StartDate, other.StartDate) &&
		eqTimePtr(c.EndDate, other.EndDate) &&
		eqInt64Ptr(c.CompanyID, other.CompanyID)
}
