package models

import "time"

// Company mirrors a remote account/company record.
type Company struct {
	ID               int64      `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	CompanyNumber    string     `json:"companyNumber" db:"company_number"`
	Phone            string     `json:"phone" db:"phone"`
	Active           bool       `json:"active" db:"active"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty" db:"last_activity_date"`
	CreateDate       *time.Time `json:"createDate,omitempty" db:"create_date"`
}

// RemoteID returns the remote primary key.
func (c *Company) RemoteID() int64 { return c.ID }

// Equal reports whether both records hold the same mapped attributes.
func (c *Company) Equal(other *Company) bool {
	return c.ID == other.ID &&
		c.Name == other.Name &&
		c.CompanyNumber == other.CompanyNumber &&
		c.Phone == other.Phone &&
		c.Active == other.Active &&
		eqTimePtr(c.LastActivityDate, other.LastActivityDate) &&
		eqTimePtr(c.CreateDate, other.CreateDate)
}
