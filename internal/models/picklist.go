package models

// PicklistItem mirrors one entry of a remote picklist enumeration
// (statuses, priorities, queues, sources, ...). The remote-assigned value
// is the primary key.
type PicklistItem struct {
	ID             int64  `json:"id" db:"id"`
	Label          string `json:"label" db:"label"`
	IsDefaultValue bool   `json:"isDefaultValue" db:"is_default_value"`
	SortOrder      int    `json:"sortOrder" db:"sort_order"`
	IsActive       bool   `json:"isActive" db:"is_active"`
	IsSystem       bool   `json:"isSystem" db:"is_system"`
}

// RemoteID returns the remote-assigned picklist value.
func (p *PicklistItem) RemoteID() int64 { return p.ID }

// Equal reports whether both records hold the same mapped attributes.
func (p *PicklistItem) Equal(other *PicklistItem) bool {
	return *p == *other
}
