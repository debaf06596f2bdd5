package models

// Resource mirrors a remote resource (staff member) record.
type Resource struct {
	ID        int64  `json:"id" db:"id"`
	UserName  string `json:"userName" db:"user_name"`
	Email     string `json:"email" db:"email"`
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Active    bool   `json:"active" db:"active"`
}

// RemoteID returns the remote primary key.
func (r *Resource) RemoteID() int64 { return r.ID }

// Equal reports whether both records hold the same mapped attributes.
func (r *Resource) Equal(other *Resource) bool {
	return *r == *other
}
