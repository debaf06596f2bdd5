package models

import "time"

// TicketNote mirrors a remote ticket note. Notes only make sense scoped to
// their parent ticket; the ticket relation is required.
type TicketNote struct {
	ID                int64      `json:"id" db:"id"`
	Title             string     `json:"title" db:"title"`
	Description       string     `json:"description" db:"description"`
	CreateDateTime    *time.Time `json:"createDateTime,omitempty" db:"create_date_time"`
	LastActivityDate  *time.Time `json:"lastActivityDate,omitempty" db:"last_activity_date"`
	TicketID          *int64     `json:"ticketID,omitempty" db:"ticket_id"`
	NoteTypeID        *int64     `json:"noteType,omitempty" db:"note_type_id"`
	CreatorResourceID *int64     `json:"creatorResourceID,omitempty" db:"creator_resource_id"`
}

// RemoteID returns the remote primary key.
func (n *TicketNote) RemoteID() int64 { return n.ID }

// Equal reports whether both records hold the same mapped attributes.
func (n *TicketNote) Equal(other *TicketNote) bool {
	return n.ID == other.ID &&
		n.Title == other.Title &&
		n.Description == other.Description &&
		eqTimePtr(n.CreateDateTime, other.CreateDateTime) &&
		eqTimePtr(n.LastActivityDate, other.LastActivityDate) &&
		eqInt64Ptr(n.TicketID, other.TicketID) &&
		eqInt64Ptr(n.NoteTypeID, other.NoteTypeID) &&
		eqInt64Ptr(n.CreatorResourceID, other.CreatorResourceID)
}
