package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kerkhofftech/autotask-sync/internal/models"
)

// TicketNoteRepository handles ticket note persistence.
type TicketNoteRepository struct {
	db *PostgresDB
}

// NewTicketNoteRepository creates a new ticket note repository
func NewTicketNoteRepository(db *PostgresDB) *TicketNoteRepository {
	return &TicketNoteRepository{db: db}
}

// Get retrieves a ticket note by its remote primary key.
func (r *TicketNoteRepository) Get(ctx context.Context, id int64) (*models.TicketNote, bool, error) {
	query := `
		SELECT id, title, description, create_date_time, last_activity_date, ticket_id, note_type_id, creator_resource_id
		FROM ticket_notes WHERE id = $1
	`

	var n models.TicketNote
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&n.ID, &n.Title, &n.Description, &n.CreateDateTime, &n.LastActivityDate,
		&n.TicketID, &n.NoteTypeID, &n.CreatorResourceID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get ticket note %d: %w", id, err)
	}
	return &n, true, nil
}

// Create inserts a new ticket note row.
func (r *TicketNoteRepository) Create(ctx context.Context, n *models.TicketNote) error {
	query := `
		INSERT INTO ticket_notes (id, title, description, create_date_time, last_activity_date, ticket_id, note_type_id, creator_resource_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		n.ID, n.Title, n.Description, n.CreateDateTime, n.LastActivityDate,
		n.TicketID, n.NoteTypeID, n.CreatorResourceID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ticket note %d: %w", n.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create ticket note %d: %w", n.ID, err)
	}
	return nil
}

// Update rewrites an existing ticket note row.
func (r *TicketNoteRepository) Update(ctx context.Context, n *models.TicketNote) error {
	query := `
		UPDATE ticket_notes
		SET title = $2, description = $3, create_date_time = $4, last_activity_date = $5,
			ticket_id = $6, note_type_id = $7, creator_resource_id = $8
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		n.ID, n.Title, n.Description, n.CreateDateTime, n.LastActivityDate,
		n.TicketID, n.NoteTypeID, n.CreatorResourceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket note %d: %w", n.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("ticket note %d not found", n.ID)
	}
	return nil
}

// ListIDs returns the remote primary keys of all locally known ticket notes.
func (r *TicketNoteRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return listIDs(ctx, r.db, "ticket_notes")
}

// ListIDsByParent returns the locally known note IDs scoped to a ticket.
func (r *TicketNoteRepository) ListIDsByParent(ctx context.Context, ticketID int64) ([]int64, error) {
	return listIDsBy(ctx, r.db, "ticket_notes", "ticket_id", ticketID)
}

// Delete removes the ticket notes with the given remote primary keys.
func (r *TicketNoteRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, "ticket_notes", ids)
}
