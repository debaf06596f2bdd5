package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kerkhofftech/autotask-sync/internal/models"
)

// TicketRepository handles ticket persistence.
type TicketRepository struct {
	db *PostgresDB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *PostgresDB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `
	id, title, ticket_number, description, estimated_hours,
	create_date, due_date_time, completed_date, last_activity_date,
	status_id, priority_id, queue_id, source_id,
	company_id, project_id, contract_id, assigned_resource_id
`

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(
		&t.ID, &t.Title, &t.TicketNumber, &t.Description, &t.EstimatedHours,
		&t.CreateDate, &t.DueDateTime, &t.CompletedDate, &t.LastActivityDate,
		&t.StatusID, &t.PriorityID, &t.QueueID, &t.SourceID,
		&t.CompanyID, &t.ProjectID, &t.ContractID, &t.AssignedResourceID,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Get retrieves a ticket by its remote primary key. The second return
// value reports whether the row exists.
func (r *TicketRepository) Get(ctx context.Context, id int64) (*models.Ticket, bool, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	t, err := scanTicket(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get ticket %d: %w", id, err)
	}
	return t, true, nil
}

// Create inserts a new ticket row. A primary key race with a concurrent
// sync surfaces as ErrDuplicate.
func (r *TicketRepository) Create(ctx context.Context, t *models.Ticket) error {
	query := `
		INSERT INTO tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		t.ID, t.Title, t.TicketNumber, t.Description, t.EstimatedHours,
		t.CreateDate, t.DueDateTime, t.CompletedDate, t.LastActivityDate,
		t.StatusID, t.PriorityID, t.QueueID, t.SourceID,
		t.CompanyID, t.ProjectID, t.ContractID, t.AssignedResourceID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ticket %d: %w", t.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create ticket %d: %w", t.ID, err)
	}
	return nil
}

// Update rewrites an existing ticket row.
func (r *TicketRepository) Update(ctx context.Context, t *models.Ticket) error {
	query := `
		UPDATE tickets
		SET title = $2, ticket_number = $3, description = $4, estimated_hours = $5,
			create_date = $6, due_date_time = $7, completed_date = $8, last_activity_date = $9,
			status_id = $10, priority_id = $11, queue_id = $12, source_id = $13,
			company_id = $14, project_id = $15, contract_id = $16, assigned_resource_id = $17
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		t.ID, t.Title, t.TicketNumber, t.Description, t.EstimatedHours,
		t.CreateDate, t.DueDateTime, t.CompletedDate, t.LastActivityDate,
		t.StatusID, t.PriorityID, t.QueueID, t.SourceID,
		t.CompanyID, t.ProjectID, t.ContractID, t.AssignedResourceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket %d: %w", t.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("ticket %d not found", t.ID)
	}
	return nil
}

// ListIDs returns the remote primary keys of all locally known tickets.
func (r *TicketRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return listIDs(ctx, r.db, "tickets")
}

// Delete removes the tickets with the given remote primary keys and
// returns how many rows were deleted.
func (r *TicketRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, "tickets", ids)
}
