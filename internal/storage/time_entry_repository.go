package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kerkhofftech/autotask-sync/internal/models"
)

const timeEntryColumns = `id, summary_notes, hours_worked, hours_to_bill,
	date_worked, start_date_time, end_date_time, resource_id, ticket_id, task_id`

// TimeEntryRepository handles time entry persistence.
type TimeEntryRepository struct {
	db *PostgresDB
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *PostgresDB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

func scanTimeEntry(row pgx.Row) (*models.TimeEntry, error) {
	var e models.TimeEntry
	err := row.Scan(
		&e.ID, &e.SummaryNotes, &e.HoursWorked, &e.HoursToBill,
		&e.DateWorked, &e.StartDateTime, &e.EndDateTime, &e.ResourceID, &e.TicketID, &e.TaskID,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get retrieves a time entry by its remote primary key.
func (r *TimeEntryRepository) Get(ctx context.Context, id int64) (*models.TimeEntry, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_entries WHERE id = $1`, timeEntryColumns)

	e, err := scanTimeEntry(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get time entry %d: %w", id, err)
	}
	return e, true, nil
}

// Create inserts a new time entry row.
func (r *TimeEntryRepository) Create(ctx context.Context, e *models.TimeEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO time_entries (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, timeEntryColumns)

	_, err := r.db.Pool().Exec(ctx, query,
		e.ID, e.SummaryNotes, e.HoursWorked, e.HoursToBill,
		e.DateWorked, e.StartDateTime, e.EndDateTime, e.ResourceID, e.TicketID, e.TaskID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("time entry %d: %w", e.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create time entry %d: %w", e.ID, err)
	}
	return nil
}

// Update rewrites an existing time entry row.
func (r *TimeEntryRepository) Update(ctx context.Context, e *models.TimeEntry) error {
	query := `
		UPDATE time_entries
		SET summary_notes = $2, hours_worked = $3, hours_to_bill = $4,
			date_worked = $5, start_date_time = $6, end_date_time = $7,
			resource_id = $8, ticket_id = $9, task_id = $10
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		e.ID, e.SummaryNotes, e.HoursWorked, e.HoursToBill,
		e.DateWorked, e.StartDateTime, e.EndDateTime, e.ResourceID, e.TicketID, e.TaskID,
	)
	if err != nil {
		return fmt.Errorf("failed to update time entry %d: %w", e.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("time entry %d not found", e.ID)
	}
	return nil
}

// ListIDs returns the remote primary keys of all locally known time entries.
func (r *TimeEntryRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return listIDs(ctx, r.db, "time_entries")
}

// ListIDsByParent returns the locally known time entry IDs scoped to a
// parent ticket.
func (r *TimeEntryRepository) ListIDsByParent(ctx context.Context, ticketID int64) ([]int64, error) {
	return listIDsBy(ctx, r.db, "time_entries", "ticket_id", ticketID)
}

// Delete removes the time entries with the given remote primary keys.
func (r *TimeEntryRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, "time_entries", ids)
}
