package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kerkhofftech/autotask-sync/internal/models"
)

const taskColumns = `id, title, task_number, description, estimated_hours, remaining_hours,
	start_date_time, end_date_time, completed_date, last_activity_date,
	status_id, project_id, assigned_resource_id`

// TaskRepository handles project task persistence.
type TaskRepository struct {
	db *PostgresDB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *PostgresDB) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID, &t.Title, &t.TaskNumber, &t.Description, &t.EstimatedHours, &t.RemainingHours,
		&t.StartDateTime, &t.EndDateTime, &t.CompletedDate, &t.LastActivityDate,
		&t.StatusID, &t.ProjectID, &t.AssignedResourceID,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Get retrieves a task by its remote primary key.
func (r *TaskRepository) Get(ctx context.Context, id int64) (*models.Task, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns)

	t, err := scanTask(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return t, true, nil
}

// Create inserts a new task row.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	query := fmt.Sprintf(`
		INSERT INTO tasks (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, taskColumns)

	_, err := r.db.Pool().Exec(ctx, query,
		t.ID, t.Title, t.TaskNumber, t.Description, t.EstimatedHours, t.RemainingHours,
		t.StartDateTime, t.EndDateTime, t.CompletedDate, t.LastActivityDate,
		t.StatusID, t.ProjectID, t.AssignedResourceID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("task %d: %w", t.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create task %d: %w", t.ID, err)
	}
	return nil
}

// Update rewrites an existing task row.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, task_number = $3, description = $4, estimated_hours = $5,
			remaining_hours = $6, start_date_time = $7, end_date_time = $8,
			completed_date = $9, last_activity_date = $10,
			status_id = $11, project_id = $12, assigned_resource_id = $13
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		t.ID, t.Title, t.TaskNumber, t.Description, t.EstimatedHours, t.RemainingHours,
		t.StartDateTime, t.EndDateTime, t.CompletedDate, t.LastActivityDate,
		t.StatusID, t.ProjectID, t.AssignedResourceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", t.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("task %d not found", t.ID)
	}
	return nil
}

// ListIDs returns the remote primary keys of all locally known tasks.
func (r *TaskRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return listIDs(ctx, r.db, "tasks")
}

// Delete removes the tasks with the given remote primary keys.
func (r *TaskRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, "tasks", ids)
}
