package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kerkhofftech/autotask-sync/internal/models"
)

// SyncJobRepository is the durable ledger of synchronization runs.
type SyncJobRepository struct {
	db *PostgresDB
}

// NewSyncJobRepository creates a new sync job repository
func NewSyncJobRepository(db *PostgresDB) *SyncJobRepository {
	return &SyncJobRepository{db: db}
}

// Begin opens a ledger row for a sync run before any remote fetch starts.
func (r *SyncJobRepository) Begin(ctx context.Context, entityName, mode string) (*models.SyncJob, error) {
	job := &models.SyncJob{
		ID:         uuid.New(),
		EntityName: entityName,
		Mode:       mode,
		StartTime:  time.Now().UTC(),
	}

	query := `
		INSERT INTO sync_jobs (id, entity_name, mode, start_time, success)
		VALUES ($1, $2, $3, $4, false)
	`

	_, err := r.db.Pool().Exec(ctx, query, job.ID, job.EntityName, job.Mode, job.StartTime)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sync job for %s: %w", entityName, err)
	}

	return job, nil
}

// Finalize closes a ledger row with the run's outcome. It is called on
// every exit path, including failures.
func (r *SyncJobRepository) Finalize(ctx context.Context, job *models.SyncJob, created, updated, skipped, deleted int, success bool, message string) error {
	now := time.Now().UTC()
	job.EndTime = &now
	job.Success = success
	job.CreatedCount = created
	job.UpdatedCount = updated
	job.SkippedCount = skipped
	job.DeletedCount = deleted
	job.Message = message

	query := `
		UPDATE sync_jobs
		SET end_time = $2, success = $3, created_count = $4, updated_count = $5,
			skipped_count = $6, deleted_count = $7, message = $8
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		job.ID, job.EndTime, job.Success,
		job.CreatedCount, job.UpdatedCount, job.SkippedCount, job.DeletedCount,
		job.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize sync job %s: %w", job.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("sync job %s not found", job.ID)
	}

	return nil
}

// LastSuccessfulStart returns the start time of the most recent successful
// run for the entity, or nil when no successful run exists yet. That time
// is the lower bound for the next incremental fetch window.
func (r *SyncJobRepository) LastSuccessfulStart(ctx context.Context, entityName string) (*time.Time, error) {
	query := `
		SELECT start_time
		FROM sync_jobs
		WHERE entity_name = $1 AND success = true
		ORDER BY start_time DESC
		LIMIT 1
	`

	var startTime time.Time
	err := r.db.Pool().QueryRow(ctx, query, entityName).Scan(&startTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query last successful sync for %s: %w", entityName, err)
	}

	return &startTime, nil
}

// ListRecent returns the most recent ledger rows for an entity, newest
// first, for observability endpoints.
func (r *SyncJobRepository) ListRecent(ctx context.Context, entityName string, limit int) ([]*models.SyncJob, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, entity_name, mode, start_time, end_time, success,
			   created_count, updated_count, skipped_count, deleted_count, message
		FROM sync_jobs
		WHERE entity_name = $1
		ORDER BY start_time DESC
		LIMIT $2
	`

	rows, err := r.db.Pool().Query(ctx, query, entityName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync jobs for %s: %w", entityName, err)
	}
	defer rows.Close()

	var jobs []*models.SyncJob
	for rows.Next() {
		var job models.SyncJob
		err := rows.Scan(
			&job.ID, &job.EntityName, &job.Mode, &job.StartTime, &job.EndTime, &job.Success,
			&job.CreatedCount, &job.UpdatedCount, &job.SkippedCount, &job.DeletedCount, &job.Message,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync job: %w", err)
		}
		jobs = append(jobs, &job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync jobs: %w", err)
	}

	return jobs, nil
}
