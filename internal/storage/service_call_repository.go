package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kerkhofftech/autotask-sync/internal/models"
)

// ServiceCallRepository handles service call persistence.
type ServiceCallRepository struct {
	db *PostgresDB
}

// NewServiceCallRepository creates a new service call repository
func NewServiceCallRepository(db *PostgresDB) *ServiceCallRepository {
	return &ServiceCallRepository{db: db}
}

// Get retrieves a service call by its remote primary key.
func (r *ServiceCallRepository) Get(ctx context.Context, id int64) (*models.ServiceCall, bool, error) {
	query := `
		SELECT id, description, duration, complete, canceled, start_date_time, end_date_time, company_id
		FROM service_calls WHERE id = $1
	`

	var s models.ServiceCall
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Description, &s.Duration, &s.Complete, &s.Canceled,
		&s.StartDateTime, &s.EndDateTime, &s.CompanyID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get service call %d: %w", id, err)
	}
	return &s, true, nil
}

// Create inserts a new service call row.
func (r *ServiceCallRepository) Create(ctx context.Context, s *models.ServiceCall) error {
	query := `
		INSERT INTO service_calls (id, description, duration, complete, canceled, start_date_time, end_date_time, company_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		s.ID, s.Description, s.Duration, s.Complete, s.Canceled,
		s.StartDateTime, s.EndDateTime, s.CompanyID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("service call %d: %w", s.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create service call %d: %w", s.ID, err)
	}
	return nil
}

// Update rewrites an existing service call row.
func (r *ServiceCallRepository) Update(ctx context.Context, s *models.ServiceCall) error {
	query := `
		UPDATE service_calls
		SET description = $2, duration = $3, complete = $4, canceled = $5,
			start_date_time = $6, end_date_time = $7, company_id = $8
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		s.ID, s.Description, s.Duration, s.Complete, s.Canceled,
		s.StartDateTime, s.EndDateTime, s.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service call %d: %w", s.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("service call %d not found", s.ID)
	}
	return nil
}

// ListIDs returns the remote primary keys of all locally known service calls.
func (r *ServiceCallRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return listIDs(ctx, r.db, "service_calls")
}

// Delete removes the service calls with the given remote primary keys.
func (r *ServiceCallRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, "service_calls", ids)
}
