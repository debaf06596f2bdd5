package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kerkhofftech/autotask-sync/internal/models"
)

// ResourceRepository handles resource persistence.
type ResourceRepository struct {
	db *PostgresDB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *PostgresDB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Get retrieves a resource by its remote primary key.
func (r *ResourceRepository) Get(ctx context.Context, id int64) (*models.Resource, bool, error) {
	query := `
		SELECT id, user_name, email, first_name, last_name, active
		FROM resources WHERE id = $1
	`

	var res models.Resource
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&res.ID, &res.UserName, &res.Email, &res.FirstName, &res.LastName, &res.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get resource %d: %w", id, err)
	}
	return &res, true, nil
}

// Create inserts a new resource row.
func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	query := `
		INSERT INTO resources (id, user_name, email, first_name, last_name, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		res.ID, res.UserName, res.Email, res.FirstName, res.LastName, res.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("resource %d: %w", res.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create resource %d: %w", res.ID, err)
	}
	return nil
}

// Update rewrites an existing resource row.
func (r *ResourceRepository) Update(ctx context.Context, res *models.Resource) error {
	query := `
		UPDATE resources
		SET user_name = $2, email = $3, first_name = $4, last_name = $5, active = $6
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		res.ID, res.UserName, res.Email, res.FirstName, res.LastName, res.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to update resource %d: %w", res.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("resource %d not found", res.ID)
	}
	return nil
}

// ListIDs returns the remote primary keys of all locally known resources.
func (r *ResourceRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return listIDs(ctx, r.db, "resources")
}

// Delete removes the resources with the given remote primary keys.
func (r *ResourceRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, "resources", ids)
}
