package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kerkhofftech/autotask-sync/internal/models"
)

// CompanyRepository handles company persistence.
type CompanyRepository struct {
	db *PostgresDB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *PostgresDB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Get retrieves a company by its remote primary key.
func (r *CompanyRepository) Get(ctx context.Context, id int64) (*models.Company, bool, error) {
	query := `
		SELECT id, name, company_number, phone, active, last_activity_date, create_date
		FROM companies WHERE id = $1
	`

	var c models.Company
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.CompanyNumber, &c.Phone, &c.Active, &c.LastActivityDate, &c.CreateDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get company %d: %w", id, err)
	}
	return &c, true, nil
}

// Create inserts a new company row.
func (r *CompanyRepository) Create(ctx context.Context, c *models.Company) error {
	query := `
		INSERT INTO companies (id, name, company_number, phone, active, last_activity_date, create_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		c.ID, c.Name, c.CompanyNumber, c.Phone, c.Active, c.LastActivityDate, c.CreateDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("company %d: %w", c.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create company %d: %w", c.ID, err)
	}
	return nil
}

// Update rewrites an existing company row.
func (r *CompanyRepository) Update(ctx context.Context, c *models.Company) error {
	query := `
		UPDATE companies
		SET name = $2, company_number = $3, phone = $4, active = $5,
			last_activity_date = $6, create_date = $7
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		c.ID, c.Name, c.CompanyNumber, c.Phone, c.Active, c.LastActivityDate, c.CreateDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update company %d: %w", c.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("company %d not found", c.ID)
	}
	return nil
}

// ListIDs returns the remote primary keys of all locally known companies.
func (r *CompanyRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return listIDs(ctx, r.db, "companies")
}

// Delete removes the companies with the given remote primary keys.
func (r *CompanyRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, "companies", ids)
}
