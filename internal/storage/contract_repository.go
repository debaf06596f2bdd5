package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kerkhofftech/autotask-sync/internal/models"
)

// ContractRepository handles contract persistence.
type ContractRepository struct {
	db *PostgresDB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *PostgresDB) *ContractRepository {
	return &ContractRepository{db: db}
}

// Get retrieves a contract by its remote primary key.
func (r *ContractRepository) Get(ctx context.Context, id int64) (*models.Contract, bool, error) {
	query := `
		SELECT id, name, contract_number, status, setup_fee, start_date, end_date, company_id
		FROM contracts WHERE id = $1
	`

	var c models.Contract
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.ContractNumber, &c.Status, &c.SetupFee, &c.StartDate, &c.EndDate, &c.CompanyID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get contract %d: %w", id, err)
	}
	return &c, true, nil
}

// Create inserts a new contract row.
func (r *ContractRepository) Create(ctx context.Context, c *models.Contract) error {
	query := `
		INSERT INTO contracts (id, name, contract_number, status, setup_fee, start_date, end_date, company_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		c.ID, c.Name, c.ContractNumber, c.Status, c.SetupFee, c.StartDate, c.EndDate, c.CompanyID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("contract %d: %w", c.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create contract %d: %w", c.ID, err)
	}
	return nil
}

// Update rewrites an existing contract row.
func (r *ContractRepository) Update(ctx context.Context, c *models.Contract) error {
	query := `
		UPDATE contracts
		SET name = $2, contract_number = $3, status = $4, setup_fee = $5,
			start_date = $6, end_date = $7, company_id = $8
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		c.ID, c.Name, c.ContractNumber, c.Status, c.SetupFee, c.StartDate, c.EndDate, c.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contract %d: %w", c.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("contract %d not found", c.ID)
	}
	return nil
}

// ListIDs returns the remote primary keys of all locally known contracts.
func (r *ContractRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return listIDs(ctx, r.db, "contracts")
}

// Delete removes the contracts with the given remote primary keys.
func (r *ContractRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, "contracts", ids)
}
