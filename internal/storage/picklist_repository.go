package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kerkhofftech/autotask-sync/internal/models"
)

// picklistTables lists the tables a PicklistRepository may be bound to.
var picklistTables = map[string]bool{
	"statuses":         true,
	"priorities":       true,
	"queues":           true,
	"sources":          true,
	"project_statuses": true,
	"note_types":       true,
}

// PicklistRepository handles persistence for one picklist table. All
// picklist tables share a schema, so a single repository is bound to a
// table name at construction.
type PicklistRepository struct {
	db    *PostgresDB
	table string
}

// NewPicklistRepository creates a repository bound to the given picklist
// table. The table must be one of the known picklist tables.
func NewPicklistRepository(db *PostgresDB, table string) (*PicklistRepository, error) {
	if !picklistTables[table] {
		return nil, fmt.Errorf("unknown picklist table %q", table)
	}
	return &PicklistRepository{db: db, table: table}, nil
}

// Get retrieves a picklist item by its remote value.
func (r *PicklistRepository) Get(ctx context.Context, id int64) (*models.PicklistItem, bool, error) {
	query := fmt.Sprintf(`
		SELECT id, label, is_default_value, sort_order, is_active, is_system
		FROM %s WHERE id = $1
	`, r.table)

	var p models.PicklistItem
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Label, &p.IsDefaultValue, &p.SortOrder, &p.IsActive, &p.IsSystem,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s item %d: %w", r.table, id, err)
	}
	return &p, true, nil
}

// Create inserts a new picklist item.
func (r *PicklistRepository) Create(ctx context.Context, p *models.PicklistItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, label, is_default_value, sort_order, is_active, is_system)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.table)

	_, err := r.db.Pool().Exec(ctx, query,
		p.ID, p.Label, p.IsDefaultValue, p.SortOrder, p.IsActive, p.IsSystem,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s item %d: %w", r.table, p.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create %s item %d: %w", r.table, p.ID, err)
	}
	return nil
}

// Update rewrites an existing picklist item.
func (r *PicklistRepository) Update(ctx context.Context, p *models.PicklistItem) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET label = $2, is_default_value = $3, sort_order = $4, is_active = $5, is_system = $6
		WHERE id = $1
	`, r.table)

	result, err := r.db.Pool().Exec(ctx, query,
		p.ID, p.Label, p.IsDefaultValue, p.SortOrder, p.IsActive, p.IsSystem,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s item %d: %w", r.table, p.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s item %d not found", r.table, p.ID)
	}
	return nil
}

// ListIDs returns the remote values of all locally known picklist items.
func (r *PicklistRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return listIDs(ctx, r.db, r.table)
}

// Delete removes the picklist items with the given remote values.
func (r *PicklistRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, r.table, ids)
}
