package storage

import (
	"context"
	"fmt"
)

// referencedTables lists the tables relation descriptors may point at.
// Table names are interpolated into SQL, so only whitelisted names pass.
var referencedTables = map[string]bool{
	"companies":        true,
	"resources":        true,
	"contracts":        true,
	"projects":         true,
	"tickets":          true,
	"tasks":            true,
	"statuses":         true,
	"priorities":       true,
	"queues":           true,
	"sources":          true,
	"project_statuses": true,
	"note_types":       true,
}

// RefChecker answers "does a local row with this primary key exist" for
// relation resolution during record mapping.
type RefChecker struct {
	db *PostgresDB
}

// NewRefChecker creates a reference checker backed by the local schema.
func NewRefChecker(db *PostgresDB) *RefChecker {
	return &RefChecker{db: db}
}

// Exists reports whether the referenced table holds a row with the given
// remote primary key.
func (r *RefChecker) Exists(ctx context.Context, table string, id int64) (bool, error) {
	if !referencedTables[table] {
		return false, fmt.Errorf("unknown referenced table %q", table)
	}

	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)", table)
	if err := r.db.Pool().QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s reference %d: %w", table, id, err)
	}
	return exists, nil
}
