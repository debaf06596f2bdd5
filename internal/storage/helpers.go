package storage

import (
	"context"
	"fmt"
)

// syncedTables lists the entity tables the shared helpers may touch.
var syncedTables = map[string]bool{
	"companies":        true,
	"resources":        true,
	"contracts":        true,
	"projects":         true,
	"tickets":          true,
	"tasks":            true,
	"time_entries":     true,
	"service_calls":    true,
	"ticket_notes":     true,
	"statuses":         true,
	"priorities":       true,
	"queues":           true,
	"sources":          true,
	"project_statuses": true,
	"note_types":       true,
}

// listIDs returns every remote primary key present in the given table.
func listIDs(ctx context.Context, db *PostgresDB, table string) ([]int64, error) {
	if !syncedTables[table] {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	rows, err := db.Pool().Query(ctx, fmt.Sprintf("SELECT id FROM %s", table))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s ids: %w", table, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s id: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s ids: %w", table, err)
	}

	return ids, nil
}

// listIDsBy returns the remote primary keys in the given table whose
// column matches the given parent ID.
func listIDsBy(ctx context.Context, db *PostgresDB, table, column string, parentID int64) ([]int64, error) {
	if !syncedTables[table] {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	if column != "ticket_id" && column != "task_id" {
		return nil, fmt.Errorf("unknown scope column %q", column)
	}

	rows, err := db.Pool().Query(ctx,
		fmt.Sprintf("SELECT id FROM %s WHERE %s = $1", table, column), parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s ids by %s: %w", table, column, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s id: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s ids: %w", table, err)
	}

	return ids, nil
}

// deleteByIDs removes the rows with the given remote primary keys and
// returns the number of rows deleted.
func deleteByIDs(ctx context.Context, db *PostgresDB, table string, ids []int64) (int64, error) {
	if !syncedTables[table] {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := db.Pool().Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ANY($1)", table), ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return result.RowsAffected(), nil
}
