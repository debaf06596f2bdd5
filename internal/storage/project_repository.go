package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kerkhofftech/autotask-sync/internal/models"
)

const projectColumns = `id, name, project_number, description, estimated_time,
	start_date_time, end_date_time, completed_date, last_activity,
	status_id, company_id, project_lead_id, contract_id`

// ProjectRepository handles project persistence.
type ProjectRepository struct {
	db *PostgresDB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *PostgresDB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Name, &p.ProjectNumber, &p.Description, &p.EstimatedTime,
		&p.StartDateTime, &p.EndDateTime, &p.CompletedDate, &p.LastActivity,
		&p.StatusID, &p.CompanyID, &p.ProjectLeadID, &p.ContractID,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get retrieves a project by its remote primary key.
func (r *ProjectRepository) Get(ctx context.Context, id int64) (*models.Project, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns)

	p, err := scanProject(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	return p, true, nil
}

// Create inserts a new project row.
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	query := fmt.Sprintf(`
		INSERT INTO projects (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, projectColumns)

	_, err := r.db.Pool().Exec(ctx, query,
		p.ID, p.Name, p.ProjectNumber, p.Description, p.EstimatedTime,
		p.StartDateTime, p.EndDateTime, p.CompletedDate, p.LastActivity,
		p.StatusID, p.CompanyID, p.ProjectLeadID, p.ContractID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("project %d: %w", p.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create project %d: %w", p.ID, err)
	}
	return nil
}

// Update rewrites an existing project row.
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	query := `
		UPDATE projects
		SET name = $2, project_number = $3, description = $4, estimated_time = $5,
			start_date_time = $6, end_date_time = $7, completed_date = $8, last_activity = $9,
			status_id = $10, company_id = $11, project_lead_id = $12, contract_id = $13
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query,
		p.ID, p.Name, p.ProjectNumber, p.Description, p.EstimatedTime,
		p.StartDateTime, p.EndDateTime, p.CompletedDate, p.LastActivity,
		p.StatusID, p.CompanyID, p.ProjectLeadID, p.ContractID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project %d: %w", p.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %d not found", p.ID)
	}
	return nil
}

// ListIDs returns the remote primary keys of all locally known projects.
func (r *ProjectRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return listIDs(ctx, r.db, "projects")
}

// ActiveIDs returns the IDs of projects whose status picklist row is active.
// Tasks are only fetched for these projects.
func (r *ProjectRepository) ActiveIDs(ctx context.Context) ([]int64, error) {
	query := `
		SELECT p.id FROM projects p
		JOIN project_statuses ps ON p.status_id = ps.id
		WHERE ps.is_active
		ORDER BY p.id
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active project ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active project ids: %w", err)
	}
	return ids, nil
}

// Delete removes the projects with the given remote primary keys.
func (r *ProjectRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, "projects", ids)
}
