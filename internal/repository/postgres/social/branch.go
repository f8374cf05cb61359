package social

import (
	"context"
	"fmt"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialRepo "arbor/internal/domain/repositories/social"
	"arbor/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBranchRepository implements the BranchRepository interface
type PostgresBranchRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(config *postgres.RepositoryConfig) socialRepo.BranchRepository {
	return &PostgresBranchRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const branchColumns = `id, name, description, is_default, created_at, updated_at, project_id, author_id, forked_from_id`

func scanBranch(row interface{ Scan(...any) error }, b *models.Branch) error {
	return row.Scan(
		&b.ID,
		&b.Name,
		&b.Description,
		&b.Default,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.ProjectID,
		&b.AuthorID,
		&b.ForkedFromID,
	)
}

// Create creates a branch
func (r *PostgresBranchRepository) Create(ctx context.Context, branch *models.Branch) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, is_default, created_at, project_id, author_id, forked_from_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.Branches)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		branch.Name,
		branch.Description,
		branch.Default,
		branch.CreatedAt,
		branch.ProjectID,
		branch.AuthorID,
		branch.ForkedFromID,
	).Scan(&branch.ID, &branch.CreatedAt)

	if err != nil {
		switch {
		case postgres.IsPgDuplicateError(err) && postgres.ConstraintMatches(err, "branches_default_unique"):
			return &domain.ConflictError{
				Message:      fmt.Sprintf("project %s already has a default branch", branch.ProjectID),
				ResourceType: "branch",
			}
		case postgres.IsPgDuplicateError(err):
			conflict := &domain.ConflictError{
				Message:      fmt.Sprintf("branch '%s' already exists", branch.Name),
				ResourceType: "branch",
			}
			if id, getErr := r.getExistingBranchID(ctx, branch.ProjectID, branch.Name); getErr == nil {
				conflict.ResourceID = id
			}
			return conflict
		case postgres.IsPgForeignKeyError(err):
			return fmt.Errorf("branch parent: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create branch: %w", err)
	}

	return nil
}

// GetByID retrieves a branch by ID
func (r *PostgresBranchRepository) GetByID(ctx context.Context, id string) (*models.Branch, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, branchColumns, r.tables.Branches)

	var branch models.Branch
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanBranch(executor.QueryRow(ctx, query, id), &branch); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("branch %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}

	return &branch, nil
}

// ListByProject lists branches, default first, then oldest first
func (r *PostgresBranchRepository) ListByProject(ctx context.Context, projectID string) ([]models.Branch, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE project_id = $1
		ORDER BY is_default DESC, created_at ASC, id ASC
	`, branchColumns, r.tables.Branches)

	return r.queryBranches(ctx, query, projectID)
}

// GetDefault returns the default branch of a project
func (r *PostgresBranchRepository) GetDefault(ctx context.Context, projectID string) (*models.Branch, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE project_id = $1 AND is_default
	`, branchColumns, r.tables.Branches)

	var branch models.Branch
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanBranch(executor.QueryRow(ctx, query, projectID), &branch); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("default branch of project %s: %w", projectID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get default branch: %w", err)
	}

	return &branch, nil
}

// LockByProject locks every branch row of the project (FOR UPDATE)
func (r *PostgresBranchRepository) LockByProject(ctx context.Context, projectID string) ([]models.Branch, error) {
	if postgres.GetTx(ctx) == nil {
		return nil, fmt.Errorf("lock branches of project %s: no transaction in context", projectID)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE project_id = $1
		ORDER BY id
		FOR UPDATE
	`, branchColumns, r.tables.Branches)

	return r.queryBranches(ctx, query, projectID)
}

// SetDefault moves the default flag to branchID. The clear runs before the set
// so the partial unique index never sees two defaults.
func (r *PostgresBranchRepository) SetDefault(ctx context.Context, projectID, branchID string) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	clearQuery := fmt.Sprintf(`
		UPDATE %s SET is_default = FALSE, updated_at = NOW()
		WHERE project_id = $1 AND is_default AND id <> $2
	`, r.tables.Branches)
	if _, err := executor.Exec(ctx, clearQuery, projectID, branchID); err != nil {
		return fmt.Errorf("clear default branch: %w", err)
	}

	setQuery := fmt.Sprintf(`
		UPDATE %s SET is_default = TRUE, updated_at = NOW()
		WHERE project_id = $1 AND id = $2 AND NOT is_default
	`, r.tables.Branches)
	result, err := executor.Exec(ctx, setQuery, projectID, branchID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("project %s already has a default branch", projectID),
				ResourceType: "branch",
			}
		}
		return fmt.Errorf("set default branch: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either already default, or not a branch of this project
		var isDefault bool
		checkQuery := fmt.Sprintf(`SELECT is_default FROM %s WHERE project_id = $1 AND id = $2`, r.tables.Branches)
		if err := executor.QueryRow(ctx, checkQuery, projectID, branchID).Scan(&isDefault); err != nil {
			if postgres.IsPgNoRowsError(err) {
				return fmt.Errorf("branch %s in project %s: %w", branchID, projectID, domain.ErrNotFound)
			}
			return fmt.Errorf("check default branch: %w", err)
		}
	}

	return nil
}

// Update updates a branch's name and description
func (r *PostgresBranchRepository) Update(ctx context.Context, branch *models.Branch) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Branches)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, branch.Name, branch.Description, branch.UpdatedAt, branch.ID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			conflict := &domain.ConflictError{
				Message:      fmt.Sprintf("branch name '%s' already exists", branch.Name),
				ResourceType: "branch",
			}
			if id, getErr := r.getExistingBranchID(ctx, branch.ProjectID, branch.Name); getErr == nil {
				conflict.ResourceID = id
			}
			return conflict
		}
		return fmt.Errorf("update branch: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("branch %s: %w", branch.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a branch; posts and media cascade through foreign keys
func (r *PostgresBranchRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Branches)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("branch %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *PostgresBranchRepository) queryBranches(ctx context.Context, query string, args ...any) ([]models.Branch, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	branches := []models.Branch{}
	for rows.Next() {
		var branch models.Branch
		if err := scanBranch(rows, &branch); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		branches = append(branches, branch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate branches: %w", err)
	}

	return branches, nil
}

// getExistingBranchID looks up a branch by project and name
func (r *PostgresBranchRepository) getExistingBranchID(ctx context.Context, projectID, name string) (string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE project_id = $1 AND name = $2`, r.tables.Branches)

	var id string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID, name).Scan(&id); err != nil {
		return "", fmt.Errorf("get existing branch ID: %w", err)
	}

	return id, nil
}
