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

// PostgresPermissionsRepository implements the PermissionsRepository interface.
// The allow-list lives in a join table keyed by (permission_id, user_id).
type PostgresPermissionsRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewPermissionsRepository creates a new permissions repository
func NewPermissionsRepository(config *postgres.RepositoryConfig) socialRepo.PermissionsRepository {
	return &PostgresPermissionsRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get loads the record with its allow-list, or nil when none exists
func (r *PostgresPermissionsRepository) Get(ctx context.Context, target models.Target) (*models.Permissions, error) {
	query := fmt.Sprintf(`
		SELECT p.id, p.target_kind, p.target_id, p.private,
			p.allow_collaborate, p.allow_branch, p.allow_share,
			p.created_at, p.updated_at,
			COALESCE(
				ARRAY(SELECT a.user_id::text FROM %[2]s a WHERE a.permission_id = p.id ORDER BY a.user_id),
				'{}'
			)
		FROM %[1]s p
		WHERE p.target_kind = $1 AND p.target_id = $2
	`, r.tables.Permissions, r.tables.PermissionAllowedUsers)

	var perms models.Permissions
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, string(target.Kind), target.ID).Scan(
		&perms.ID,
		&perms.TargetKind,
		&perms.TargetID,
		&perms.Private,
		&perms.AllowCollaborate,
		&perms.AllowBranch,
		&perms.AllowShare,
		&perms.CreatedAt,
		&perms.UpdatedAt,
		&perms.AllowedUsers,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get permissions: %w", err)
	}

	return &perms, nil
}

// Upsert writes the 1:1 record and replaces its allow-list
func (r *PostgresPermissionsRepository) Upsert(ctx context.Context, perms *models.Permissions) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	upsertQuery := fmt.Sprintf(`
		INSERT INTO %s (target_kind, target_id, private, allow_collaborate, allow_branch, allow_share, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (target_kind, target_id) DO UPDATE SET
			private = EXCLUDED.private,
			allow_collaborate = EXCLUDED.allow_collaborate,
			allow_branch = EXCLUDED.allow_branch,
			allow_share = EXCLUDED.allow_share,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, r.tables.Permissions)

	err := executor.QueryRow(ctx, upsertQuery,
		string(perms.TargetKind),
		perms.TargetID,
		perms.Private,
		perms.AllowCollaborate,
		perms.AllowBranch,
		perms.AllowShare,
		perms.CreatedAt,
	).Scan(&perms.ID, &perms.CreatedAt, &perms.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert permissions: %w", err)
	}

	clearQuery := fmt.Sprintf(`DELETE FROM %s WHERE permission_id = $1`, r.tables.PermissionAllowedUsers)
	if _, err := executor.Exec(ctx, clearQuery, perms.ID); err != nil {
		return fmt.Errorf("clear allowed users: %w", err)
	}

	if len(perms.AllowedUsers) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (permission_id, user_id)
		SELECT $1, u FROM unnest($2::uuid[]) AS u
		ON CONFLICT DO NOTHING
	`, r.tables.PermissionAllowedUsers)
	if _, err := executor.Exec(ctx, insertQuery, perms.ID, perms.AllowedUsers); err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("%w: allowed_users references an unknown user", domain.ErrValidation)
		}
		return fmt.Errorf("insert allowed users: %w", err)
	}

	return nil
}

// Delete removes the record; allow-list rows cascade
func (r *PostgresPermissionsRepository) Delete(ctx context.Context, target models.Target) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE target_kind = $1 AND target_id = $2`, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, string(target.Kind), target.ID)
	if err != nil {
		return false, fmt.Errorf("delete permissions: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// DeleteByTargets removes the records of every listed target
func (r *PostgresPermissionsRepository) DeleteByTargets(ctx context.Context, kind models.TargetKind, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE target_kind = $1 AND target_id = ANY($2::uuid[])`, r.tables.Permissions)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, string(kind), ids); err != nil {
		return fmt.Errorf("delete permissions of %s targets: %w", kind, err)
	}

	return nil
}
