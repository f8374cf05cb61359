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

// PostgresInteractionRepository implements the InteractionRepository interface
// on a single table keyed by (target_kind, target_id, user_id, type)
type PostgresInteractionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(config *postgres.RepositoryConfig) socialRepo.InteractionRepository {
	return &PostgresInteractionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// LockTarget takes a FOR SHARE lock on the target row
func (r *PostgresInteractionRepository) LockTarget(ctx context.Context, target models.Target) error {
	var table string
	switch target.Kind {
	case models.TargetProject:
		table = r.tables.Projects
	case models.TargetBranch:
		table = r.tables.Branches
	case models.TargetPost:
		table = r.tables.Posts
	default:
		return fmt.Errorf("%w: unknown target kind %q", domain.ErrValidation, target.Kind)
	}

	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR SHARE`, table)

	var id string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, target.ID).Scan(&id); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("%s %s: %w", target.Kind, target.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("lock %s: %w", target, err)
	}

	return nil
}

// Add inserts the row if absent and loads the stored row
func (r *PostgresInteractionRepository) Add(ctx context.Context, interaction *models.Interaction) (bool, error) {
	query := fmt.Sprintf(`
		WITH ins AS (
			INSERT INTO %[1]s (type, created_at, target_kind, target_id, user_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (target_kind, target_id, user_id, type) DO NOTHING
			RETURNING id, created_at
		)
		SELECT id, created_at, TRUE FROM ins
		UNION ALL
		SELECT id, created_at, FALSE FROM %[1]s
		WHERE type = $1 AND target_kind = $3 AND target_id = $4 AND user_id = $5
			AND NOT EXISTS (SELECT 1 FROM ins)
	`, r.tables.Interactions)

	var created bool
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		string(interaction.Type),
		interaction.CreatedAt,
		string(interaction.TargetKind),
		interaction.TargetID,
		interaction.UserID,
	).Scan(&interaction.ID, &interaction.CreatedAt, &created)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			// Inserted concurrently after our snapshot; read it back
			return false, r.reload(ctx, interaction)
		}
		if postgres.IsPgForeignKeyError(err) {
			return false, fmt.Errorf("user %s: %w", interaction.UserID, domain.ErrNotFound)
		}
		return false, fmt.Errorf("add interaction: %w", err)
	}

	return created, nil
}

func (r *PostgresInteractionRepository) reload(ctx context.Context, interaction *models.Interaction) error {
	query := fmt.Sprintf(`
		SELECT id, created_at FROM %s
		WHERE type = $1 AND target_kind = $2 AND target_id = $3 AND user_id = $4
	`, r.tables.Interactions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		string(interaction.Type),
		string(interaction.TargetKind),
		interaction.TargetID,
		interaction.UserID,
	).Scan(&interaction.ID, &interaction.CreatedAt)
	if err != nil {
		return fmt.Errorf("reload interaction: %w", err)
	}
	return nil
}

// Remove deletes the matching row
func (r *PostgresInteractionRepository) Remove(ctx context.Context, target models.Target, userID string, t models.InteractionType) (bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE target_kind = $1 AND target_id = $2 AND user_id = $3 AND type = $4
	`, r.tables.Interactions)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, string(target.Kind), target.ID, userID, string(t))
	if err != nil {
		return false, fmt.Errorf("remove interaction: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Count returns the number of rows of one type on a target
func (r *PostgresInteractionRepository) Count(ctx context.Context, target models.Target, t models.InteractionType) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE target_kind = $1 AND target_id = $2 AND type = $3
	`, r.tables.Interactions)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, string(target.Kind), target.ID, string(t)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}

	return count, nil
}

// CountAll returns counts per type
func (r *PostgresInteractionRepository) CountAll(ctx context.Context, target models.Target) (map[models.InteractionType]int, error) {
	query := fmt.Sprintf(`
		SELECT type, COUNT(*) FROM %s
		WHERE target_kind = $1 AND target_id = $2
		GROUP BY type
	`, r.tables.Interactions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, string(target.Kind), target.ID)
	if err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.InteractionType]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scan interaction count: %w", err)
		}
		counts[models.InteractionType(t)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interaction counts: %w", err)
	}

	return counts, nil
}

// ListTypesByUser returns the types userID has recorded on target
func (r *PostgresInteractionRepository) ListTypesByUser(ctx context.Context, target models.Target, userID string) ([]models.InteractionType, error) {
	query := fmt.Sprintf(`
		SELECT type FROM %s
		WHERE target_kind = $1 AND target_id = $2 AND user_id = $3
		ORDER BY type
	`, r.tables.Interactions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, string(target.Kind), target.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("list interaction types: %w", err)
	}
	defer rows.Close()

	types := []models.InteractionType{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan interaction type: %w", err)
		}
		types = append(types, models.InteractionType(t))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interaction types: %w", err)
	}

	return types, nil
}

// ListByUser lists a user's interactions of one type, newest first
func (r *PostgresInteractionRepository) ListByUser(ctx context.Context, userID string, t models.InteractionType, limit int) ([]models.Interaction, error) {
	query := fmt.Sprintf(`
		SELECT id, type, created_at, target_kind, target_id, user_id
		FROM %s
		WHERE user_id = $1 AND type = $2
		ORDER BY created_at DESC, id ASC
	`, r.tables.Interactions)
	args := []any{userID, string(t)}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list user interactions: %w", err)
	}
	defer rows.Close()

	interactions := []models.Interaction{}
	for rows.Next() {
		var i models.Interaction
		var typ, kind string
		if err := rows.Scan(&i.ID, &typ, &i.CreatedAt, &kind, &i.TargetID, &i.UserID); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		i.Type = models.InteractionType(typ)
		i.TargetKind = models.TargetKind(kind)
		interactions = append(interactions, i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}

	return interactions, nil
}

// DeleteByTargets removes every row for the listed targets
func (r *PostgresInteractionRepository) DeleteByTargets(ctx context.Context, kind models.TargetKind, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE target_kind = $1 AND target_id = ANY($2::uuid[])`, r.tables.Interactions)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, string(kind), ids); err != nil {
		return fmt.Errorf("delete interactions of %s targets: %w", kind, err)
	}

	return nil
}
