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

// PostgresFollowRepository implements the FollowRepository interface
type PostgresFollowRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(config *postgres.RepositoryConfig) socialRepo.FollowRepository {
	return &PostgresFollowRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts the edge if absent and loads the stored row.
// The insert and the read of a pre-existing row happen in one statement; if a
// concurrent insert committed after our snapshot, the row is re-read once.
func (r *PostgresFollowRepository) Create(ctx context.Context, follow *models.Follow) (bool, error) {
	query := fmt.Sprintf(`
		WITH ins AS (
			INSERT INTO %[1]s (follower_id, followed_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (follower_id, followed_id) DO NOTHING
			RETURNING id, created_at
		)
		SELECT id, created_at, TRUE FROM ins
		UNION ALL
		SELECT id, created_at, FALSE FROM %[1]s
		WHERE follower_id = $1 AND followed_id = $2 AND NOT EXISTS (SELECT 1 FROM ins)
	`, r.tables.Follows)

	var created bool
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		follow.FollowerID,
		follow.FollowedID,
		follow.CreatedAt,
	).Scan(&follow.ID, &follow.CreatedAt, &created)

	if err != nil {
		switch {
		case postgres.IsPgNoRowsError(err):
			existing, getErr := r.Get(ctx, follow.FollowerID, follow.FollowedID)
			if getErr != nil {
				return false, getErr
			}
			*follow = *existing
			return false, nil
		case postgres.IsPgForeignKeyError(err):
			return false, fmt.Errorf("follow %s -> %s: user %w", follow.FollowerID, follow.FollowedID, domain.ErrNotFound)
		case postgres.IsPgCheckError(err):
			return false, fmt.Errorf("%w: users cannot follow themselves", domain.ErrValidation)
		}
		return false, fmt.Errorf("create follow: %w", err)
	}

	return created, nil
}

// Delete removes the edge
func (r *PostgresFollowRepository) Delete(ctx context.Context, followerID, followedID string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE follower_id = $1 AND followed_id = $2`, r.tables.Follows)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Get retrieves a single edge
func (r *PostgresFollowRepository) Get(ctx context.Context, followerID, followedID string) (*models.Follow, error) {
	query := fmt.Sprintf(`
		SELECT id, follower_id, followed_id, created_at
		FROM %s
		WHERE follower_id = $1 AND followed_id = $2
	`, r.tables.Follows)

	var f models.Follow
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, followerID, followedID).Scan(
		&f.ID,
		&f.FollowerID,
		&f.FollowedID,
		&f.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("follow %s -> %s: %w", followerID, followedID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get follow: %w", err)
	}

	return &f, nil
}

// ListFollowers lists edges pointing at userID, oldest first
func (r *PostgresFollowRepository) ListFollowers(ctx context.Context, userID string) ([]models.Follow, error) {
	return r.list(ctx, "followed_id", userID)
}

// ListFollowing lists edges starting at userID, oldest first
func (r *PostgresFollowRepository) ListFollowing(ctx context.Context, userID string) ([]models.Follow, error) {
	return r.list(ctx, "follower_id", userID)
}

func (r *PostgresFollowRepository) list(ctx context.Context, column, userID string) ([]models.Follow, error) {
	query := fmt.Sprintf(`
		SELECT id, follower_id, followed_id, created_at
		FROM %s
		WHERE %s = $1
		ORDER BY created_at ASC, id ASC
	`, r.tables.Follows, column)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	defer rows.Close()

	follows := []models.Follow{}
	for rows.Next() {
		var f models.Follow
		if err := rows.Scan(&f.ID, &f.FollowerID, &f.FollowedID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan follow: %w", err)
		}
		follows = append(follows, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follows: %w", err)
	}

	return follows, nil
}

// Counts returns follower/following totals
func (r *PostgresFollowRepository) Counts(ctx context.Context, userID string) (*models.FollowCounts, error) {
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE followed_id = $1),
			COUNT(*) FILTER (WHERE follower_id = $1)
		FROM %s
		WHERE followed_id = $1 OR follower_id = $1
	`, r.tables.Follows)

	counts := models.FollowCounts{UserID: userID}
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID).Scan(&counts.Followers, &counts.Following); err != nil {
		return nil, fmt.Errorf("count follows: %w", err)
	}

	return &counts, nil
}
