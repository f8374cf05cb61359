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

// PostgresMediaRepository implements the MediaRepository interface
type PostgresMediaRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(config *postgres.RepositoryConfig) socialRepo.MediaRepository {
	return &PostgresMediaRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create attaches a media row to a post
func (r *PostgresMediaRepository) Create(ctx context.Context, media *models.PostMedia) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, url, post_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.PostMedia)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, media.Name, media.URL, media.PostID, media.CreatedAt).
		Scan(&media.ID, &media.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("post %s: %w", media.PostID, domain.ErrNotFound)
		}
		return fmt.Errorf("create media: %w", err)
	}

	return nil
}

// GetByID retrieves a media row
func (r *PostgresMediaRepository) GetByID(ctx context.Context, id string) (*models.PostMedia, error) {
	query := fmt.Sprintf(`
		SELECT id, name, url, post_id, created_at FROM %s WHERE id = $1
	`, r.tables.PostMedia)

	var m models.PostMedia
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.URL, &m.PostID, &m.CreatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("media %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get media: %w", err)
	}

	return &m, nil
}

// ListByPost lists media in insertion order
func (r *PostgresMediaRepository) ListByPost(ctx context.Context, postID string) ([]models.PostMedia, error) {
	query := fmt.Sprintf(`
		SELECT id, name, url, post_id, created_at
		FROM %s
		WHERE post_id = $1
		ORDER BY created_at ASC, id ASC
	`, r.tables.PostMedia)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	media := []models.PostMedia{}
	for rows.Next() {
		var m models.PostMedia
		if err := rows.Scan(&m.ID, &m.Name, &m.URL, &m.PostID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		media = append(media, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media: %w", err)
	}

	return media, nil
}

// CountByPost counts media attached to a post
func (r *PostgresMediaRepository) CountByPost(ctx context.Context, postID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE post_id = $1`, r.tables.PostMedia)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}

	return count, nil
}

// Delete removes a media row
func (r *PostgresMediaRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.PostMedia)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("media %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
