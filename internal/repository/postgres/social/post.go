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

// PostgresPostRepository implements the PostRepository interface
type PostgresPostRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewPostRepository creates a new post repository
func NewPostRepository(config *postgres.RepositoryConfig) socialRepo.PostRepository {
	return &PostgresPostRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const postColumns = `id, title, content, created_at, updated_at, branch_id, author_id`

func scanPost(row interface{ Scan(...any) error }, p *models.Post) error {
	return row.Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt, &p.BranchID, &p.AuthorID)
}

// Create creates a post
func (r *PostgresPostRepository) Create(ctx context.Context, post *models.Post) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, content, created_at, branch_id, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		post.Title,
		post.Content,
		post.CreatedAt,
		post.BranchID,
		post.AuthorID,
	).Scan(&post.ID, &post.CreatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("post parent: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by ID
func (r *PostgresPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, postColumns, r.tables.Posts)

	var post models.Post
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanPost(executor.QueryRow(ctx, query, id), &post); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

// ListByBranch lists posts, newest first
func (r *PostgresPostRepository) ListByBranch(ctx context.Context, branchID string) ([]models.Post, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE branch_id = $1
		ORDER BY created_at DESC, id ASC
	`, postColumns, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var post models.Post
		if err := scanPost(rows, &post); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

// ListIDsByBranches returns the ids of all posts in the given branches
func (r *PostgresPostRepository) ListIDsByBranches(ctx context.Context, branchIDs []string) ([]string, error) {
	if len(branchIDs) == 0 {
		return []string{}, nil
	}

	query := fmt.Sprintf(`SELECT id FROM %s WHERE branch_id = ANY($1::uuid[])`, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, branchIDs)
	if err != nil {
		return nil, fmt.Errorf("list post ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan post id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post ids: %w", err)
	}

	return ids, nil
}

// Update updates title, content and updated_at
func (r *PostgresPostRepository) Update(ctx context.Context, post *models.Post) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, content = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, post.Title, post.Content, post.UpdatedAt, post.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("post %s: %w", post.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a post; media cascade through the foreign key
func (r *PostgresPostRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
