package social

import (
	"context"
	"fmt"
	"strings"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialRepo "arbor/internal/domain/repositories/social"
	"arbor/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *postgres.RepositoryConfig) socialRepo.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const userColumns = `id, name, email, email_verified, image, created_at`

func scanUser(row interface{ Scan(...any) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.EmailVerified, &u.Image, &u.CreatedAt)
}

// Create inserts a user; the database generates the id when it is empty
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, email_verified, image, created_at)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.EmailVerified,
		user.Image,
		user.CreatedAt,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			if postgres.ConstraintMatches(err, "users_email_unique") {
				conflict := &domain.ConflictError{
					Message:      fmt.Sprintf("email '%s' is already registered", user.Email),
					ResourceType: "user",
				}
				if existing, getErr := r.GetByEmail(ctx, user.Email); getErr == nil {
					conflict.ResourceID = existing.ID
				}
				return conflict
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("user %s already exists", user.ID),
				ResourceType: "user",
				ResourceID:   user.ID,
			}
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, r.tables.Users)

	var user models.User
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanUser(executor.QueryRow(ctx, query, id), &user); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE email = $1`, userColumns, r.tables.Users)

	var user models.User
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanUser(executor.QueryRow(ctx, query, strings.ToLower(email)), &user); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("user with email %s: %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

// Update updates profile fields
func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, image = $2, email_verified = $3
		WHERE id = $4
	`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, user.Name, user.Image, user.EmailVerified, user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}

	return nil
}

// FindMissing returns the ids that do not reference existing users
func (r *PostgresUserRepository) FindMissing(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	query := fmt.Sprintf(`
		SELECT wanted.id
		FROM unnest($1::uuid[]) AS wanted(id)
		LEFT JOIN %s u ON u.id = wanted.id
		WHERE u.id IS NULL
	`, r.tables.Users)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("find missing users: %w", err)
	}
	defer rows.Close()

	missing := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		missing = append(missing, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}

	return missing, nil
}
