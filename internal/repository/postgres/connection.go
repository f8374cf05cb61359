package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Prefix                 string
	Users                  string
	Follows                string
	Projects               string
	Branches               string
	Posts                  string
	PostMedia              string
	Permissions            string
	PermissionAllowedUsers string
	Interactions           string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Prefix:                 prefix,
		Users:                  fmt.Sprintf("%susers", prefix),
		Follows:                fmt.Sprintf("%sfollows", prefix),
		Projects:               fmt.Sprintf("%sprojects", prefix),
		Branches:               fmt.Sprintf("%sbranches", prefix),
		Posts:                  fmt.Sprintf("%sposts", prefix),
		PostMedia:              fmt.Sprintf("%spost_media", prefix),
		Permissions:            fmt.Sprintf("%spermissions", prefix),
		PermissionAllowedUsers: fmt.Sprintf("%spermission_allowed_users", prefix),
		Interactions:           fmt.Sprintf("%sinteractions", prefix),
	}
}

// All returns every table in dependency order (children first), for drop/clear.
func (t *TableNames) All() []string {
	return []string{
		t.Interactions,
		t.PermissionAllowedUsers,
		t.Permissions,
		t.PostMedia,
		t.Posts,
		t.Branches,
		t.Projects,
		t.Follows,
		t.Users,
	}
}

// Index returns a prefixed index/constraint name
func (t *TableNames) Index(name string) string {
	return t.Prefix + name
}

// CreateConnectionPool creates a new pgx connection pool.
//
// Port 6543 is treated as a transaction-mode PgBouncer, which cannot hold
// prepared statements; for it the pool switches to QueryExecModeCacheDescribe
// unless default_query_exec_mode was set explicitly in the connection string.
func CreateConnectionPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = maxConns
	config.MinConns = minConns

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
