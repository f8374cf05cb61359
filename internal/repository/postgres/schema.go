package postgres

import (
	"context"
	"fmt"
	"strings"
)

// schemaStatements returns the DDL for every table, parents first.
// All statements are idempotent (IF NOT EXISTS).
func schemaStatements(t *TableNames) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,

		`CREATE TABLE IF NOT EXISTS ` + t.Users + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT,
			email TEXT NOT NULL,
			email_verified TIMESTAMPTZ,
			image TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT ` + t.Index("users_email_unique") + ` UNIQUE (email)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Follows + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			follower_id UUID NOT NULL REFERENCES ` + t.Users + `(id) ON DELETE CASCADE,
			followed_id UUID NOT NULL REFERENCES ` + t.Users + `(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT ` + t.Index("follows_pair_unique") + ` UNIQUE (follower_id, followed_id),
			CONSTRAINT ` + t.Index("follows_no_self") + ` CHECK (follower_id <> followed_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Projects + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			picture TEXT,
			name TEXT NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ,
			author_id UUID NOT NULL REFERENCES ` + t.Users + `(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Branches + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			description TEXT,
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ,
			project_id UUID NOT NULL REFERENCES ` + t.Projects + `(id) ON DELETE CASCADE,
			author_id UUID NOT NULL REFERENCES ` + t.Users + `(id) ON DELETE CASCADE,
			forked_from_id UUID REFERENCES ` + t.Branches + `(id) ON DELETE SET NULL,
			CONSTRAINT ` + t.Index("branches_name_unique") + ` UNIQUE (project_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Posts + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title TEXT NOT NULL,
			content TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ,
			branch_id UUID NOT NULL REFERENCES ` + t.Branches + `(id) ON DELETE CASCADE,
			author_id UUID NOT NULL REFERENCES ` + t.Users + `(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.PostMedia + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			url TEXT NOT NULL,
			post_id UUID NOT NULL REFERENCES ` + t.Posts + `(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Permissions + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			target_kind TEXT NOT NULL CHECK (target_kind IN ('project', 'branch')),
			target_id UUID NOT NULL,
			private BOOLEAN NOT NULL DEFAULT FALSE,
			allow_collaborate BOOLEAN NOT NULL DEFAULT FALSE,
			allow_branch BOOLEAN NOT NULL DEFAULT FALSE,
			allow_share BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ,
			CONSTRAINT ` + t.Index("permissions_target_unique") + ` UNIQUE (target_kind, target_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.PermissionAllowedUsers + ` (
			permission_id UUID NOT NULL REFERENCES ` + t.Permissions + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES ` + t.Users + `(id) ON DELETE CASCADE,
			PRIMARY KEY (permission_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + t.Interactions + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			type TEXT NOT NULL CHECK (type IN ('LIKE', 'SHARE', 'BOOKMARK', 'REPORT', 'HIDE')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			target_kind TEXT NOT NULL CHECK (target_kind IN ('post', 'branch', 'project')),
			target_id UUID NOT NULL,
			user_id UUID NOT NULL REFERENCES ` + t.Users + `(id) ON DELETE CASCADE,
			CONSTRAINT ` + t.Index("interactions_entry_unique") + ` UNIQUE (target_kind, target_id, user_id, type)
		)`,

		// At most one default branch per project
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + t.Index("branches_default_unique") + ` ON ` + t.Branches + `(project_id) WHERE is_default`,
		`CREATE INDEX IF NOT EXISTS ` + t.Index("follows_followed") + ` ON ` + t.Follows + `(followed_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS ` + t.Index("projects_author") + ` ON ` + t.Projects + `(author_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS ` + t.Index("posts_branch") + ` ON ` + t.Posts + `(branch_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS ` + t.Index("post_media_post") + ` ON ` + t.PostMedia + `(post_id)`,
		`CREATE INDEX IF NOT EXISTS ` + t.Index("interactions_user_type") + ` ON ` + t.Interactions + `(user_id, type, created_at DESC)`,
	}
}

// Migrate creates every table and index if missing
func Migrate(ctx context.Context, db DBTX, tables *TableNames) error {
	for _, stmt := range schemaStatements(tables) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// DropAll drops every table (children first)
func DropAll(ctx context.Context, db DBTX, tables *TableNames) error {
	for _, table := range tables.All() {
		if _, err := db.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearAll deletes all rows but keeps the schema
func ClearAll(ctx context.Context, db DBTX, tables *TableNames) error {
	_, err := db.Exec(ctx, "TRUNCATE "+strings.Join(tables.All(), ", ")+" CASCADE")
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
