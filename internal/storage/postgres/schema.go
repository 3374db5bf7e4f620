package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	firebase_uid  TEXT NOT NULL UNIQUE,
	email         TEXT,
	display_name  TEXT,
	role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
	last_login_at TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS projects (
	id                UUID PRIMARY KEY,
	user_firebase_uid TEXT NOT NULL REFERENCES users(firebase_uid),
	title             TEXT NOT NULL,
	description       TEXT NOT NULL,
	file_key          TEXT NOT NULL,
	file_name         TEXT NOT NULL,
	file_size         BIGINT NOT NULL DEFAULT 0,
	content_type      TEXT NOT NULL DEFAULT 'application/octet-stream',
	status            TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
	reviewed_at       TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS projects_owner_status_idx ON projects (user_firebase_uid, status, created_at)`,
	`CREATE INDEX IF NOT EXISTS projects_status_idx ON projects (status, created_at)`,
	`CREATE TABLE IF NOT EXISTS notifications (
	id                UUID PRIMARY KEY,
	user_firebase_uid TEXT NOT NULL REFERENCES users(firebase_uid),
	project_id        UUID REFERENCES projects(id),
	title             TEXT NOT NULL,
	description       TEXT NOT NULL,
	status            TEXT NOT NULL,
	read_at           TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS notifications_owner_created_idx ON notifications (user_firebase_uid, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS notifications_read_at_idx ON notifications (read_at) WHERE read_at IS NOT NULL`,
}

// Migrate creates the tables if they do not exist yet. It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}
