// internal/repository/postgres/schema.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// schema is applied idempotently at startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username   TEXT PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name  TEXT NOT NULL DEFAULT '',
		group_id   TEXT NOT NULL DEFAULT '',
		color      TEXT NOT NULL DEFAULT '#0079ff'
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		id      TEXT PRIMARY KEY,
		name    TEXT NOT NULL,
		members TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS list_items (
		id           BIGSERIAL PRIMARY KEY,
		owner        TEXT NOT NULL REFERENCES users(username),
		item         TEXT NOT NULL,
		priority     INT NOT NULL CHECK (priority BETWEEN 1 AND 3),
		added        TIMESTAMPTZ NOT NULL,
		fulfilled    BOOLEAN NOT NULL DEFAULT FALSE,
		fulfilled_by TEXT,
		fulfilled_at TIMESTAMPTZ,
		favor_id     BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS list_items_owner_idx ON list_items (owner)`,
	`CREATE TABLE IF NOT EXISTS favors (
		id            BIGSERIAL PRIMARY KEY,
		item_id       BIGINT NOT NULL,
		item          TEXT NOT NULL,
		fulfilled_at  TIMESTAMPTZ NOT NULL,
		for_user      TEXT NOT NULL,
		by_user       TEXT NOT NULL,
		reimbursed    BOOLEAN NOT NULL DEFAULT FALSE,
		reimbursed_at TIMESTAMPTZ,
		amount        NUMERIC(12,2) NOT NULL CHECK (amount > 0)
	)`,
	`CREATE INDEX IF NOT EXISTS favors_for_user_idx ON favors (for_user)`,
	`CREATE INDEX IF NOT EXISTS favors_by_user_idx ON favors (by_user)`,
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505), used to map duplicate keys to util.ErrConflict.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
