// Package postgres is the production SQL store backend.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/streakedin/streakedin/internal/store/sqlstore"
)

// Dialect is the sqlstore dialect for pgx.
var Dialect = sqlstore.Dialect{
	Name:                 "postgres",
	NumberedPlaceholders: true,
	IsUniqueViolation: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == "23505"
	},
}

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens dsn, bootstraps the schema and returns a ready store.
func New(ctx context.Context, dsn string) (*sqlstore.Store, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := Bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sqlstore.New(db, Dialect), nil
}

// NewWithDB wraps an already-bootstrapped database.
func NewWithDB(db *sql.DB) *sqlstore.Store { return sqlstore.New(db, Dialect) }

// Bootstrap creates tables and indexes if they do not exist.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        display_name TEXT NOT NULL DEFAULT '',
        theme TEXT NOT NULL DEFAULT 'light',
        created_at BIGINT NOT NULL,
        updated_at BIGINT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS goals (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        progress INTEGER NOT NULL DEFAULT 0,
        deadline TEXT NOT NULL DEFAULT '',
        category TEXT NOT NULL DEFAULT '',
        ai_suggested BOOLEAN NOT NULL DEFAULT FALSE,
        status TEXT NOT NULL DEFAULT 'active',
        created_at BIGINT NOT NULL,
        updated_at BIGINT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS tasks (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        completed BOOLEAN NOT NULL DEFAULT FALSE,
        priority TEXT NOT NULL DEFAULT 'medium',
        due_date TEXT,
        goal_id TEXT,
        created_at BIGINT NOT NULL,
        updated_at BIGINT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS reminders (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        type TEXT NOT NULL DEFAULT 'browser',
        frequency TEXT NOT NULL DEFAULT 'once',
        enabled BOOLEAN NOT NULL DEFAULT TRUE,
        next_trigger BIGINT,
        created_at BIGINT NOT NULL,
        updated_at BIGINT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(enabled, next_trigger)`,
	`CREATE TABLE IF NOT EXISTS chat_sessions (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        title TEXT NOT NULL,
        last_message TEXT NOT NULL DEFAULT '',
        message_count INTEGER NOT NULL DEFAULT 0,
        created_at BIGINT NOT NULL,
        updated_at BIGINT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_chat_sessions_user ON chat_sessions(user_id, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
        id TEXT PRIMARY KEY,
        chat_session_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        role TEXT NOT NULL,
        content TEXT NOT NULL,
        ts BIGINT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(user_id, chat_session_id, ts)`,
	`CREATE TABLE IF NOT EXISTS analytics (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        day TEXT NOT NULL,
        tasks_completed INTEGER NOT NULL DEFAULT 0,
        goals_progressed INTEGER NOT NULL DEFAULT 0,
        productivity_score INTEGER NOT NULL DEFAULT 0,
        created_at BIGINT NOT NULL,
        updated_at BIGINT NOT NULL,
        UNIQUE (user_id, day)
    )`,
}
