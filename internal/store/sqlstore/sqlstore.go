// Package sqlstore implements store.Store over database/sql. The sqlite and
// postgres drivers share it and differ only in their Dialect and schema.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/streakedin/streakedin/internal/store"
)

// Dialect captures the differences between SQL engines.
type Dialect struct {
	Name string
	// NumberedPlaceholders rewrites ? into $1, $2, ...
	NumberedPlaceholders bool
	// IsUniqueViolation reports whether err is a unique-constraint failure.
	IsUniqueViolation func(error) bool
}

// Store is a store.Store backed by *sql.DB.
type Store struct {
	db *sql.DB
	d  Dialect
}

// New wraps an open database. The schema must already exist.
func New(db *sql.DB, d Dialect) *Store { return &Store{db: db, d: d} }

func (s *Store) Users() store.Users               { return &users{s} }
func (s *Store) Goals() store.Goals               { return &goals{s} }
func (s *Store) Tasks() store.Tasks               { return &tasks{s} }
func (s *Store) Reminders() store.Reminders       { return &reminders{s} }
func (s *Store) ChatSessions() store.ChatSessions { return &chatSessions{s} }
func (s *Store) ChatMessages() store.ChatMessages { return &chatMessages{s} }
func (s *Store) Analytics() store.Analytics       { return &analytics{s} }

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// HealthPing implements health.HealthPinger.
func (s *Store) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

// rebind converts ? placeholders for engines that number them.
func (s *Store) rebind(q string) string {
	if !s.d.NumberedPlaceholders {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, q sqlExecer, query string, args ...any) (sql.Result, error) {
	res, err := q.ExecContext(ctx, s.rebind(query), args...)
	return res, s.mapErr(err)
}

func (s *Store) queryRow(ctx context.Context, q sqlExecer, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, q sqlExecer, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if s.d.IsUniqueViolation != nil && s.d.IsUniqueViolation(err) {
		return store.ErrConflict
	}
	return err
}

// inTx runs fn in a transaction, committing when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// sqlExecer is satisfied by *sql.DB and *sql.Tx.
type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Timestamps are stored as Unix nanoseconds.
func ts(t time.Time) int64 { return t.UTC().UnixNano() }

func fromTS(n int64) time.Time { return time.Unix(0, n).UTC() }

func nullTS(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: ts(*t), Valid: true}
}

func fromNullTS(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromTS(n.Int64)
	return &t
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}
