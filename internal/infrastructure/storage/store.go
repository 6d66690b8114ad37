package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"PBNPublisher/internal/config"
	"PBNPublisher/internal/ports"
)

// Store persists the publishing dashboard in SQLite or Postgres.
type Store struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	driver string
	box    ports.SecretBox
	now    func() time.Time
}

var (
	_ ports.ArticleRepository  = (*Store)(nil)
	_ ports.BatchRepository    = (*Store)(nil)
	_ ports.WebsiteRepository  = (*Store)(nil)
	_ ports.UserRepository     = (*Store)(nil)
	_ ports.SessionRepository  = (*Store)(nil)
	_ ports.ActivityRepository = (*Store)(nil)
)

// Open connects to the configured database and applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, box ports.SecretBox) (*Store, error) {
	if box == nil {
		return nil, errors.New("secret box is required")
	}

	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = openSQLite(cfg.DSN)
	case config.DriverPostgres:
		db, err = sql.Open("postgres", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := newStore(db, cfg.Driver, box)
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func newStore(db *sql.DB, driver string, box ports.SecretBox) *Store {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == config.DriverPostgres {
		placeholder = sq.Dollar
	}
	return &Store{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(placeholder),
		driver: driver,
		box:    box,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func openSQLite(dsn string) (*sql.DB, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps per-connection pragmas in force and serialises writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	idColumn, intType := "INTEGER PRIMARY KEY AUTOINCREMENT", "INTEGER"
	if s.driver == config.DriverPostgres {
		idColumn, intType = "BIGSERIAL PRIMARY KEY", "BIGINT"
	}
	ddl := fmt.Sprintf(schema, idColumn, intType)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id %[1]s,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    name TEXT,
    created_at %[2]s NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    user_id %[2]s NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    expires_at %[2]s NOT NULL,
    created_at %[2]s NOT NULL
);

CREATE TABLE IF NOT EXISTS websites (
    id %[1]s,
    name TEXT NOT NULL,
    url TEXT NOT NULL,
    username TEXT NOT NULL,
    password TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    user_id %[2]s NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at %[2]s NOT NULL
);

CREATE TABLE IF NOT EXISTS upload_batches (
    id %[1]s,
    file_name TEXT NOT NULL,
    file_size %[2]s,
    total_articles %[2]s,
    processed_articles %[2]s NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'processing',
    user_id %[2]s NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at %[2]s NOT NULL
);

CREATE TABLE IF NOT EXISTS articles (
    id %[1]s,
    original_title TEXT NOT NULL,
    original_content TEXT NOT NULL,
    spun_title TEXT,
    spun_content TEXT,
    keywords TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending',
    website_id %[2]s REFERENCES websites(id) ON DELETE SET NULL,
    batch_id %[2]s REFERENCES upload_batches(id) ON DELETE CASCADE,
    live_url TEXT,
    published_at %[2]s,
    publish_attempts %[2]s NOT NULL DEFAULT 0,
    error_log TEXT,
    publish_started_at %[2]s,
    created_at %[2]s NOT NULL
);

CREATE TABLE IF NOT EXISTS activity_logs (
    id %[1]s,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    details TEXT,
    user_id %[2]s REFERENCES users(id) ON DELETE CASCADE,
    created_at %[2]s NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_websites_user ON websites(user_id);
CREATE INDEX IF NOT EXISTS idx_articles_website ON articles(website_id);
CREATE INDEX IF NOT EXISTS idx_articles_batch ON articles(batch_id);
CREATE INDEX IF NOT EXISTS idx_batches_user ON upload_batches(user_id);
CREATE INDEX IF NOT EXISTS idx_activity_user ON activity_logs(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`

func isUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func unixTime(t time.Time) int64 {
	return t.UTC().Unix()
}

func fromUnix(v int64) time.Time {
	return time.Unix(v, 0).UTC()
}

func nullableTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromUnix(v.Int64)
	return &t
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullableInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertReturningID(ctx context.Context, q queryer, builder sq.InsertBuilder) (int64, error) {
	query, args, err := builder.Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}
	var id int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func execAffected(ctx context.Context, q queryer, builder sq.Sqlizer) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build statement: %w", err)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
