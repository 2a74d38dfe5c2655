package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - no database
// 1 - exchanges table
// 2 - chat_path index
const currentSchemaVersion = 2

// FileName is the ledger database inside the configuration directory.
const FileName = "history.db"

// Store records completed exchanges in SQLite.
type Store struct {
	db  *sql.DB
	ids IDGenerator
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithClock replaces the wall clock used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates or opens the ledger at path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//
// Opening an existing ledger is safe; the schema is only migrated forward.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db, ids: UUIDv7Generator{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return runMigrations(db)
}

// runMigrations brings databases created by older builds up to date and
// records the version in user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 2 {
		// Ledgers from version 1 predate the chat_path index.
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_exchanges_chat_path ON exchanges(chat_path, seq)`); err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// version returns the stored schema version. Used by tests.
func (s *Store) version() (int, error) {
	var v int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}

// Record inserts an exchange and returns it with ID, Seq and CreatedAt set.
// A caller-supplied ID is kept; an empty one is generated.
func (s *Store) Record(ctx context.Context, ex Exchange) (Exchange, error) {
	if ex.ID == "" {
		ex.ID = s.ids.Generate()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = s.now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges
		(id, chat_path, model, response_id, total_tokens, question, answer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ex.ID,
		ex.ChatPath,
		ex.Model,
		ex.ResponseID,
		ex.TotalTokens,
		ex.Question,
		ex.Answer,
		ex.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Exchange{}, fmt.Errorf("record exchange: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return Exchange{}, fmt.Errorf("record exchange: %w", err)
	}
	ex.Seq = seq
	return ex, nil
}

// List returns exchanges in seq order, optionally filtered.
// With a Limit, the most recent entries are returned, still oldest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Exchange, error) {
	query := `
		SELECT seq, id, chat_path, model, response_id, total_tokens, question, answer, created_at
		FROM exchanges`
	var args []any
	if f.ChatPath != "" {
		query += ` WHERE chat_path = ?`
		args = append(args, f.ChatPath)
	}
	query += ` ORDER BY seq DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var (
			ex      Exchange
			created string
		)
		if err := rows.Scan(&ex.Seq, &ex.ID, &ex.ChatPath, &ex.Model, &ex.ResponseID,
			&ex.TotalTokens, &ex.Question, &ex.Answer, &created); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		ex.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}

	// Reverse into ascending seq order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
