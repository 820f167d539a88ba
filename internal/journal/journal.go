// Package journal keeps a SQLite history of note mutations.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/notepad/internal/models"
)

// DefaultLimit is used by Recent when limit is not positive.
const DefaultLimit = 20

const schemaSQL = `
CREATE TABLE IF NOT EXISTS history (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	op         TEXT NOT NULL,
	note       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_history_op ON history(op);
`

// DB wraps a sql.DB with journal operations.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens (or creates) the journal database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &DB{conn: conn, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record stores one history row per note within a transaction.
func (db *DB) Record(ctx context.Context, op models.Op, notes []string) error {
	if len(notes) == 0 {
		return nil
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO history (id, op, note, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("journal: prepare insert: %w", err)
	}
	defer stmt.Close()

	at := db.now().UTC()
	for _, n := range notes {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), string(op), n, at); err != nil {
			return fmt.Errorf("journal: insert: %w", err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit entries, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, op, note, created_at FROM history ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	out := []models.HistoryEntry{}
	for rows.Next() {
		var (
			e  models.HistoryEntry
			op string
		)
		if err := rows.Scan(&e.ID, &op, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.Op = models.Op(op)
		out = append(out, e)
	}
	return out, rows.Err()
}
