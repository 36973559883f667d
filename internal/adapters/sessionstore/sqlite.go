// sqlite.go implements the durable session archive on SQLite.
package sessionstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/oklog/ulid/v2"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/entities"
)

// SQLiteArchive implements ports.SessionArchive. Session histories are
// rewritten wholesale per save; the archive is best-effort durability, not
// the source of truth.
type SQLiteArchive struct {
	db *sqlx.DB
}

// NewSQLiteArchive opens or creates the archive database at the given path.
func NewSQLiteArchive(dbPath string) (*SQLiteArchive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive db: %w", err)
	}
	// SQLite allows one writer; a single pooled connection avoids
	// SQLITE_BUSY from concurrent best-effort saves.
	db.SetMaxOpenConns(1)

	a := &SQLiteArchive{db: db}
	if err := a.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing archive schema: %w", err)
	}
	return a, nil
}

func (a *SQLiteArchive) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id             TEXT PRIMARY KEY,
		session_id     TEXT NOT NULL,
		user_text      TEXT NOT NULL,
		assistant_text TEXT NOT NULL,
		at             TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id);
	`
	_, err := a.db.Exec(schema)
	return err
}

type exchangeRow struct {
	ID            string `db:"id"`
	SessionID     string `db:"session_id"`
	UserText      string `db:"user_text"`
	AssistantText string `db:"assistant_text"`
	At            string `db:"at"`
}

// SaveSession rewrites one session's archived history in a transaction.
func (a *SQLiteArchive) SaveSession(ctx context.Context, sessionID string, history []entities.Exchange) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting archive tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM exchanges WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clearing archived session: %w", err)
	}

	for _, ex := range history {
		row := exchangeRow{
			ID:            ulid.MustNew(ulid.Timestamp(ex.At), ulid.DefaultEntropy()).String(),
			SessionID:     sessionID,
			UserText:      ex.UserText,
			AssistantText: ex.AssistantText,
			At:            ex.At.UTC().Format(time.RFC3339Nano),
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO exchanges (id, session_id, user_text, assistant_text, at)
			VALUES (:id, :session_id, :user_text, :assistant_text, :at)
		`, row)
		if err != nil {
			return fmt.Errorf("inserting exchange: %w", err)
		}
	}

	return tx.Commit()
}

// LoadAll returns every archived session history, oldest exchange first.
func (a *SQLiteArchive) LoadAll(ctx context.Context) (map[string][]entities.Exchange, error) {
	var rows []exchangeRow
	err := a.db.SelectContext(ctx, &rows, `
		SELECT id, session_id, user_text, assistant_text, at
		FROM exchanges ORDER BY session_id, at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("loading archived sessions: %w", err)
	}

	histories := make(map[string][]entities.Exchange)
	for _, row := range rows {
		at, err := time.Parse(time.RFC3339Nano, row.At)
		if err != nil {
			continue // skip rows with unreadable timestamps
		}
		histories[row.SessionID] = append(histories[row.SessionID], entities.Exchange{
			UserText:      row.UserText,
			AssistantText: row.AssistantText,
			At:            at,
		})
	}
	return histories, nil
}

// DeleteSession removes one session from the archive.
func (a *SQLiteArchive) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := a.db.ExecContext(ctx, `DELETE FROM exchanges WHERE session_id = ?`, sessionID)
	return err
}

// Close closes the database connection.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

// NoopArchive is the archive variant selected when durability is disabled.
type NoopArchive struct{}

// LoadAll returns no histories.
func (NoopArchive) LoadAll(context.Context) (map[string][]entities.Exchange, error) {
	return nil, nil
}

// SaveSession discards the history.
func (NoopArchive) SaveSession(context.Context, string, []entities.Exchange) error { return nil }

// DeleteSession does nothing.
func (NoopArchive) DeleteSession(context.Context, string) error { return nil }
