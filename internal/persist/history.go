package persist

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// HistorySink is an optional, append-only audit log of commits, kept
// purely for offline inspection: it is never read back into the
// in-memory Commit Chain and so cannot affect reconciliation semantics.
// A nil *HistorySink is valid and simply disables history recording.
type HistorySink struct {
	db *sql.DB
}

// OpenHistorySink opens (creating if needed) a SQLite database at path
// and ensures its schema exists.
func OpenHistorySink(path string) (*HistorySink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("persist: open history db: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS commit_history (
			commit_id INTEGER PRIMARY KEY,
			identity TEXT NOT NULL,
			text_snapshot TEXT NOT NULL,
			committed_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: create history schema: %w", err)
	}
	return &HistorySink{db: db}, nil
}

// Close releases the underlying database handle.
func (h *HistorySink) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

// Record appends one commit's snapshot to the audit log. It returns
// any database error to the caller and does not log it itself.
func (h *HistorySink) Record(commitID int, identity, text string, at time.Time) error {
	if h == nil || h.db == nil {
		return nil
	}
	_, err := h.db.Exec(
		`INSERT OR REPLACE INTO commit_history (commit_id, identity, text_snapshot, committed_at) VALUES (?, ?, ?, ?)`,
		commitID, identity, text, at.Unix(),
	)
	if err != nil {
		return fmt.Errorf("persist: record commit history: %w", err)
	}
	return nil
}
