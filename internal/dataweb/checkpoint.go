package dataweb

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Checkpoint records which countries a fetch run has fully processed, so a
// rerun resumes instead of re-downloading.
type Checkpoint struct {
	db *sql.DB
}

// OpenCheckpoint opens (or creates) the checkpoint database at path and
// configures WAL mode.
func OpenCheckpoint(path string) (*Checkpoint, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "dataweb: open checkpoint")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "dataweb: exec %s", pragma)
		}
	}

	const migration = `
CREATE TABLE IF NOT EXISTS processed_countries (
	name         TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL,
	rows         INTEGER NOT NULL DEFAULT 0,
	completed_at DATETIME NOT NULL DEFAULT (datetime('now'))
);`
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "dataweb: migrate checkpoint")
	}
	return &Checkpoint{db: db}, nil
}

func (c *Checkpoint) Close() error { return c.db.Close() }

// Has reports whether the country was already processed.
func (c *Checkpoint) Has(ctx context.Context, country string) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed_countries WHERE name = ?`, country,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "dataweb: checkpoint lookup %s", country)
	}
	return true, nil
}

// MarkDone records the country as processed with the row count it produced.
// Re-marking overwrites, so a forced re-fetch updates in place.
func (c *Checkpoint) MarkDone(ctx context.Context, country, runID string, rows int) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO processed_countries (name, run_id, rows, completed_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET run_id = excluded.run_id,
		 	rows = excluded.rows, completed_at = excluded.completed_at`,
		country, runID, rows, time.Now().UTC(),
	)
	return eris.Wrapf(err, "dataweb: checkpoint mark %s", country)
}

// Count returns the number of processed countries.
func (c *Checkpoint) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed_countries`).Scan(&n)
	return n, eris.Wrap(err, "dataweb: checkpoint count")
}
