package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quartetgames/quartet/internal/game"

	_ "modernc.org/sqlite"
)

// schemaVersion guards against opening a database written by a newer
// build.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS meta (
	version INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
	kind         TEXT NOT NULL,
	date         TEXT NOT NULL,
	status       TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	result_json  TEXT,
	partial_json TEXT,
	PRIMARY KEY (kind, date)
);
CREATE INDEX IF NOT EXISTS history_kind_date ON history (kind, date);
`

// SQLite is the durable-local tier, one row per (kind, date).
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) the progress database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening progress database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	var version int
	err = db.QueryRow(`SELECT version FROM meta LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec(`INSERT INTO meta (version) VALUES (?)`, schemaVersion); err != nil {
			db.Close()
			return nil, fmt.Errorf("stamping schema version: %w", err)
		}
	case err != nil:
		db.Close()
		return nil, fmt.Errorf("reading schema version: %w", err)
	case version > schemaVersion:
		db.Close()
		return nil, fmt.Errorf("database is version %d, this build supports %d: %w", version, schemaVersion, ErrSchemaMismatch)
	}

	return &SQLite{db: db}, nil
}

// Load implements Store.
func (s *SQLite) Load(ctx context.Context, kind game.Kind, date game.Date) (*game.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT status, updated_at, result_json, partial_json FROM history WHERE kind = ? AND date = ?`,
		string(kind), date.String())

	var status, updatedAt string
	var resultJSON, partialJSON sql.NullString
	if err := row.Scan(&status, &updatedAt, &resultJSON, &partialJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("loading %s/%s: %w", kind, date, err)
	}

	entry := &game.HistoryEntry{
		Kind:   kind,
		Date:   date,
		Status: game.HistoryStatus(status),
	}
	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at for %s/%s: %w", kind, date, err)
	}
	entry.UpdatedAt = ts
	if resultJSON.Valid {
		var res game.Result
		if err := json.Unmarshal([]byte(resultJSON.String), &res); err != nil {
			return nil, fmt.Errorf("decoding result for %s/%s: %w", kind, date, err)
		}
		entry.Result = &res
	}
	if partialJSON.Valid {
		var snap game.Snapshot
		if err := json.Unmarshal([]byte(partialJSON.String), &snap); err != nil {
			return nil, fmt.Errorf("decoding partial for %s/%s: %w", kind, date, err)
		}
		entry.Partial = &snap
	}
	return entry, nil
}

// SavePartial implements Store. Rows that already hold a result keep it;
// the partial is stored alongside for inspection but the status stands.
func (s *SQLite) SavePartial(ctx context.Context, snap game.Snapshot) error {
	data, err := json.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encoding partial: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO history (kind, date, status, updated_at, partial_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (kind, date) DO UPDATE SET
			partial_json = excluded.partial_json,
			updated_at = excluded.updated_at,
			status = CASE WHEN history.result_json IS NULL THEN excluded.status ELSE history.status END`,
		string(snap.Kind), snap.Date.String(), string(game.HistoryInProgress), now, string(data))
	if err != nil {
		return fmt.Errorf("saving partial %s/%s: %w", snap.Kind, snap.Date, err)
	}
	return nil
}

// SaveResult implements Store: write-once per key.
func (s *SQLite) SaveResult(ctx context.Context, res game.Result) error {
	var existing sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM history WHERE kind = ? AND date = ?`,
		string(res.Kind), res.Date.String()).Scan(&existing)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("checking existing result %s/%s: %w", res.Kind, res.Date, err)
	}
	if existing.Valid {
		return ErrAlreadyCompleted
	}

	data, err := json.Marshal(&res)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO history (kind, date, status, updated_at, result_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (kind, date) DO UPDATE SET
			result_json = excluded.result_json,
			status = excluded.status,
			updated_at = excluded.updated_at,
			partial_json = NULL`,
		string(res.Kind), res.Date.String(), string(statusForResult(&res)), now, string(data))
	if err != nil {
		return fmt.Errorf("saving result %s/%s: %w", res.Kind, res.Date, err)
	}
	return nil
}

// CompletedDatesInRange implements Store with a single range scan.
func (s *SQLite) CompletedDatesInRange(ctx context.Context, kind game.Kind, start, end game.Date) (map[game.Date]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date FROM history WHERE kind = ? AND date >= ? AND date <= ? AND result_json IS NOT NULL`,
		string(kind), start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("listing completed dates: %w", err)
	}
	defer rows.Close()

	out := make(map[game.Date]bool)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		date, err := game.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		out[date] = true
	}
	return out, rows.Err()
}

// AllResults implements Store, ordered by date; the TEXT date column sorts
// lexicographically in date order.
func (s *SQLite) AllResults(ctx context.Context, kind game.Kind) ([]game.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT result_json FROM history WHERE kind = ? AND result_json IS NOT NULL ORDER BY date`,
		string(kind))
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	var out []game.Result
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var res game.Result
		if err := json.Unmarshal([]byte(raw), &res); err != nil {
			return nil, fmt.Errorf("decoding stored result: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}
