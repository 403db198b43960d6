// Package store handles SQLite persistence of finished typing tests.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/adaptype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for typing results.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS typing_results (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			accuracy INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			key_errors TEXT NOT NULL DEFAULT '{}',
			words INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_typing_results_ended_at ON typing_results(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_typing_results_name ON typing_results(name);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertResult stores a finished test and returns its id. A record without an
// id gets a fresh UUID.
func (s *Store) InsertResult(ctx context.Context, rec model.ResultRecord) (string, error) {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	keyErrors := rec.KeyErrors
	if keyErrors == nil {
		keyErrors = map[string]int{}
	}
	encoded, err := json.Marshal(keyErrors)
	if err != nil {
		return "", fmt.Errorf("failed to encode key errors: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO typing_results (id, name, accuracy, wpm, errors, key_errors, words, started_at, ended_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		rec.Name,
		rec.Accuracy,
		rec.WPM,
		rec.Errors,
		string(encoded),
		rec.Words,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.DurationMs,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// SaveResult implements the result sink used by the TUI.
func (s *Store) SaveResult(ctx context.Context, rec model.ResultRecord) error {
	_, err := s.InsertResult(ctx, rec)
	return err
}

// ListResults returns results filtered by cfg, oldest first.
func (s *Store) ListResults(ctx context.Context, cfg model.ResultsConfig) ([]model.ResultRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Name != "" {
		clauses = append(clauses, "name = ?")
		args = append(args, cfg.Name)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, name, accuracy, wpm, errors, key_errors, words, started_at, ended_at, duration_ms
		FROM typing_results
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.ResultRecord
	for rows.Next() {
		var rec model.ResultRecord
		var keyErrors, startedAt, endedAt string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Accuracy, &rec.WPM, &rec.Errors, &keyErrors, &rec.Words, &startedAt, &endedAt, &rec.DurationMs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(keyErrors), &rec.KeyErrors); err != nil {
			return nil, fmt.Errorf("failed to decode key errors for %s: %w", rec.ID, err)
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}
	return results, nil
}

// KeyErrorTotals sums per-key errors over the most recent results.
func (s *Store) KeyErrorTotals(ctx context.Context, name string, window int) ([]model.KeyAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent AS (
		SELECT key_errors FROM typing_results
		WHERE (? = '' OR name = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT je.key, SUM(je.value) AS errors
	FROM recent r, json_each(r.key_errors) je
	GROUP BY je.key
	ORDER BY errors DESC, je.key ASC`

	rows, err := s.db.QueryContext(ctx, query, name, name, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.KeyAggregate
	for rows.Next() {
		var agg model.KeyAggregate
		if err := rows.Scan(&agg.Key, &agg.Errors); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
