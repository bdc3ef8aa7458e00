// Package db provides database connection helpers, schema migration, and the data
// access helpers for search history, per-user stats, and the durable metadata cache.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx postgres driver registered as 'pgx'

	"github.com/onnwee/moviebot/omdb"
)

// Connect opens a Postgres connection for the given DSN.
func Connect(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// Migrate applies idempotent schema changes for all required tables and indices.
// Safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS search_history (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			query TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id BIGINT PRIMARY KEY,
			search_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS metadata_cache (
			query TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user_created ON search_history(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_history_query ON search_history(query)`,
	}
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("postgres migrate step %d failed: %w", i, err)
		}
	}
	return nil
}

// Store wraps the SQL handle with the operations consumed by the bot.
type Store struct{ DB *sql.DB }

// RecordSearch appends a history row and bumps the user's search counter in a
// single transaction, so the two can never drift apart. Called only for lookups
// that produced a record; failed lookups are not recorded.
func (s *Store) RecordSearch(ctx context.Context, userID int64, query string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record search: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO search_history (user_id, query) VALUES ($1, $2)`, userID, query); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_stats (user_id, search_count) VALUES ($1, 1)
		 ON CONFLICT (user_id) DO UPDATE SET search_count = user_stats.search_count + 1`, userID); err != nil {
		return fmt.Errorf("upsert stat: %w", err)
	}
	return tx.Commit()
}

// SearchHistory returns the user's most recent queries, newest first.
// A non-positive limit falls back to 10.
func (s *Store) SearchHistory(ctx context.Context, userID int64, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT query FROM search_history WHERE user_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// SearchCount returns the user's lifetime search count, 0 for never-seen users.
func (s *Store) SearchCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT search_count FROM user_stats WHERE user_id=$1`, userID).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ClearHistory deletes all history rows for one user. The stat counter is kept:
// it counts lifetime searches, not retained rows.
func (s *Store) ClearHistory(ctx context.Context, userID int64) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM search_history WHERE user_id=$1`, userID)
	return err
}

// UpsertCachedMetadata writes a record into the durable secondary cache,
// last-write-wins by query.
func (s *Store) UpsertCachedMetadata(ctx context.Context, query string, rec omdb.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO metadata_cache (query, payload, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (query) DO UPDATE SET payload=EXCLUDED.payload, updated_at=NOW()`,
		query, string(payload))
	return err
}

// CachedMetadata reads a record from the durable cache; ok is false when the
// query has never been stored.
func (s *Store) CachedMetadata(ctx context.Context, query string) (omdb.Record, bool, error) {
	var payload string
	err := s.DB.QueryRowContext(ctx,
		`SELECT payload FROM metadata_cache WHERE query=$1`, query).Scan(&payload)
	if err == sql.ErrNoRows {
		return omdb.Record{}, false, nil
	}
	if err != nil {
		return omdb.Record{}, false, err
	}
	var rec omdb.Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return omdb.Record{}, false, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return rec, true, nil
}

// SearchFrequency is one row of the TopSearches analytics.
type SearchFrequency struct {
	Query string
	Count int
}

// TopSearches returns the most frequent queries across all users, descending.
// Not on the hot path; used by the /status endpoint.
func (s *Store) TopSearches(ctx context.Context, limit int) ([]SearchFrequency, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT query, COUNT(*) AS n FROM search_history GROUP BY query ORDER BY n DESC, query ASC LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SearchFrequency
	for rows.Next() {
		var f SearchFrequency
		if err := rows.Scan(&f.Query, &f.Count); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetKV returns a value from the kv table or "" when absent.
func (s *Store) GetKV(ctx context.Context, key string) (string, error) {
	var v sql.NullString
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key=$1`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v.String, nil
}

// SetKV upserts a value into the kv table.
func (s *Store) SetKV(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`, key, value)
	return err
}
