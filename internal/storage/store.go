// Package storage persists dispatch history to sqlite. The store is
// optional: the backend runs identically with it disabled.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sentinelai/sentinel-agents/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS action_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	agent_type TEXT NOT NULL,
	action TEXT NOT NULL,
	success INTEGER NOT NULL,
	confidence REAL NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	explanation TEXT NOT NULL DEFAULT '',
	elapsed_sec REAL NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_action_history_agent ON action_history(agent_type, created_at);
`

type HistoryStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*HistoryStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_loc=Local")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Record appends one dispatched action to the history.
func (s *HistoryStore) Record(ctx context.Context, rec models.ActionRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_history (agent_type, action, success, confidence, error, explanation, elapsed_sec, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.AgentType, rec.Action, boolToInt(rec.Success), rec.Confidence,
		rec.Error, rec.Explanation, rec.ElapsedSec, createdAt)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first. agentType filters
// when non-empty.
func (s *HistoryStore) List(ctx context.Context, agentType string, limit int) ([]models.ActionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, agent_type, action, success, confidence, error, explanation, elapsed_sec, created_at
		FROM action_history`
	args := []interface{}{}
	if agentType != "" {
		query += " WHERE agent_type = ?"
		args = append(args, agentType)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var records []models.ActionRecord
	for rows.Next() {
		var rec models.ActionRecord
		var success int
		if err := rows.Scan(&rec.ID, &rec.AgentType, &rec.Action, &success,
			&rec.Confidence, &rec.Error, &rec.Explanation, &rec.ElapsedSec, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec.Success = success != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns how many records exist for an agent type ("" for all).
func (s *HistoryStore) Count(ctx context.Context, agentType string) (int64, error) {
	query := "SELECT COUNT(*) FROM action_history"
	args := []interface{}{}
	if agentType != "" {
		query += " WHERE agent_type = ?"
		args = append(args, agentType)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
