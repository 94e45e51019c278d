// sqlite.go — SQLite-backed Store. Payloads are stored as JSON documents;
// searchable columns (name, framework) are denormalized for listing.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/flowlens/flowlens/internal/pattern"
	"github.com/flowlens/flowlens/internal/template"
)

var ErrNotFound = errors.New("not found")

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS templates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    framework TEXT NOT NULL DEFAULT '',
    language TEXT NOT NULL DEFAULT '',
    payload TEXT NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch()),
    updated_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE INDEX IF NOT EXISTS idx_templates_name ON templates(name);
CREATE INDEX IF NOT EXISTS idx_templates_framework ON templates(framework);

CREATE TABLE IF NOT EXISTS patterns (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    payload TEXT NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch()),
    updated_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE INDEX IF NOT EXISTS idx_patterns_name ON patterns(name);
`

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================
// Code templates
// ============================================

func (s *SQLiteStore) SaveTemplate(ctx context.Context, t template.Template) error {
	if t.ID == "" {
		return fmt.Errorf("template has no id")
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal template: %w", err)
	}

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO templates (id, name, framework, language, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     name = excluded.name,
		     framework = excluded.framework,
		     language = excluded.language,
		     payload = excluded.payload,
		     updated_at = excluded.updated_at`,
		t.ID, t.Name, t.Framework, t.Language, string(payload), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTemplate(ctx context.Context, id string) (template.Template, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM templates WHERE id = ?`, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return template.Template{}, ErrNotFound
	}
	if err != nil {
		return template.Template{}, fmt.Errorf("failed to get template: %w", err)
	}

	var t template.Template
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return template.Template{}, fmt.Errorf("failed to unmarshal template: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) ListTemplates(ctx context.Context) ([]template.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM templates ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var out []template.Template
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		var t template.Template
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return requireRows(result)
}

// ============================================
// Pattern templates
// ============================================

func (s *SQLiteStore) SavePattern(ctx context.Context, t pattern.Template) error {
	if t.ID == "" {
		return fmt.Errorf("pattern template has no id")
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal pattern: %w", err)
	}

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO patterns (id, name, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     name = excluded.name,
		     payload = excluded.payload,
		     updated_at = excluded.updated_at`,
		t.ID, t.Name, string(payload), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save pattern: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetPattern(ctx context.Context, id string) (pattern.Template, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM patterns WHERE id = ?`, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return pattern.Template{}, ErrNotFound
	}
	if err != nil {
		return pattern.Template{}, fmt.Errorf("failed to get pattern: %w", err)
	}

	var t pattern.Template
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return pattern.Template{}, fmt.Errorf("failed to unmarshal pattern: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) ListPatterns(ctx context.Context) ([]pattern.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM patterns ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}
	defer rows.Close()

	var out []pattern.Template
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		var t pattern.Template
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pattern: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeletePattern(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM patterns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pattern: %w", err)
	}
	return requireRows(result)
}

func requireRows(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
