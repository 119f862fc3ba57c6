package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sitemap-tools/sitemap-pulse/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS targets (
            id TEXT PRIMARY KEY,
            url TEXT UNIQUE NOT NULL,
            first_used DATETIME NOT NULL,
            last_used DATETIME NOT NULL,
            use_count INTEGER NOT NULL DEFAULT 1
        )`,
		`CREATE INDEX IF NOT EXISTS idx_targets_last_used ON targets(last_used)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *SQLiteStore) RecordUse(ctx context.Context, target *models.Target) error {
	query := `
        INSERT INTO targets (id, url, first_used, last_used, use_count)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(url) DO UPDATE SET
            last_used = excluded.last_used,
            use_count = use_count + 1
    `

	_, err := s.db.ExecContext(ctx, query,
		target.ID.String(),
		target.URL,
		target.FirstUsed,
		target.LastUsed,
		target.UseCount,
	)

	return err
}

func (s *SQLiteStore) ListTargets(ctx context.Context, limit int) ([]*models.Target, error) {
	query := `
        SELECT id, url, first_used, last_used, use_count
        FROM targets
        ORDER BY last_used DESC
        LIMIT ?
    `

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []*models.Target
	for rows.Next() {
		target := &models.Target{}
		var idStr string

		err := rows.Scan(
			&idStr,
			&target.URL,
			&target.FirstUsed,
			&target.LastUsed,
			&target.UseCount,
		)

		if err != nil {
			return nil, err
		}

		target.ID, _ = uuid.Parse(idStr)
		targets = append(targets, target)
	}

	return targets, rows.Err()
}

func (s *SQLiteStore) DeleteTarget(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM targets WHERE id = ?`, id.String())
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
