package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/sitemap-tools/sitemap-pulse/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS targets (
            id UUID PRIMARY KEY,
            url VARCHAR(2048) UNIQUE NOT NULL,
            first_used TIMESTAMP NOT NULL,
            last_used TIMESTAMP NOT NULL,
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

func (s *PostgresStore) RecordUse(ctx context.Context, target *models.Target) error {
	query := `
        INSERT INTO targets (id, url, first_used, last_used, use_count)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (url) DO UPDATE SET
            last_used = EXCLUDED.last_used,
            use_count = targets.use_count + 1
    `

	_, err := s.db.ExecContext(ctx, query,
		target.ID,
		target.URL,
		target.FirstUsed,
		target.LastUsed,
		target.UseCount,
	)

	return err
}

func (s *PostgresStore) ListTargets(ctx context.Context, limit int) ([]*models.Target, error) {
	query := `
        SELECT id, url, first_used, last_used, use_count
        FROM targets
        ORDER BY last_used DESC
        LIMIT $1
    `

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []*models.Target
	for rows.Next() {
		target := &models.Target{}

		err := rows.Scan(
			&target.ID,
			&target.URL,
			&target.FirstUsed,
			&target.LastUsed,
			&target.UseCount,
		)

		if err != nil {
			return nil, err
		}

		targets = append(targets, target)
	}

	return targets, rows.Err()
}

func (s *PostgresStore) DeleteTarget(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM targets WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
