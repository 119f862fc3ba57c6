package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitemap-tools/sitemap-pulse/internal/models"
)

// Store persists recently analyzed sitemap URLs. Analysis results are never
// stored; only the submitted targets and their usage counters are.
type Store interface {
	Initialize() error
	Close() error

	// Target history operations
	RecordUse(ctx context.Context, target *models.Target) error
	ListTargets(ctx context.Context, limit int) ([]*models.Target, error)
	DeleteTarget(ctx context.Context, id uuid.UUID) error
}
