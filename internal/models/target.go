package models

import (
	"time"

	"github.com/google/uuid"
)

// Target is a sitemap URL that was submitted for analysis. Only the input
// URL and its usage times are persisted; analysis results never are.
type Target struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	FirstUsed time.Time `json:"first_used"`
	LastUsed  time.Time `json:"last_used"`
	UseCount  int       `json:"use_count"`
}

// NewTarget creates a new target with generated UUID and timestamps
func NewTarget(url string) *Target {
	now := time.Now().UTC()
	return &Target{
		ID:        uuid.New(),
		URL:       url,
		FirstUsed: now,
		LastUsed:  now,
		UseCount:  1,
	}
}
