package models

import (
	"time"

	"github.com/google/uuid"
)

// SitemapEntry is one deduplicated URL record extracted from a sitemap.
// LastModified is nil when the sitemap omits the lastmod element or when
// its value could not be parsed as a date.
type SitemapEntry struct {
	URL          string     `json:"url"`
	LastModified *time.Time `json:"last_modified,omitempty"`
}

// BucketCounts holds how many entries were modified inside each of the four
// rolling windows that end at the analysis run's reference time.
type BucketCounts struct {
	Last24Hours int `json:"count_last_24h"`
	LastWeek    int `json:"count_last_week"`
	LastMonth   int `json:"count_last_month"`
	LastYear    int `json:"count_last_year"`
}

// TagSummary maps a tag category (standard, image, video, news, language,
// mobile) to the sorted tag names detected in that category.
type TagSummary map[string][]string

// ModHeatmap is a weekday-by-hour distribution of modification timestamps.
// Rows run Monday through Sunday, columns are UTC hours, and each cell is
// the percentage of dated entries modified in that slot.
type ModHeatmap struct {
	Cells        [7][24]float64 `json:"cells"`
	DatedEntries int            `json:"dated_entries"`
}

// AnalysisResult is the outcome of one analysis run. It is recomputed on
// every request and never persisted.
type AnalysisResult struct {
	RunID          uuid.UUID    `json:"run_id"`
	SitemapURL     string       `json:"sitemap_url"`
	AnalyzedAt     time.Time    `json:"analyzed_at"`
	TotalEntries   int          `json:"total_entries"`
	UniqueURLCount int          `json:"unique_url_count"`
	MissingLastMod int          `json:"missing_last_mod"`
	Buckets        BucketCounts `json:"buckets"`
	Tags           TagSummary   `json:"tags,omitempty"`
	Heatmap        *ModHeatmap  `json:"heatmap,omitempty"`
	URLs           []string     `json:"urls,omitempty"`
	DurationMillis int64        `json:"duration_ms"`
}
