package analyzer

import (
	"time"

	"github.com/sitemap-tools/sitemap-pulse/internal/models"
)

// CountBuckets classifies entry modification times into four rolling
// windows ending at now: 24 hours, 7 days, 30 days and 365 days, measured
// as absolute durations rather than calendar units. All four windows share
// the same captured now so the counts are mutually consistent.
//
// Entries without a timestamp are not counted, and neither are entries
// dated in the future relative to now. The window start is inclusive: an
// entry modified exactly 24 hours ago is inside the 24h window.
func CountBuckets(entries []models.SitemapEntry, now time.Time) models.BucketCounts {
	cutoff24h := now.Add(-24 * time.Hour)
	cutoffWeek := now.Add(-7 * 24 * time.Hour)
	cutoffMonth := now.Add(-30 * 24 * time.Hour)
	cutoffYear := now.Add(-365 * 24 * time.Hour)

	var counts models.BucketCounts
	for _, entry := range entries {
		if entry.LastModified == nil {
			continue
		}
		ts := *entry.LastModified
		if ts.After(now) {
			continue
		}

		if !ts.Before(cutoff24h) {
			counts.Last24Hours++
		}
		if !ts.Before(cutoffWeek) {
			counts.LastWeek++
		}
		if !ts.Before(cutoffMonth) {
			counts.LastMonth++
		}
		if !ts.Before(cutoffYear) {
			counts.LastYear++
		}
	}

	return counts
}

// BuildHeatmap distributes the dated entries over a Monday-first weekday by
// UTC-hour grid, each cell holding the percentage of dated entries modified
// in that slot. Future-dated entries are included; only the bucket counts
// exclude them.
func BuildHeatmap(entries []models.SitemapEntry) *models.ModHeatmap {
	heatmap := &models.ModHeatmap{}

	for _, entry := range entries {
		if entry.LastModified == nil {
			continue
		}
		ts := entry.LastModified.UTC()
		row := (int(ts.Weekday()) + 6) % 7 // time.Weekday is Sunday-first
		heatmap.Cells[row][ts.Hour()]++
		heatmap.DatedEntries++
	}

	if heatmap.DatedEntries > 0 {
		for day := range heatmap.Cells {
			for hour := range heatmap.Cells[day] {
				heatmap.Cells[day][hour] = heatmap.Cells[day][hour] / float64(heatmap.DatedEntries) * 100
			}
		}
	}

	return heatmap
}

// CountMissingLastMod reports how many entries carry no usable modification
// time, which explains bucket counts that fall short of the unique count.
func CountMissingLastMod(entries []models.SitemapEntry) int {
	missing := 0
	for _, entry := range entries {
		if entry.LastModified == nil {
			missing++
		}
	}
	return missing
}
