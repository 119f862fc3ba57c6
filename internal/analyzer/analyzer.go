package analyzer

import (
	"context"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sitemap-tools/sitemap-pulse/config"
	"github.com/sitemap-tools/sitemap-pulse/internal/metrics"
	"github.com/sitemap-tools/sitemap-pulse/internal/models"
	"github.com/sitemap-tools/sitemap-pulse/internal/utils"
)

// Analyzer runs the fetch, parse and classify pipeline for one sitemap URL
// per call. It holds no state between runs.
type Analyzer struct {
	fetcher *Fetcher
	logDir  string
}

func New(cfg *config.Config) *Analyzer {
	return &Analyzer{
		fetcher: NewFetcher(cfg),
		logDir:  cfg.Logging.Dir,
	}
}

// Analyze fetches the sitemap, parses its URL entries and classifies their
// modification times against a single reference time captured at the start
// of the run. Errors come back as *FetchError or *ParseError and are
// terminal; nothing is retried.
func (a *Analyzer) Analyze(ctx context.Context, sitemapURL string, includeURLs bool) (*models.AnalysisResult, error) {
	now := time.Now().UTC()
	runID := uuid.New()
	start := time.Now()

	runLog, err := utils.NewRunLogger(a.logDir, hostLabel(sitemapURL))
	if err != nil {
		// Run logs are best-effort; the nil logger falls back to stdout.
		log.Printf("Run log unavailable for %s: %v", sitemapURL, err)
	}
	defer runLog.Close()

	runLog.LogInfo("Starting analysis %s for %s", runID, sitemapURL)
	metrics.AnalysesTotal.Inc()

	body, err := a.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		runLog.LogError("Fetch failed: %v", err)
		metrics.AnalysisErrors.WithLabelValues("fetch").Inc()
		return nil, err
	}
	runLog.LogInfo("Fetched %d bytes", len(body))

	parsed, err := ParseSitemap(body)
	if err != nil {
		runLog.LogError("Parse failed: %v", err)
		metrics.AnalysisErrors.WithLabelValues("parse").Inc()
		return nil, err
	}

	result := &models.AnalysisResult{
		RunID:          runID,
		SitemapURL:     sitemapURL,
		AnalyzedAt:     now,
		TotalEntries:   parsed.TotalEntries,
		UniqueURLCount: len(parsed.Entries),
		MissingLastMod: CountMissingLastMod(parsed.Entries),
		Buckets:        CountBuckets(parsed.Entries, now),
		Tags:           parsed.Tags,
		Heatmap:        BuildHeatmap(parsed.Entries),
	}

	if includeURLs {
		urls := make([]string, 0, len(parsed.Entries))
		for _, entry := range parsed.Entries {
			urls = append(urls, entry.URL)
		}
		result.URLs = urls
	}

	duration := time.Since(start)
	result.DurationMillis = duration.Milliseconds()
	metrics.AnalysisDuration.Observe(duration.Seconds())
	metrics.SitemapEntries.Observe(float64(parsed.TotalEntries))

	runLog.LogInfo("Analysis complete: %d URL entries, %d unique, %d without lastmod",
		result.TotalEntries, result.UniqueURLCount, result.MissingLastMod)
	runLog.LogDebug("Bucket counts: 24h=%d week=%d month=%d year=%d",
		result.Buckets.Last24Hours, result.Buckets.LastWeek, result.Buckets.LastMonth, result.Buckets.LastYear)

	return result, nil
}

// hostLabel names the run log directory after the sitemap host.
func hostLabel(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return u.Host
	}
	return "sitemap"
}
