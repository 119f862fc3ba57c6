package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/sitemap-tools/sitemap-pulse/config"
	"github.com/sitemap-tools/sitemap-pulse/internal/analyzer"
)

// Quick terminal check of a sitemap without starting the server:
//
//	go run ./tools/sitemapcheck https://example.com/sitemap.xml
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <sitemap-url>\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	result, err := analyzer.New(cfg).Analyze(context.Background(), os.Args[1], false)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Printf("Sitemap:            %s\n", result.SitemapURL)
	fmt.Printf("Total URL entries:  %d\n", result.TotalEntries)
	fmt.Printf("Unique URLs:        %d\n", result.UniqueURLCount)
	fmt.Printf("Missing lastmod:    %d\n", result.MissingLastMod)
	fmt.Printf("Modified last 24h:  %d\n", result.Buckets.Last24Hours)
	fmt.Printf("Modified last 7d:   %d\n", result.Buckets.LastWeek)
	fmt.Printf("Modified last 30d:  %d\n", result.Buckets.LastMonth)
	fmt.Printf("Modified last 365d: %d\n", result.Buckets.LastYear)

	if len(result.Tags) > 0 {
		fmt.Println("\nTags found:")
		categories := make([]string, 0, len(result.Tags))
		for category := range result.Tags {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Printf("  %-10s %s\n", category, strings.Join(result.Tags[category], ", "))
		}
	}
}
