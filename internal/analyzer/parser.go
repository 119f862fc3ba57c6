package analyzer

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/sitemap-tools/sitemap-pulse/internal/models"
	"golang.org/x/net/html/charset"
)

// ParseError reports a sitemap payload that could not be understood:
// malformed XML or a recognizable-but-unsupported document shape.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse sitemap: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse sitemap: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseResult holds the entries extracted from one sitemap document.
// TotalEntries counts every loc-bearing <url> element before deduplication;
// Entries is deduplicated by URL with the first occurrence winning.
type ParseResult struct {
	Entries      []models.SitemapEntry
	TotalEntries int
	Tags         models.TagSummary
}

// extensionNamespaces maps a namespace to the tag category it belongs to.
// Keyed by the canonical schema URL, with the bare prefix as a fallback for
// sitemaps that use the prefixes without declaring them.
var extensionNamespaces = map[string]string{
	"http://www.google.com/schemas/sitemap-image/1.1":  "image",
	"http://www.google.com/schemas/sitemap-video/1.1":  "video",
	"http://www.google.com/schemas/sitemap-news/0.9":   "news",
	"http://www.w3.org/1999/xhtml":                     "language",
	"http://www.google.com/schemas/sitemap-mobile/1.0": "mobile",
	"image":  "image",
	"video":  "video",
	"news":   "news",
	"xhtml":  "language",
	"mobile": "mobile",
}

// ParseSitemap parses raw sitemap XML into deduplicated URL entries.
//
// A malformed lastmod value is tolerated: the entry is kept with a nil
// LastModified instead of failing the parse. Timestamps without a zone are
// treated as UTC. A <sitemapindex> document is rejected, since index
// traversal is out of scope.
func ParseSitemap(data []byte) (*ParseResult, error) {
	root, err := rootElement(data)
	if err != nil {
		return nil, &ParseError{Reason: "document is not well-formed XML", Err: err}
	}

	switch root.Local {
	case "urlset":
	case "sitemapindex":
		return nil, &ParseError{Reason: "document is a sitemap index; point the analyzer at one of its child sitemaps"}
	default:
		return nil, &ParseError{Reason: fmt.Sprintf("unexpected root element <%s>, want <urlset>", root.Local)}
	}

	var doc models.Sitemap
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&doc); err != nil {
		return nil, &ParseError{Reason: "document is not well-formed XML", Err: err}
	}

	result := &ParseResult{Tags: models.TagSummary{}}
	tags := make(map[string]map[string]bool)
	seen := make(map[string]bool)

	for _, u := range doc.URLs {
		collectTags(u, tags)

		loc := strings.TrimSpace(u.Loc)
		if loc == "" {
			continue
		}
		result.TotalEntries++
		if seen[loc] {
			continue
		}
		seen[loc] = true

		entry := models.SitemapEntry{URL: loc}
		if raw := strings.TrimSpace(u.LastMod); raw != "" {
			if ts, err := dateparse.ParseAny(raw); err == nil {
				ts = ts.UTC()
				entry.LastModified = &ts
			}
		}
		result.Entries = append(result.Entries, entry)
	}

	for category, names := range tags {
		for name := range names {
			result.Tags[category] = append(result.Tags[category], name)
		}
		sort.Strings(result.Tags[category])
	}

	return result, nil
}

// rootElement returns the name of the document's root element without
// consuming the data, so the document shape can be checked before a full
// decode.
func rootElement(data []byte) (xml.Name, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel

	for {
		token, err := decoder.Token()
		if err != nil {
			return xml.Name{}, err
		}
		if start, ok := token.(xml.StartElement); ok {
			return start.Name, nil
		}
	}
}

// collectTags records which special sitemap tags appear on one <url>
// element: changefreq/priority as "standard", namespaced extension elements
// under their category, xhtml alternate links as "language" and
// mobile:mobile as "mobile".
func collectTags(u models.URL, tags map[string]map[string]bool) {
	add := func(category, name string) {
		if tags[category] == nil {
			tags[category] = make(map[string]bool)
		}
		tags[category][name] = true
	}

	if strings.TrimSpace(u.ChangeFreq) != "" {
		add("standard", "changefreq")
	}
	if strings.TrimSpace(u.Priority) != "" {
		add("standard", "priority")
	}

	for _, node := range u.Extensions {
		category, ok := extensionNamespaces[node.XMLName.Space]
		if !ok {
			continue
		}
		switch category {
		case "language":
			if node.XMLName.Local == "link" {
				add("language", "alternate")
			}
		case "mobile":
			if node.XMLName.Local == "mobile" {
				add("mobile", "mobile")
			}
		default:
			addExtensionNames(node, category, add)
		}
	}
}

// addExtensionNames records the local names of an extension element and of
// every descendant that stays in the same namespace family.
func addExtensionNames(node models.ExtensionNode, category string, add func(category, name string)) {
	add(category, node.XMLName.Local)
	for _, child := range node.Children {
		if extensionNamespaces[child.XMLName.Space] == category {
			addExtensionNames(child, category, add)
		}
	}
}
