// internal/models/sitemap.go
package models

import "encoding/xml"

// Sitemap represents the structure of an XML sitemap.
type Sitemap struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []URL    `xml:"url"`
}

// URL represents a single URL entry in the sitemap. Extensions collects
// namespaced children (image:, video:, news:, xhtml:, mobile:) that are not
// part of the core sitemap schema.
type URL struct {
	Loc        string          `xml:"loc"`
	LastMod    string          `xml:"lastmod,omitempty"`
	ChangeFreq string          `xml:"changefreq,omitempty"`
	Priority   string          `xml:"priority,omitempty"`
	Extensions []ExtensionNode `xml:",any"`
}

// ExtensionNode captures the name of an extension element and its nested
// element structure. Text content is not retained; tag detection only needs
// the names.
type ExtensionNode struct {
	XMLName  xml.Name
	Children []ExtensionNode `xml:",any"`
}
