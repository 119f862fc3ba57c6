package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sitemap-tools/sitemap-pulse/config"
)

// FetchError reports a failed sitemap download: either a transport error
// (Err set, StatusCode zero) or a non-200 HTTP response (StatusCode set).
// PageTitle carries the <title> of an HTML error page when the server
// returned one, so the surfaced message can name the block or 404 page.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	PageTitle  string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		if e.PageTitle != "" {
			return fmt.Sprintf("fetch %s: server returned %s (%s)", e.URL, e.Status, e.PageTitle)
		}
		return fmt.Sprintf("fetch %s: server returned %s", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads sitemap documents. One GET per call, no retries, the
// HTTP client's default redirect policy, and a bounded timeout so a run
// never hangs on the network.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

func NewFetcher(cfg *config.Config) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.GetFetchTimeout(),
		},
		userAgent:    cfg.Fetcher.UserAgent,
		maxBodyBytes: cfg.Fetcher.MaxBodyBytes,
	}
}

// Fetch issues a single GET for the sitemap URL and returns the raw body.
// Any failure is reported as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	// Read one byte past the cap to tell "exactly at the limit" from
	// "truncated".
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		fetchErr := &FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
		if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
			fetchErr.PageTitle = htmlTitle(body)
		}
		return nil, fetchErr
	}

	if int64(len(body)) > f.maxBodyBytes {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("response body exceeds %d bytes", f.maxBodyBytes)}
	}

	return body, nil
}

// htmlTitle extracts the <title> text from an HTML error page, if any.
func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
