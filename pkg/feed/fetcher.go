package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/newsrake/pkg/domain"
)

// Fetcher retrieves RSS/Atom/JSON feeds over HTTP and normalizes their entries
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a feed fetcher with the given request timeout and user agent
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
	}
}

// Fetch downloads and parses the feed at url. Entries without a usable link are skipped,
// everything else maps verbatim into domain.RawItem. Any transport or parse failure
// is returned as *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]domain.RawItem, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	defer body.Close()

	parsed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("parse feed: %w", err)}
	}

	items := make([]domain.RawItem, 0, len(parsed.Items))
	for i, entry := range parsed.Items {
		if entry == nil {
			continue
		}
		link := entryLink(entry)
		if link == "" {
			lgr.Printf("[DEBUG] skip entry %d of %s without link, title %q", i, url, entry.Title)
			continue
		}

		item := domain.RawItem{
			Title:        entry.Title,
			Description:  entry.Description,
			Link:         link,
			PublishedRaw: entry.Published,
		}
		if item.Description == "" {
			item.Description = entry.Content
		}
		if item.PublishedRaw == "" {
			item.PublishedRaw = entry.Updated
		}
		items = append(items, item)
	}

	return items, nil
}

// get retrieves content from a URL, any non-200 response is an error
func (f *Fetcher) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	addBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// entryLink returns the best available URL of an entry, preferring the explicit link
// and falling back to a GUID which looks like an http(s) URL
func entryLink(entry *gofeed.Item) string {
	if link := strings.TrimSpace(entry.Link); link != "" {
		return link
	}
	for _, l := range entry.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	if guid := strings.TrimSpace(entry.GUID); strings.HasPrefix(guid, "http://") || strings.HasPrefix(guid, "https://") {
		return guid
	}
	return ""
}
