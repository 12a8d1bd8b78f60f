package feed

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/umputun/newsrake/pkg/domain"
)

// Generator creates RSS feeds from stored articles
type Generator struct {
	baseURL string
	now     func() time.Time
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// GenerateRSS creates an RSS 2.0 feed from stored articles, optionally scoped to one category
func (g *Generator) GenerateRSS(articles []domain.Article, category string) (string, error) {
	title := "newsrake - all categories"
	selfLink := g.baseURL + "/rss"
	if category != "" {
		title = "newsrake - " + category
		selfLink = fmt.Sprintf("%s/rss/%s", g.baseURL, url.PathEscape(category))
	}

	items := make([]*RSSItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, g.convertToRSSItem(a))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   "Filtered and classified articles",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: g.now().Format(time.RFC1123Z),
			Items:         items,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}

// convertToRSSItem converts a stored article to an RSS item, published date stays in its original form
func (g *Generator) convertToRSSItem(a domain.Article) *RSSItem {
	item := &RSSItem{
		Title:       a.Title,
		Link:        a.Link,
		GUID:        a.Link,
		Description: a.Description,
		PubDate:     a.Published,
	}
	if a.Category != "" {
		item.Categories = []string{a.Category}
	}
	return item
}
