package domain

import "time"

// RawItem is a single feed entry as fetched, before any interpretation
type RawItem struct {
	Title        string
	Description  string // raw markup
	Link         string // canonical URL, global unique identifier
	PublishedRaw string // source-provided date string, format varies by feed
}

// ClassifiedItem is a raw item with an assigned category, the unit submitted to storage
type ClassifiedItem struct {
	RawItem
	Category    string
	PublishedAt *time.Time // best-effort parse of PublishedRaw, used for ordering only
	FeedURL     string
}

// Article is a persisted item, keyed by Link
type Article struct {
	Title       string
	Description string
	Link        string
	Published   string // original raw form, not reparsed
	Category    string
	PublishedAt *time.Time
	FeedURL     string
	CreatedAt   time.Time
}
