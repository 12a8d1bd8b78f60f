// Package filter implements per-feed keyword and minimum-date predicates for raw feed items.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/umputun/newsrake/pkg/domain"
)

// ItemFilter decides whether a raw item is kept. It holds no state and is safe for concurrent use.
type ItemFilter struct{}

// Apply returns true if the item passes both the keyword and the date predicate.
// An unparseable published date drops the item and is reported as *domain.DateParseError,
// callers treat it as a warning. Dates carrying a zone are compared with minDate as absolute
// instants, not by wall-clock time.
func (ItemFilter) Apply(item domain.RawItem, keywords []string, minDate *time.Time) (bool, error) {
	if !MatchKeywords(item, keywords) {
		return false, nil
	}

	if minDate == nil {
		return true, nil
	}

	published, err := ParseDate(item.PublishedRaw)
	if err != nil {
		return false, &domain.DateParseError{Raw: item.PublishedRaw, Err: err}
	}
	return !published.Before(*minDate), nil
}

// MatchKeywords reports whether any keyword is a case-insensitive substring of title and description.
// Empty or blank-only keyword set matches everything.
func MatchKeywords(item domain.RawItem, keywords []string) bool {
	text := ""
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if text == "" {
			text = strings.ToLower(item.Title + " " + item.Description)
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return text == "" // no usable keywords
}

// ParseDate parses a date string in any of the common feed formats.
// Values without a zone are interpreted as UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date format: %w", err)
	}
	return t, nil
}
