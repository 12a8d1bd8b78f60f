package domain

import "time"

// FeedConfig describes one configured feed source
type FeedConfig struct {
	URL        string
	Name       string     // optional human-readable label
	Keywords   []string   // case-insensitive, empty means no keyword filter
	MinDate    *time.Time // items published strictly before this are dropped, nil disables
	Classifier string     // name of the rule table to apply
}

// Label returns a human-readable identifier for the feed
func (f FeedConfig) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return f.URL
}
