package domain

import (
	"errors"
	"fmt"
	"time"
)

// FeedResult holds the outcome of processing a single feed within a run
type FeedResult struct {
	URL        string
	Name       string
	Fetched    int
	Kept       int
	Dropped    int
	Inserted   int
	Duplicates int
	Warnings   []string
	Err        error
}

// Failed reports whether the feed could not be processed
func (r FeedResult) Failed() bool {
	return r.Err != nil
}

// RunSummary aggregates the results of one ingestion pass over all feeds
type RunSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	Kept       int
	Dropped    int
	Classified int
	Inserted   int
	Duplicates int
	Warnings   []string
	Feeds      []FeedResult
}

// Add merges a feed result into the summary totals
func (s *RunSummary) Add(r FeedResult) {
	s.Fetched += r.Fetched
	s.Kept += r.Kept
	s.Dropped += r.Dropped
	s.Inserted += r.Inserted
	s.Duplicates += r.Duplicates
	// items of a feed which failed on store write were classified before the write
	var storeErr *StoreWriteError
	if !r.Failed() || errors.As(r.Err, &storeErr) {
		s.Classified += r.Kept
	}
	s.Warnings = append(s.Warnings, r.Warnings...)
	s.Feeds = append(s.Feeds, r)
}

// FailedFeeds returns results of feeds which failed
func (s RunSummary) FailedFeeds() []FeedResult {
	var res []FeedResult
	for _, f := range s.Feeds {
		if f.Failed() {
			res = append(res, f)
		}
	}
	return res
}

// Succeeded returns results of feeds processed without errors
func (s RunSummary) Succeeded() []FeedResult {
	var res []FeedResult
	for _, f := range s.Feeds {
		if !f.Failed() {
			res = append(res, f)
		}
	}
	return res
}

// Duration returns how long the run took
func (s RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// String returns a one-line report of the run
func (s RunSummary) String() string {
	return fmt.Sprintf("feeds: %d ok, %d failed; items: fetched %d, kept %d, dropped %d, classified %d, inserted %d, duplicates %d, warnings %d",
		len(s.Succeeded()), len(s.FailedFeeds()), s.Fetched, s.Kept, s.Dropped, s.Classified, s.Inserted, s.Duplicates, len(s.Warnings))
}
