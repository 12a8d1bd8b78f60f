package domain

import "fmt"

// FetchError reports a network or parse failure for one feed
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DateParseError reports an unparseable published date on a single item
type DateParseError struct {
	Raw string
	Err error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("parse date %q: %v", e.Raw, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// ConfigError reports a feed referencing a classifier which is not configured
type ConfigError struct {
	Feed       string
	Classifier string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("feed %s: unknown classifier %q", e.Feed, e.Classifier)
}

// StoreWriteError reports the article store being unavailable or corrupt.
// It is fatal for the whole run.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }
