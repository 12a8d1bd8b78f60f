package config

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"

	"github.com/umputun/newsrake/pkg/classifier"
	"github.com/umputun/newsrake/pkg/domain"
	"github.com/umputun/newsrake/pkg/filter"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	DBLocation string `yaml:"db_location" json:"db_location" jsonschema:"default=articles.db,description=Path to the SQLite database file"`

	Schedule struct {
		IntervalHours int `yaml:"interval_hours" json:"interval_hours" jsonschema:"default=1,minimum=1,description=Ingestion interval in hours"`
		MaxWorkers    int `yaml:"max_workers" json:"max_workers" jsonschema:"default=5,minimum=1,description=Maximum feeds fetched concurrently"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	Fetch struct {
		Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Feed request timeout"`
		UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=newsrake/1.0,description=User agent for feed requests"`
	} `yaml:"fetch" json:"fetch" jsonschema:"description=Feed fetching configuration"`

	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"description=HTTP server listen address, empty disables the server"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,description=Base URL for generated RSS feeds"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Feeds       []Feed                      `yaml:"feeds" json:"feeds" jsonschema:"required,minItems=1,description=Feeds to ingest"`
	Classifiers map[string]ClassifierConfig `yaml:"classifiers" json:"classifiers,omitempty" jsonschema:"description=Additional rule tables keyed by name"`
}

// Feed is a single configured feed source
type Feed struct {
	URL        string   `yaml:"url" json:"url" jsonschema:"required,format=uri,description=Feed URL"`
	Name       string   `yaml:"name" json:"name,omitempty" jsonschema:"description=Display name used in logs"`
	Keywords   []string `yaml:"keywords" json:"keywords,omitempty" jsonschema:"description=Case-insensitive keywords, an item must contain at least one"`
	MinDate    string   `yaml:"min_date" json:"min_date,omitempty" jsonschema:"description=Items published before this date are dropped"`
	StartDate  string   `yaml:"start_date" json:"start_date,omitempty" jsonschema:"description=Alias of min_date"`
	Classifier string   `yaml:"classifier" json:"classifier" jsonschema:"required,description=Name of the rule table used to classify items"`
}

// ClassifierConfig defines an ordered rule table
type ClassifierConfig struct {
	Fallback string       `yaml:"fallback" json:"fallback,omitempty" jsonschema:"default=Other,description=Category for items matching no rule"`
	Rules    []RuleConfig `yaml:"rules" json:"rules" jsonschema:"description=Rules in evaluation order, first match wins"`
}

// RuleConfig maps a category to its trigger keywords
type RuleConfig struct {
	Category string   `yaml:"category" json:"category" jsonschema:"required,description=Category label"`
	Keywords []string `yaml:"keywords" json:"keywords" jsonschema:"description=Trigger substrings, case-insensitive"`
}

// Load reads configuration from a YAML (or JSON) file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// schema validation is supplementary
		lgr.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.DBLocation == "" {
		c.DBLocation = "articles.db"
	}

	// set defaults for schedule
	if c.Schedule.IntervalHours == 0 {
		c.Schedule.IntervalHours = 1
	}
	if c.Schedule.MaxWorkers == 0 {
		c.Schedule.MaxWorkers = 5
	}

	// set defaults for fetch
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "newsrake/1.0"
	}

	// set defaults for server
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Schedule.IntervalHours < 1 {
		return fmt.Errorf("schedule.interval_hours must be a positive integer")
	}
	if cfg.Schedule.MaxWorkers < 1 {
		return fmt.Errorf("schedule.max_workers must be at least 1")
	}
	if cfg.Fetch.Timeout < time.Second {
		return fmt.Errorf("fetch.timeout must be at least 1 second")
	}
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	for i, f := range cfg.Feeds {
		if err := validateFeed(f); err != nil {
			return fmt.Errorf("feeds[%d]: %w", i, err)
		}
	}

	for name, c := range cfg.Classifiers {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("classifiers: empty name")
		}
		for i, r := range c.Rules {
			if strings.TrimSpace(r.Category) == "" {
				return fmt.Errorf("classifiers.%s.rules[%d]: category is required", name, i)
			}
		}
	}

	return nil
}

func validateFeed(f Feed) error {
	u, err := url.Parse(f.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", f.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url %q must be an absolute http(s) url", f.URL)
	}
	if f.MinDate != "" && f.StartDate != "" && f.MinDate != f.StartDate {
		return fmt.Errorf("both min_date and start_date set with different values")
	}
	if _, err := f.minDate(); err != nil {
		return err
	}
	return nil
}

// minDate parses the configured cutoff, start_date is accepted as an alias
func (f Feed) minDate() (*time.Time, error) {
	raw := f.MinDate
	if raw == "" {
		raw = f.StartDate
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := filter.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("min_date: %w", err)
	}
	return &t, nil
}

// FeedConfigs returns feeds converted to domain configs, in configuration order
func (c *Config) FeedConfigs() ([]domain.FeedConfig, error) {
	res := make([]domain.FeedConfig, 0, len(c.Feeds))
	for i, f := range c.Feeds {
		minDate, err := f.minDate()
		if err != nil {
			return nil, fmt.Errorf("feeds[%d]: %w", i, err)
		}
		res = append(res, domain.FeedConfig{
			URL:        f.URL,
			Name:       f.Name,
			Keywords:   append([]string(nil), f.Keywords...),
			MinDate:    minDate,
			Classifier: f.Classifier,
		})
	}
	return res, nil
}

// ClassifierSet returns built-in classifiers extended with the configured ones,
// a configured table replaces a built-in one with the same name
func (c *Config) ClassifierSet() (classifier.Set, error) {
	names := make([]string, 0, len(c.Classifiers))
	for name := range c.Classifiers {
		names = append(names, name)
	}
	sort.Strings(names)

	extra := make([]*classifier.Classifier, 0, len(names))
	for _, name := range names {
		cc := c.Classifiers[name]
		rules := make([]classifier.Rule, 0, len(cc.Rules))
		for _, r := range cc.Rules {
			rules = append(rules, classifier.Rule{Category: r.Category, Triggers: r.Keywords})
		}
		cls, err := classifier.New(name, rules, cc.Fallback)
		if err != nil {
			return classifier.Set{}, fmt.Errorf("build classifiers: %w", err)
		}
		extra = append(extra, cls)
	}

	set := classifier.Builtin().With(extra...)
	for _, f := range c.Feeds {
		if _, ok := set.Get(f.Classifier); !ok {
			lgr.Printf("[WARN] feed %s references unknown classifier %q, it will be skipped", f.URL, f.Classifier)
		}
	}
	return set, nil
}

// Interval returns the scheduling interval
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Schedule.IntervalHours) * time.Hour
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetBaseURL returns the public base URL used in generated feeds
func (c *Config) GetBaseURL() string {
	return c.Server.BaseURL
}
