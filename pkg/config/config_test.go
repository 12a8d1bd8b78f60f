package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configContent := `
db_location: /tmp/news.db
schedule:
  interval_hours: 6
  max_workers: 3
fetch:
  timeout: 10s
  user_agent: test-agent
server:
  listen: ":9090"
  timeout: 45s
  base_url: https://news.example.com

feeds:
  - url: https://example.com/feed1.xml
    name: Feed1
    keywords: [governo, economia]
    start_date: "2023-01-02"
    classifier: pt
  - url: https://example.com/feed2.xml
    min_date: "2023-01-05T10:00:00Z"
    classifier: mine

classifiers:
  mine:
    fallback: Misc
    rules:
      - category: Golang
        keywords: [golang, gopher]
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "/tmp/news.db", cfg.DBLocation)
		assert.Equal(t, 6*time.Hour, cfg.Interval())
		assert.Equal(t, 3, cfg.Schedule.MaxWorkers)
		assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, "test-agent", cfg.Fetch.UserAgent)
		listen, timeout := cfg.GetServerConfig()
		assert.Equal(t, ":9090", listen)
		assert.Equal(t, 45*time.Second, timeout)
		assert.Equal(t, "https://news.example.com", cfg.GetBaseURL())

		feeds, err := cfg.FeedConfigs()
		require.NoError(t, err)
		require.Len(t, feeds, 2)
		assert.Equal(t, "https://example.com/feed1.xml", feeds[0].URL)
		assert.Equal(t, "Feed1", feeds[0].Name)
		assert.Equal(t, []string{"governo", "economia"}, feeds[0].Keywords)
		require.NotNil(t, feeds[0].MinDate)
		assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), feeds[0].MinDate.UTC())
		assert.Equal(t, "pt", feeds[0].Classifier)
		require.NotNil(t, feeds[1].MinDate)
		assert.Equal(t, time.Date(2023, 1, 5, 10, 0, 0, 0, time.UTC), feeds[1].MinDate.UTC())

		set, err := cfg.ClassifierSet()
		require.NoError(t, err)
		mine, ok := set.Get("mine")
		require.True(t, ok)
		assert.Equal(t, "Golang", mine.Classify("Gopher news", ""))
		assert.Equal(t, "Misc", mine.Classify("weather", ""))
		_, ok = set.Get("pt")
		assert.True(t, ok, "built-in tables are available")
	})

	t.Run("defaults", func(t *testing.T) {
		configContent := `
feeds:
  - url: https://example.com/feed.xml
    classifier: en
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)

		assert.Equal(t, "articles.db", cfg.DBLocation)
		assert.Equal(t, time.Hour, cfg.Interval())
		assert.Equal(t, 5, cfg.Schedule.MaxWorkers)
		assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, "newsrake/1.0", cfg.Fetch.UserAgent)
		assert.Empty(t, cfg.Server.Listen, "server disabled by default")
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)

		feeds, err := cfg.FeedConfigs()
		require.NoError(t, err)
		assert.Nil(t, feeds[0].MinDate)
		assert.Empty(t, feeds[0].Keywords)
	})

	t.Run("json document", func(t *testing.T) {
		configContent := `{"db_location": "articles.db", "schedule": {"interval_hours": 2}, ` +
			`"feeds": [{"url": "https://example.com/feed.xml", "keywords": ["mercado"], "start_date": "2023-01-01", ` +
			`"classifier": "finance"}]}`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, cfg.Interval())

		set, err := cfg.ClassifierSet()
		require.NoError(t, err)
		_, ok := set.Get("finance")
		assert.True(t, ok, "topic names resolve to the built-in table")
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("NEWSRAKE_TEST_DB", "/var/lib/newsrake/articles.db")
		configContent := `
db_location: ${NEWSRAKE_TEST_DB}
feeds:
  - url: https://example.com/feed.xml
    classifier: en
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/newsrake/articles.db", cfg.DBLocation)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("/nonexistent/config.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "feeds: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "no feeds",
			content: "db_location: x.db\n",
			errMsg:  "at least one feed is required",
		},
		{
			name:    "negative interval",
			content: "schedule:\n  interval_hours: -1\nfeeds:\n  - url: https://example.com/f.xml\n    classifier: en\n",
			errMsg:  "interval_hours must be a positive integer",
		},
		{
			name:    "relative url",
			content: "feeds:\n  - url: /feed.xml\n    classifier: en\n",
			errMsg:  "must be an absolute http(s) url",
		},
		{
			name:    "ftp url",
			content: "feeds:\n  - url: ftp://example.com/feed.xml\n    classifier: en\n",
			errMsg:  "must be an absolute http(s) url",
		},
		{
			name:    "bad min_date",
			content: "feeds:\n  - url: https://example.com/f.xml\n    min_date: not a date\n    classifier: en\n",
			errMsg:  "min_date",
		},
		{
			name: "conflicting dates",
			content: "feeds:\n  - url: https://example.com/f.xml\n    min_date: 2023-01-01\n    start_date: 2023-02-01\n" +
				"    classifier: en\n",
			errMsg: "both min_date and start_date",
		},
		{
			name: "rule without category",
			content: "feeds:\n  - url: https://example.com/f.xml\n    classifier: x\nclassifiers:\n  x:\n    rules:\n" +
				"      - keywords: [a]\n",
			errMsg: "category is required",
		},
		{
			name:    "short fetch timeout",
			content: "fetch:\n  timeout: 10ms\nfeeds:\n  - url: https://example.com/f.xml\n    classifier: en\n",
			errMsg:  "fetch.timeout must be at least 1 second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_ClassifierSet(t *testing.T) {
	t.Run("configured table overrides built-in", func(t *testing.T) {
		cfg := &Config{Classifiers: map[string]ClassifierConfig{
			"en": {Rules: []RuleConfig{{Category: "Weather", Keywords: []string{"rain"}}}},
		}}
		set, err := cfg.ClassifierSet()
		require.NoError(t, err)
		c, ok := set.Get("en")
		require.True(t, ok)
		assert.Equal(t, "Weather", c.Classify("Rain expected", ""))
		assert.Equal(t, "Other", c.Classify("Stock market rallies", ""))
	})

	t.Run("duplicate category", func(t *testing.T) {
		cfg := &Config{Classifiers: map[string]ClassifierConfig{
			"dup": {Rules: []RuleConfig{{Category: "A", Keywords: []string{"x"}}, {Category: "a", Keywords: []string{"y"}}}},
		}}
		_, err := cfg.ClassifierSet()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "classifier dup")
	})

	t.Run("unknown classifier is not a load error", func(t *testing.T) {
		cfg := &Config{Feeds: []Feed{{URL: "https://example.com/f.xml", Classifier: "klingon"}}}
		set, err := cfg.ClassifierSet()
		require.NoError(t, err)
		_, ok := set.Get("klingon")
		assert.False(t, ok)
	})
}

func TestConfig_FeedConfigsCopiesKeywords(t *testing.T) {
	cfg := &Config{Feeds: []Feed{{URL: "https://example.com/f.xml", Keywords: []string{"go"}, Classifier: "en"}}}
	feeds, err := cfg.FeedConfigs()
	require.NoError(t, err)
	feeds[0].Keywords[0] = "rust"
	assert.Equal(t, "go", cfg.Feeds[0].Keywords[0])
}
