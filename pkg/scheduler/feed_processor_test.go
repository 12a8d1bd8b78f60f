package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsrake/pkg/classifier"
	"github.com/umputun/newsrake/pkg/domain"
	"github.com/umputun/newsrake/pkg/scheduler/mocks"
)

// memStore returns a store mock keeping items in memory with insert-if-absent semantics
func memStore() (*mocks.StoreMock, func() map[string]domain.ClassifiedItem) {
	var mu sync.Mutex
	data := map[string]domain.ClassifiedItem{}
	store := &mocks.StoreMock{
		InsertBatchFunc: func(ctx context.Context, items []domain.ClassifiedItem) ([]bool, error) {
			mu.Lock()
			defer mu.Unlock()
			res := make([]bool, len(items))
			for i, item := range items {
				if _, ok := data[item.Link]; ok {
					continue
				}
				data[item.Link] = item
				res[i] = true
			}
			return res, nil
		},
	}
	snapshot := func() map[string]domain.ClassifiedItem {
		mu.Lock()
		defer mu.Unlock()
		res := make(map[string]domain.ClassifiedItem, len(data))
		for k, v := range data {
			res[k] = v
		}
		return res
	}
	return store, snapshot
}

// feedsFetcher returns a fetcher mock serving static items per url, unknown urls fail
func feedsFetcher(feeds map[string][]domain.RawItem) *mocks.FetcherMock {
	return &mocks.FetcherMock{
		FetchFunc: func(ctx context.Context, url string) ([]domain.RawItem, error) {
			items, ok := feeds[url]
			if !ok {
				return nil, &domain.FetchError{URL: url, Err: errors.New("unexpected status code: 404")}
			}
			return items, nil
		},
	}
}

func TestFeedProcessor_Run(t *testing.T) {
	fetcher := feedsFetcher(map[string][]domain.RawItem{
		"https://example.com/en.xml": {
			{Title: "Stock market rallies", Description: "investors cheer", Link: "https://example.com/1",
				PublishedRaw: "Mon, 02 Jan 2023 15:04:05 GMT"},
			{Title: "New football season", Description: "kick off", Link: "https://example.com/2",
				PublishedRaw: "2023-01-03T10:00:00Z"},
			{Title: "Gardening tips", Description: "spring is here", Link: "https://example.com/3"},
		},
	})
	store, snapshot := memStore()

	fp := NewFeedProcessor(FeedProcessorConfig{
		Fetcher:     fetcher,
		Store:       store,
		Feeds:       []domain.FeedConfig{{URL: "https://example.com/en.xml", Name: "en", Classifier: "en"}},
		Classifiers: classifier.Builtin(),
		MaxWorkers:  2,
	})

	summary, err := fp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 3, summary.Kept)
	assert.Equal(t, 0, summary.Dropped)
	assert.Equal(t, 3, summary.Classified)
	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 0, summary.Duplicates)
	require.Len(t, summary.Feeds, 1)
	assert.False(t, summary.Feeds[0].Failed())

	stored := snapshot()
	require.Len(t, stored, 3)
	assert.Equal(t, "Finance", stored["https://example.com/1"].Category)
	assert.Equal(t, "Sports", stored["https://example.com/2"].Category)
	assert.Equal(t, "Other", stored["https://example.com/3"].Category)
	assert.Equal(t, "https://example.com/en.xml", stored["https://example.com/1"].FeedURL)

	require.NotNil(t, stored["https://example.com/1"].PublishedAt)
	assert.Equal(t, time.Date(2023, 1, 2, 15, 4, 5, 0, time.UTC), stored["https://example.com/1"].PublishedAt.UTC())
	assert.Nil(t, stored["https://example.com/3"].PublishedAt)
	assert.Equal(t, "Mon, 02 Jan 2023 15:04:05 GMT", stored["https://example.com/1"].PublishedRaw)

	t.Run("second run is idempotent", func(t *testing.T) {
		summary, err := fp.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Inserted)
		assert.Equal(t, 3, summary.Duplicates)
		assert.Len(t, snapshot(), 3)
	})
}

func TestFeedProcessor_Run_KeywordsAndMinDate(t *testing.T) {
	minDate := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	fetcher := feedsFetcher(map[string][]domain.RawItem{
		"https://example.com/pt.xml": {
			{Title: "Governo aprova lei", Description: "nova proposta", Link: "https://example.com/lei",
				PublishedRaw: "2023-01-05T08:00:00Z"},
			{Title: "Governo antigo", Description: "arquivo", Link: "https://example.com/old",
				PublishedRaw: "2022-12-31T08:00:00Z"},
			{Title: "Receita de bolo", Description: "culinária", Link: "https://example.com/bolo",
				PublishedRaw: "2023-01-05T08:00:00Z"},
			{Title: "Governo sem data", Description: "sem data", Link: "https://example.com/nodate",
				PublishedRaw: "someday"},
		},
	})
	store, snapshot := memStore()

	fp := NewFeedProcessor(FeedProcessorConfig{
		Fetcher: fetcher,
		Store:   store,
		Feeds: []domain.FeedConfig{{URL: "https://example.com/pt.xml", Keywords: []string{"governo"},
			MinDate: &minDate, Classifier: "pt"}},
		Classifiers: classifier.Builtin(),
	})

	summary, err := fp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Fetched)
	assert.Equal(t, 1, summary.Kept)
	assert.Equal(t, 3, summary.Dropped)
	assert.Equal(t, 1, summary.Inserted)
	assert.Len(t, summary.Warnings, 1, "unparseable date reported as warning")
	require.Len(t, summary.Feeds[0].Warnings, 1)
	assert.Contains(t, summary.Feeds[0].Warnings[0], "https://example.com/nodate")
	assert.False(t, summary.Feeds[0].Failed(), "date warnings don't fail the feed")

	stored := snapshot()
	require.Len(t, stored, 1)
	assert.Equal(t, "Politics", stored["https://example.com/lei"].Category)
}

func TestFeedProcessor_Run_FetchFailureIsolated(t *testing.T) {
	fetcher := feedsFetcher(map[string][]domain.RawItem{
		"https://example.com/b.xml": {{Title: "Apple releases software", Link: "https://example.com/b1"}},
	})
	store, snapshot := memStore()

	fp := NewFeedProcessor(FeedProcessorConfig{
		Fetcher: fetcher,
		Store:   store,
		Feeds: []domain.FeedConfig{
			{URL: "https://example.com/a.xml", Classifier: "en"},
			{URL: "https://example.com/b.xml", Classifier: "en"},
		},
		Classifiers: classifier.Builtin(),
	})

	summary, err := fp.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Feeds, 2)
	assert.Equal(t, "https://example.com/a.xml", summary.Feeds[0].URL, "results follow config order")

	failed := summary.FailedFeeds()
	require.Len(t, failed, 1)
	var fetchErr *domain.FetchError
	require.ErrorAs(t, failed[0].Err, &fetchErr)
	assert.Equal(t, "https://example.com/a.xml", fetchErr.URL)

	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, "Technology", snapshot()["https://example.com/b1"].Category)
	assert.Len(t, fetcher.FetchCalls(), 2)
}

func TestFeedProcessor_Run_PlainFetchErrorWrapped(t *testing.T) {
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(ctx context.Context, url string) ([]domain.RawItem, error) {
			return nil, errors.New("connection refused")
		},
	}
	store, _ := memStore()
	fp := NewFeedProcessor(FeedProcessorConfig{Fetcher: fetcher, Store: store, Classifiers: classifier.Builtin(),
		Feeds: []domain.FeedConfig{{URL: "https://example.com/a.xml", Classifier: "en"}}})

	summary, err := fp.Run(context.Background())
	require.NoError(t, err)
	var fetchErr *domain.FetchError
	require.ErrorAs(t, summary.Feeds[0].Err, &fetchErr)
	assert.EqualError(t, fetchErr, "fetch https://example.com/a.xml: connection refused")
	assert.Empty(t, store.InsertBatchCalls())
}

func TestFeedProcessor_Run_UnknownClassifier(t *testing.T) {
	fetcher := feedsFetcher(map[string][]domain.RawItem{
		"https://example.com/a.xml": {{Title: "Economy news", Link: "https://example.com/a1"}},
		"https://example.com/b.xml": {{Title: "Economy news", Link: "https://example.com/b1"}},
	})
	store, snapshot := memStore()

	fp := NewFeedProcessor(FeedProcessorConfig{
		Fetcher: fetcher,
		Store:   store,
		Feeds: []domain.FeedConfig{
			{URL: "https://example.com/a.xml", Classifier: "klingon"},
			{URL: "https://example.com/b.xml", Classifier: "legacy"},
		},
		Classifiers: classifier.Builtin(),
	})

	summary, err := fp.Run(context.Background())
	require.NoError(t, err)

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, summary.Feeds[0].Err, &cfgErr)
	assert.Equal(t, "klingon", cfgErr.Classifier)
	assert.Equal(t, 0, summary.Feeds[0].Fetched)

	require.Len(t, fetcher.FetchCalls(), 1, "feed with unknown classifier is not fetched")
	assert.Equal(t, "https://example.com/b.xml", fetcher.FetchCalls()[0].URL)
	assert.Equal(t, "Finance", snapshot()["https://example.com/b1"].Category)
}

func TestFeedProcessor_Run_DuplicateLinksInFeed(t *testing.T) {
	fetcher := feedsFetcher(map[string][]domain.RawItem{
		"https://example.com/a.xml": {
			{Title: "Stock market first", Link: "https://example.com/same"},
			{Title: "Football second", Link: "https://example.com/same"},
		},
	})
	store, snapshot := memStore()
	fp := NewFeedProcessor(FeedProcessorConfig{Fetcher: fetcher, Store: store, Classifiers: classifier.Builtin(),
		Feeds: []domain.FeedConfig{{URL: "https://example.com/a.xml", Classifier: "en"}}})

	summary, err := fp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Duplicates)

	stored := snapshot()
	require.Len(t, stored, 1)
	assert.Equal(t, "Stock market first", stored["https://example.com/same"].Title, "first occurrence wins")
}

func TestFeedProcessor_Run_StoreFailureAbortsRun(t *testing.T) {
	fetcher := feedsFetcher(map[string][]domain.RawItem{
		"https://example.com/a.xml": {{Title: "one", Link: "https://example.com/a1"}},
	})
	store := &mocks.StoreMock{
		InsertBatchFunc: func(ctx context.Context, items []domain.ClassifiedItem) ([]bool, error) {
			return nil, errors.New("disk I/O error")
		},
	}
	fp := NewFeedProcessor(FeedProcessorConfig{Fetcher: fetcher, Store: store, Classifiers: classifier.Builtin(),
		Feeds: []domain.FeedConfig{{URL: "https://example.com/a.xml", Classifier: "en"}}})

	summary, err := fp.Run(context.Background())
	require.Error(t, err)
	var storeErr *domain.StoreWriteError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "insert batch", storeErr.Op)
	assert.Equal(t, 1, summary.Fetched)
	assert.Equal(t, 0, summary.Inserted)
	assert.Len(t, summary.FailedFeeds(), 1)
}

func TestFeedProcessor_Run_CanceledDiscardsResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(_ context.Context, url string) ([]domain.RawItem, error) {
			cancel() // shutdown requested while the feed is being fetched
			return []domain.RawItem{{Title: "late", Link: "https://example.com/late"}}, nil
		},
	}
	store, snapshot := memStore()
	fp := NewFeedProcessor(FeedProcessorConfig{Fetcher: fetcher, Store: store, Classifiers: classifier.Builtin(),
		Feeds: []domain.FeedConfig{{URL: "https://example.com/a.xml", Classifier: "en"}}})

	summary, err := fp.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, snapshot())
	assert.Empty(t, store.InsertBatchCalls())
	require.Len(t, summary.Feeds, 1)
	assert.ErrorIs(t, summary.Feeds[0].Err, context.Canceled)
}

func TestFeedProcessor_Run_SerializedWrites(t *testing.T) {
	feeds := map[string][]domain.RawItem{}
	cfgs := []domain.FeedConfig{}
	for _, u := range []string{"https://example.com/1.xml", "https://example.com/2.xml", "https://example.com/3.xml",
		"https://example.com/4.xml"} {
		feeds[u] = []domain.RawItem{{Title: "item", Link: u + "#item"}}
		cfgs = append(cfgs, domain.FeedConfig{URL: u, Classifier: "en"})
	}

	var active, maxActive int
	var mu sync.Mutex
	store := &mocks.StoreMock{
		InsertBatchFunc: func(ctx context.Context, items []domain.ClassifiedItem) ([]bool, error) {
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			return make([]bool, len(items)), nil
		},
	}

	fp := NewFeedProcessor(FeedProcessorConfig{Fetcher: feedsFetcher(feeds), Store: store, Feeds: cfgs,
		Classifiers: classifier.Builtin(), MaxWorkers: 4})
	summary, err := fp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Duplicates)
	assert.Equal(t, 1, maxActive, "store writes never overlap")
	assert.Len(t, store.InsertBatchCalls(), 4)
}

func TestNewFeedProcessor_CopiesFeeds(t *testing.T) {
	minDate := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	feeds := []domain.FeedConfig{{URL: "https://example.com/a.xml", Keywords: []string{"go"}, MinDate: &minDate}}
	fp := NewFeedProcessor(FeedProcessorConfig{Feeds: feeds})

	feeds[0].Keywords[0] = "rust"
	minDate = minDate.AddDate(1, 0, 0)

	assert.Equal(t, []string{"go"}, fp.feeds[0].Keywords)
	assert.Equal(t, 2023, fp.feeds[0].MinDate.Year())
	assert.Equal(t, 5, fp.maxWorkers)
}
