package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/newsrake/pkg/classifier"
	"github.com/umputun/newsrake/pkg/domain"
	"github.com/umputun/newsrake/pkg/filter"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// Fetcher retrieves raw items of a single feed
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]domain.RawItem, error)
}

// Store persists classified items with insert-if-absent semantics keyed by link
type Store interface {
	InsertBatch(ctx context.Context, items []domain.ClassifiedItem) ([]bool, error)
}

// FeedProcessor runs one ingestion pass: for every configured feed it fetches entries,
// filters them by keywords and minimal date, classifies survivors and submits them to the store.
//
// Feeds are fetched concurrently (bounded by maxWorkers), store submissions are serialized.
// One feed failing to fetch or referencing an unknown classifier never aborts the run,
// a store failure does.
type FeedProcessor struct {
	fetcher     Fetcher
	store       Store
	feeds       []domain.FeedConfig
	classifiers classifier.Set
	filter      filter.ItemFilter
	maxWorkers  int

	writeMu sync.Mutex // single writer for store submissions
	now     func() time.Time
}

// FeedProcessorConfig holds configuration for FeedProcessor
type FeedProcessorConfig struct {
	Fetcher     Fetcher
	Store       Store
	Feeds       []domain.FeedConfig
	Classifiers classifier.Set
	MaxWorkers  int
}

// NewFeedProcessor creates a feed processor. Feeds are copied, so later changes
// of the caller's slice don't affect runs.
func NewFeedProcessor(cfg FeedProcessorConfig) *FeedProcessor {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 5
	}
	return &FeedProcessor{
		fetcher:     cfg.Fetcher,
		store:       cfg.Store,
		feeds:       copyFeeds(cfg.Feeds),
		classifiers: cfg.Classifiers,
		maxWorkers:  cfg.MaxWorkers,
		now:         time.Now,
	}
}

// Run processes all feeds and returns the aggregated summary. Feed results in the summary
// follow configuration order. The returned error is non-nil only if the store failed
// or ctx was canceled, in both cases the summary still reports what was done.
func (fp *FeedProcessor) Run(ctx context.Context) (domain.RunSummary, error) {
	summary := domain.RunSummary{StartedAt: fp.now()}
	lgr.Printf("[INFO] ingestion run started, %d feeds", len(fp.feeds))

	results := make([]domain.FeedResult, len(fp.feeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fp.maxWorkers)

	for i, f := range fp.feeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = domain.FeedResult{URL: f.URL, Name: f.Name, Err: fmt.Errorf("not processed: %w", err)}
				return nil
			}
			res, err := fp.processFeed(gctx, f)
			results[i] = res
			return err
		})
	}
	runErr := g.Wait()

	for _, r := range results {
		summary.Add(r)
	}
	summary.FinishedAt = fp.now()

	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}
	if runErr != nil {
		lgr.Printf("[WARN] ingestion run aborted after %v: %v; %s", summary.Duration(), runErr, summary)
		return summary, runErr
	}

	lgr.Printf("[INFO] ingestion run completed in %v: %s", summary.Duration(), summary)
	return summary, nil
}

// processFeed fetches, filters, classifies and stores items of a single feed.
// Returned error is set only for store failures which abort the whole run.
func (fp *FeedProcessor) processFeed(ctx context.Context, f domain.FeedConfig) (domain.FeedResult, error) {
	res := domain.FeedResult{URL: f.URL, Name: f.Name}
	feedID := f.Label()

	cls, ok := fp.classifiers.Get(f.Classifier)
	if !ok {
		res.Err = &domain.ConfigError{Feed: feedID, Classifier: f.Classifier}
		lgr.Printf("[WARN] skip feed %s: %v", feedID, res.Err)
		return res, nil
	}

	lgr.Printf("[DEBUG] fetching feed %s", feedID)
	items, err := fp.fetcher.Fetch(ctx, f.URL)
	if err != nil {
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			err = &domain.FetchError{URL: f.URL, Err: err}
		}
		res.Err = err
		lgr.Printf("[WARN] failed to fetch feed %s: %v", feedID, err)
		return res, nil
	}
	res.Fetched = len(items)

	classified := make([]domain.ClassifiedItem, 0, len(items))
	for _, item := range items {
		keep, err := fp.filter.Apply(item, f.Keywords, f.MinDate)
		if err != nil {
			warn := fmt.Sprintf("%s: %s: %v", feedID, item.Link, err)
			res.Warnings = append(res.Warnings, warn)
			lgr.Printf("[DEBUG] drop item, %s", warn)
		}
		if !keep {
			res.Dropped++
			continue
		}

		ci := domain.ClassifiedItem{
			RawItem:  item,
			Category: cls.Classify(item.Title, item.Description),
			FeedURL:  f.URL,
		}
		if published, err := filter.ParseDate(item.PublishedRaw); err == nil {
			ci.PublishedAt = &published
		}
		classified = append(classified, ci)
	}
	res.Kept = len(classified)

	if err := fp.submit(ctx, classified, &res); err != nil {
		return res, err
	}

	lgr.Printf("[DEBUG] feed %s: fetched %d, kept %d, inserted %d, duplicates %d",
		feedID, res.Fetched, res.Kept, res.Inserted, res.Duplicates)
	if res.Inserted > 0 {
		lgr.Printf("[INFO] added %d new items from feed %s", res.Inserted, feedID)
	}
	return res, nil
}

// submit writes classified items under the single-writer lock. Results of a canceled run
// are discarded before the write starts, a write which already started always completes.
func (fp *FeedProcessor) submit(ctx context.Context, items []domain.ClassifiedItem, res *domain.FeedResult) error {
	if len(items) == 0 {
		return nil
	}

	fp.writeMu.Lock()
	defer fp.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		res.Err = fmt.Errorf("discarded %d items: %w", len(items), err)
		return nil
	}

	inserted, err := fp.store.InsertBatch(context.WithoutCancel(ctx), items)
	if err != nil {
		var storeErr *domain.StoreWriteError
		if !errors.As(err, &storeErr) {
			err = &domain.StoreWriteError{Op: "insert batch", Err: err}
		}
		res.Err = err
		lgr.Printf("[ERROR] failed to store items of feed %s: %v", res.URL, err)
		return err
	}

	for _, ok := range inserted {
		if ok {
			res.Inserted++
			continue
		}
		res.Duplicates++
	}
	return nil
}

// copyFeeds makes a deep copy of feed configs
func copyFeeds(feeds []domain.FeedConfig) []domain.FeedConfig {
	res := make([]domain.FeedConfig, len(feeds))
	for i, f := range feeds {
		res[i] = f
		res[i].Keywords = append([]string(nil), f.Keywords...)
		if f.MinDate != nil {
			t := *f.MinDate
			res[i].MinDate = &t
		}
	}
	return res
}
