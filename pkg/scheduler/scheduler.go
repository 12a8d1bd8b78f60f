package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsrake/pkg/domain"
)

//go:generate moq -out mocks/ingester.go -pkg mocks -skip-ensure -fmt goimports . Ingester

// ErrRunInProgress is returned by RunNow if another run has not finished yet
var ErrRunInProgress = errors.New("ingestion run already in progress")

// ErrStopped is returned for runs requested after Stop was called
var ErrStopped = errors.New("scheduler stopped")

// Ingester performs one ingestion pass
type Ingester interface {
	Run(ctx context.Context) (domain.RunSummary, error)
}

// Scheduler triggers ingestion runs immediately on start and then at a fixed interval.
// Runs never overlap: a trigger firing while a run is active is skipped.
type Scheduler struct {
	ingester Ingester
	interval time.Duration

	running atomic.Bool
	wg      sync.WaitGroup // loop and every active run
	cancel  context.CancelFunc

	mu      sync.Mutex
	stopped bool
	last    *RunResult
}

// RunResult holds the outcome of a completed run
type RunResult struct {
	Summary domain.RunSummary
	Err     error
}

// Params defines scheduler parameters
type Params struct {
	Ingester Ingester
	Interval time.Duration
}

// NewScheduler creates a new scheduler instance, interval defaults to one hour
func NewScheduler(params Params) *Scheduler {
	if params.Interval <= 0 {
		params.Interval = time.Hour
	}
	return &Scheduler{
		ingester: params.Ingester,
		interval: params.Interval,
	}
}

// Start begins the scheduling loop in background, it stops on Stop or when ctx is canceled
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.loop(ctx)

	lgr.Printf("[INFO] scheduler started with interval %v", s.interval)
}

// Stop cancels the loop and waits for it and for every active run, including ones started
// by RunNow or StartRun. A store write already in progress completes. Runs requested after
// Stop are rejected with ErrStopped.
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// RunNow performs an ingestion run right away, returns ErrRunInProgress if one is active
func (s *Scheduler) RunNow(ctx context.Context) (domain.RunSummary, error) {
	if err := s.acquire(); err != nil {
		return domain.RunSummary{}, err
	}
	defer s.release()
	return s.execute(ctx)
}

// StartRun begins an ingestion run in background. The run slot is taken before it returns,
// ErrRunInProgress means nothing was started.
func (s *Scheduler) StartRun(ctx context.Context) error {
	if err := s.acquire(); err != nil {
		return err
	}
	go func() {
		defer s.release()
		_, err := s.execute(ctx)
		s.logRunError(ctx, err)
	}()
	return nil
}

// acquire takes the single run slot and registers the run with the wait group
func (s *Scheduler) acquire() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.running.Store(false)
		return ErrStopped
	}
	s.wg.Add(1)
	return nil
}

func (s *Scheduler) release() {
	s.running.Store(false)
	s.wg.Done()
}

// execute runs ingestion and records the outcome
func (s *Scheduler) execute(ctx context.Context) (domain.RunSummary, error) {
	summary, err := s.ingester.Run(ctx)

	s.mu.Lock()
	s.last = &RunResult{Summary: summary, Err: err}
	s.mu.Unlock()

	return summary, err
}

// Running reports whether a run is in progress
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// LastRun returns the outcome of the most recent run, false if nothing ran yet
func (s *Scheduler) LastRun() (RunResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return RunResult{}, false
	}
	return *s.last, true
}

// loop runs ingestion immediately and then on every tick until ctx is done
func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.trigger(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

// trigger runs ingestion once, failures are logged and retried on the next tick
func (s *Scheduler) trigger(ctx context.Context) {
	_, err := s.RunNow(ctx)
	s.logRunError(ctx, err)
}

func (s *Scheduler) logRunError(ctx context.Context, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrRunInProgress):
		lgr.Printf("[WARN] previous ingestion run still in progress, skipping this trigger")
	case errors.Is(err, ErrStopped), ctx.Err() != nil:
		lgr.Printf("[INFO] ingestion run interrupted: %v", err)
	default:
		lgr.Printf("[ERROR] ingestion run failed, will retry in %v: %v", s.interval, err)
	}
}
