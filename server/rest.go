package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"

	"github.com/umputun/newsrake/pkg/domain"
	"github.com/umputun/newsrake/pkg/repository"
	"github.com/umputun/newsrake/pkg/scheduler"
)

const (
	defaultArticlesLimit = 100
	maxArticlesLimit     = 1000
)

type articleView struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Link        string     `json:"link"`
	Published   string     `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Category    string     `json:"category"`
	FeedURL     string     `json:"feed_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type feedView struct {
	URL        string   `json:"url"`
	Name       string   `json:"name,omitempty"`
	Fetched    int      `json:"fetched"`
	Kept       int      `json:"kept"`
	Dropped    int      `json:"dropped"`
	Inserted   int      `json:"inserted"`
	Duplicates int      `json:"duplicates"`
	Warnings   []string `json:"warnings,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type runView struct {
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Duration   string     `json:"duration"`
	Fetched    int        `json:"fetched"`
	Kept       int        `json:"kept"`
	Dropped    int        `json:"dropped"`
	Classified int        `json:"classified"`
	Inserted   int        `json:"inserted"`
	Duplicates int        `json:"duplicates"`
	Warnings   int        `json:"warnings"`
	Error      string     `json:"error,omitempty"`
	Feeds      []feedView `json:"feeds"`
}

// statusHandler returns server status with the outcome of the last ingestion run
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	count, err := s.articles.Count(r.Context())
	if err != nil {
		rest.SendErrorJSON(w, r, lgr.Default(), http.StatusInternalServerError, err, "can't count articles")
		return
	}

	status := rest.JSON{
		"status":   "ok",
		"version":  s.version,
		"time":     time.Now().UTC(),
		"articles": count,
		"running":  s.runner.Running(),
	}
	if last, ok := s.runner.LastRun(); ok {
		status["last_run"] = makeRunView(last)
	}
	rest.RenderJSON(w, status)
}

// articlesHandler lists stored articles, optionally filtered by category
func (s *Server) articlesHandler(w http.ResponseWriter, r *http.Request) {
	opts := repository.QueryOpts{Category: r.URL.Query().Get("category"), Order: repository.OrderPublishedDesc}

	switch r.URL.Query().Get("order") {
	case "", "published":
	case "stored":
		opts.Order = repository.OrderNone
	default:
		rest.SendErrorJSON(w, r, lgr.Default(), http.StatusBadRequest, fmt.Errorf("order %q", r.URL.Query().Get("order")),
			"order must be published or stored")
		return
	}

	opts.Limit = defaultArticlesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			rest.SendErrorJSON(w, r, lgr.Default(), http.StatusBadRequest, fmt.Errorf("limit %q", v), "invalid limit")
			return
		}
		opts.Limit = min(limit, maxArticlesLimit)
	}

	articles, err := s.articles.QueryAll(r.Context(), opts)
	if err != nil {
		rest.SendErrorJSON(w, r, lgr.Default(), http.StatusInternalServerError, err, "can't load articles")
		return
	}

	res := make([]articleView, 0, len(articles))
	for _, a := range articles {
		res = append(res, articleView{
			Title:       a.Title,
			Description: s.sanitizer.Sanitize(a.Description),
			Link:        a.Link,
			Published:   a.Published,
			PublishedAt: a.PublishedAt,
			Category:    a.Category,
			FeedURL:     a.FeedURL,
			CreatedAt:   a.CreatedAt,
		})
	}
	rest.RenderJSON(w, res)
}

// categoriesHandler returns categories with article counts
func (s *Server) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	cats, err := s.articles.Categories(r.Context())
	if err != nil {
		rest.SendErrorJSON(w, r, lgr.Default(), http.StatusInternalServerError, err, "can't load categories")
		return
	}
	res := make([]rest.JSON, 0, len(cats))
	for _, c := range cats {
		res = append(res, rest.JSON{"category": c.Category, "count": c.Count})
	}
	rest.RenderJSON(w, res)
}

// runHandler starts an ingestion run in background, conflicts with a run already in progress
func (s *Server) runHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.StartRun(s.runContext()); err != nil {
		if errors.Is(err, scheduler.ErrRunInProgress) {
			rest.SendErrorJSON(w, r, lgr.Default(), http.StatusConflict, err, "ingestion run already in progress")
			return
		}
		rest.SendErrorJSON(w, r, lgr.Default(), http.StatusServiceUnavailable, err, "can't start ingestion run")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"status":"started"}` + "\n"))
}

func makeRunView(res scheduler.RunResult) runView {
	v := runView{
		StartedAt:  res.Summary.StartedAt,
		FinishedAt: res.Summary.FinishedAt,
		Duration:   res.Summary.Duration().String(),
		Fetched:    res.Summary.Fetched,
		Kept:       res.Summary.Kept,
		Dropped:    res.Summary.Dropped,
		Classified: res.Summary.Classified,
		Inserted:   res.Summary.Inserted,
		Duplicates: res.Summary.Duplicates,
		Warnings:   len(res.Summary.Warnings),
		Feeds:      make([]feedView, 0, len(res.Summary.Feeds)),
	}
	if res.Err != nil {
		v.Error = res.Err.Error()
	}
	for _, f := range res.Summary.Feeds {
		v.Feeds = append(v.Feeds, makeFeedView(f))
	}
	return v
}

func makeFeedView(f domain.FeedResult) feedView {
	v := feedView{
		URL:        f.URL,
		Name:       f.Name,
		Fetched:    f.Fetched,
		Kept:       f.Kept,
		Dropped:    f.Dropped,
		Inserted:   f.Inserted,
		Duplicates: f.Duplicates,
		Warnings:   f.Warnings,
	}
	if f.Err != nil {
		v.Error = f.Err.Error()
	}
	return v
}
