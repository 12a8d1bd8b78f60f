package server

import (
	"net/http"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsrake/pkg/repository"
)

const defaultRSSLimit = 100

// rssHandler serves RSS feed of stored articles, newest first.
// Supports both /rss and /rss/{category}
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	articles, err := s.articles.QueryAll(r.Context(), repository.QueryOpts{
		Order:    repository.OrderPublishedDesc,
		Category: category,
		Limit:    defaultRSSLimit,
	})
	if err != nil {
		lgr.Printf("[ERROR] failed to get articles for RSS: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	rss, err := s.generator.GenerateRSS(articles, category)
	if err != nil {
		lgr.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		lgr.Printf("[WARN] failed to write RSS response: %v", err)
	}
}
