package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/umputun/newsrake/pkg/domain"
)

// Order defines QueryAll result ordering
type Order int

// supported orderings
const (
	OrderNone          Order = iota // insertion order
	OrderPublishedDesc              // newest first, articles with unknown date last
)

// QueryOpts defines QueryAll options
type QueryOpts struct {
	Order    Order
	Category string // empty means all categories
	Limit    int    // zero means no limit
}

// CategoryCount holds number of stored articles per category
type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Count    int64  `db:"count" json:"count"`
}

// articleSQL represents an article row
type articleSQL struct {
	Title       sql.NullString `db:"title"`
	Description sql.NullString `db:"description"`
	Link        string         `db:"link"`
	Published   sql.NullString `db:"published"`
	Category    sql.NullString `db:"category"`
	PublishedAt sql.NullInt64  `db:"published_at"`
	FeedURL     sql.NullString `db:"feed_url"`
	CreatedAt   sql.NullInt64  `db:"created_at"`
}

const insertArticleQuery = `
	INSERT INTO articles (title, description, link, published, category, published_at, feed_url, created_at)
	VALUES (:title, :description, :link, :published, :category, :published_at, :feed_url, :created_at)
	ON CONFLICT(link) DO NOTHING`

// InsertIfAbsent stores the item unless an article with the same link exists.
// A duplicate link is not an error: the stored article is left untouched and inserted is false.
// Storage failures are returned as *domain.StoreWriteError.
func (r *ArticleRepository) InsertIfAbsent(ctx context.Context, item domain.ClassifiedItem) (inserted bool, err error) {
	if item.Link == "" {
		return false, errors.New("insert article: empty link")
	}

	row := r.toSQL(item)
	err = withRetry(ctx, func() error {
		res, execErr := r.db.NamedExecContext(ctx, insertArticleQuery, row)
		if execErr != nil {
			if isLockError(execErr) {
				return execErr
			}
			return &criticalError{err: execErr}
		}
		affected, raErr := res.RowsAffected()
		if raErr != nil {
			return &criticalError{err: raErr}
		}
		inserted = affected == 1
		return nil
	})
	if err != nil {
		return false, &domain.StoreWriteError{Op: "insert article", Err: err}
	}
	return inserted, nil
}

// InsertBatch stores items in order inside a single transaction with the same no-op-on-duplicate
// semantics as InsertIfAbsent, so the first submitted copy of a link wins. Returned slice
// reports per item whether it was inserted. On failure nothing from the batch is stored.
func (r *ArticleRepository) InsertBatch(ctx context.Context, items []domain.ClassifiedItem) ([]bool, error) {
	if len(items) == 0 {
		return nil, nil
	}
	for i, item := range items {
		if item.Link == "" {
			return nil, fmt.Errorf("insert batch: item %d has empty link", i)
		}
	}

	var result []bool
	err := withRetry(ctx, func() error {
		res, txErr := r.insertTx(ctx, items)
		if txErr != nil {
			if isLockError(txErr) {
				return txErr
			}
			return &criticalError{err: txErr}
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, &domain.StoreWriteError{Op: "insert batch", Err: err}
	}
	return result, nil
}

// insertTx runs a single batch attempt within a transaction
func (r *ArticleRepository) insertTx(ctx context.Context, items []domain.ClassifiedItem) (res []bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareNamedContext(ctx, insertArticleQuery)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	res = make([]bool, len(items))
	for i, item := range items {
		result, execErr := stmt.ExecContext(ctx, r.toSQL(item))
		if execErr != nil {
			return nil, fmt.Errorf("insert %s: %w", item.Link, execErr)
		}
		affected, raErr := result.RowsAffected()
		if raErr != nil {
			return nil, fmt.Errorf("rows affected: %w", raErr)
		}
		res[i] = affected == 1
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

// QueryAll returns all stored articles, eagerly materialized
func (r *ArticleRepository) QueryAll(ctx context.Context, opts QueryOpts) ([]domain.Article, error) {
	query := `SELECT title, description, link, published, category, published_at, feed_url, created_at FROM articles`
	var args []interface{}
	if opts.Category != "" {
		query += ` WHERE category = ?`
		args = append(args, opts.Category)
	}

	switch opts.Order {
	case OrderPublishedDesc:
		query += ` ORDER BY published_at IS NULL, published_at DESC, rowid DESC`
	default:
		query += ` ORDER BY rowid`
	}

	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	var rows []articleSQL
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}

	res := make([]domain.Article, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toDomain())
	}
	return res, nil
}

// Get returns a single article by link, sql.ErrNoRows if not found
func (r *ArticleRepository) Get(ctx context.Context, link string) (*domain.Article, error) {
	var row articleSQL
	err := r.db.GetContext(ctx, &row,
		`SELECT title, description, link, published, category, published_at, feed_url, created_at
		FROM articles WHERE link = ?`, link)
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", link, err)
	}
	article := row.toDomain()
	return &article, nil
}

// Count returns the number of stored articles
func (r *ArticleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM articles`); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

// Categories returns stored article counts per category, most populated first
func (r *ArticleRepository) Categories(ctx context.Context) ([]CategoryCount, error) {
	var res []CategoryCount
	err := r.db.SelectContext(ctx, &res,
		`SELECT COALESCE(category, '') AS category, COUNT(*) AS count FROM articles
		GROUP BY COALESCE(category, '') ORDER BY count DESC, category`)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	return res, nil
}

// toSQL converts a classified item to a database row
func (r *ArticleRepository) toSQL(item domain.ClassifiedItem) articleSQL {
	row := articleSQL{
		Title:       sql.NullString{String: item.Title, Valid: true},
		Description: sql.NullString{String: item.Description, Valid: true},
		Link:        item.Link,
		Published:   sql.NullString{String: item.PublishedRaw, Valid: true},
		Category:    sql.NullString{String: item.Category, Valid: true},
		FeedURL:     sql.NullString{String: item.FeedURL, Valid: true},
		CreatedAt:   sql.NullInt64{Int64: r.now().Unix(), Valid: true},
	}
	if item.PublishedAt != nil {
		row.PublishedAt = sql.NullInt64{Int64: item.PublishedAt.Unix(), Valid: true}
	}
	return row
}

// toDomain converts a database row to domain.Article
func (a articleSQL) toDomain() domain.Article {
	res := domain.Article{
		Title:       a.Title.String,
		Description: a.Description.String,
		Link:        a.Link,
		Published:   a.Published.String,
		Category:    a.Category.String,
		FeedURL:     a.FeedURL.String,
	}
	if a.PublishedAt.Valid {
		t := time.Unix(a.PublishedAt.Int64, 0).UTC()
		res.PublishedAt = &t
	}
	if a.CreatedAt.Valid {
		res.CreatedAt = time.Unix(a.CreatedAt.Int64, 0).UTC()
	}
	return res
}
