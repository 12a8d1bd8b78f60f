// Package repository provides the embedded SQLite article store. The link column is the
// primary key and the only consistency invariant: inserts of an already stored link are no-ops.
package repository

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

//go:embed schema.sql migrations.sql
var schemaFS embed.FS

// Config represents database configuration
type Config struct {
	DSN             string // full driver DSN, takes precedence over Path
	Path            string // database file location
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// dsn returns driver connection string for the config
func (c Config) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	path := c.Path
	if path == "" {
		path = "articles.db"
	}
	return fmt.Sprintf("file:%s?mode=rwc&_txlock=immediate&_pragma=busy_timeout(5000)", path)
}

// addedColumns are columns missing from tables created by older five-column schema
var addedColumns = []struct{ name, decl string }{
	{name: "published_at", decl: "INTEGER"},
	{name: "feed_url", decl: "TEXT DEFAULT ''"},
	{name: "created_at", decl: "INTEGER"},
}

// ArticleRepository is a durable keyed store of classified articles
type ArticleRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewArticleRepository opens the database, applies pragmas and initializes the schema
func NewArticleRepository(ctx context.Context, cfg Config) (*ArticleRepository, error) {
	db, err := sqlx.Open("sqlite", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000", // 5 second timeout for locks
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	r := &ArticleRepository{db: db, now: time.Now}
	if err := r.Initialize(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// Initialize creates the articles table if missing and migrates older layouts.
// It is idempotent and safe to call on every start.
func (r *ArticleRepository) Initialize(ctx context.Context) error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	if err := r.runMigrations(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *ArticleRepository) Close() error {
	return r.db.Close()
}

// Ping verifies the database connection
func (r *ArticleRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// runMigrations adds columns missing from legacy tables and applies migrations.sql
func (r *ArticleRepository) runMigrations(ctx context.Context) error {
	for _, col := range addedColumns {
		var count int
		err := r.db.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM pragma_table_info('articles') WHERE name = ?`, col.name)
		if err != nil {
			return fmt.Errorf("check %s column: %w", col.name, err)
		}
		if count > 0 {
			continue
		}
		lgr.Printf("[INFO] migrating articles table, adding column %s", col.name)
		if _, err := r.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE articles ADD COLUMN %s %s", col.name, col.decl)); err != nil {
			return fmt.Errorf("add %s column: %w", col.name, err)
		}
	}

	migrations, err := schemaFS.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	for _, stmt := range splitStatements(string(migrations)) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				continue
			}
			return fmt.Errorf("execute migration statement: %w", err)
		}
	}
	return nil
}

// splitStatements splits SQL text by semicolons, skipping comment-only lines
func splitStatements(sql string) []string {
	var statements []string
	var current strings.Builder
	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			statements = append(statements, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
