// Package db provides PostgreSQL storage for site builds and their rendered pages.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS site_builds (
	id           UUID PRIMARY KEY,
	base_path    TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	built        INTEGER NOT NULL DEFAULT 0,
	failed       INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS site_pages (
	build_id     UUID NOT NULL REFERENCES site_builds(id) ON DELETE CASCADE,
	path         TEXT NOT NULL,
	content_type TEXT NOT NULL,
	content      BYTEA NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (build_id, path)
);`

// EnsureSchema creates the build and page tables when they do not exist yet
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateBuild inserts a running build record with the given ID
func (db *DB) CreateBuild(ctx context.Context, id uuid.UUID, basePath string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO site_builds (id, base_path, status) VALUES ($1, $2, $3)`,
		id, basePath, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to create build: %w", err)
	}
	return nil
}

// CompleteBuild records the final status and counters of a build
func (db *DB) CompleteBuild(ctx context.Context, id uuid.UUID, status string, built, failed int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE site_builds SET status = $1, built = $2, failed = $3, completed_at = NOW() WHERE id = $4`,
		status, built, failed, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete build: %w", err)
	}
	return nil
}

// SavePage stores one rendered artifact of a build, replacing any previous content at the same path
func (db *DB) SavePage(ctx context.Context, buildID uuid.UUID, path, contentType string, content []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO site_pages (build_id, path, content_type, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (build_id, path) DO UPDATE SET content_type = $3, content = $4, created_at = NOW()`,
		buildID, path, contentType, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save page %s: %w", path, err)
	}
	return nil
}

// GetPage retrieves a stored page, or nil when absent
func (db *DB) GetPage(ctx context.Context, buildID uuid.UUID, path string) (*Page, error) {
	page := Page{BuildID: buildID, Path: path}
	err := db.pool.QueryRow(ctx,
		`SELECT content_type, content, created_at FROM site_pages WHERE build_id = $1 AND path = $2`,
		buildID, path,
	).Scan(&page.ContentType, &page.Content, &page.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get page %s: %w", path, err)
	}
	return &page, nil
}

// GetBuild retrieves a build by ID, or nil when absent
func (db *DB) GetBuild(ctx context.Context, id uuid.UUID) (*Build, error) {
	var b Build
	err := db.pool.QueryRow(ctx,
		`SELECT id, base_path, status, built, failed, created_at, completed_at
		 FROM site_builds WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.BasePath, &b.Status, &b.Built, &b.Failed, &b.CreatedAt, &b.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get build: %w", err)
	}
	return &b, nil
}

// ListBuilds retrieves recent builds, newest first
func (db *DB) ListBuilds(ctx context.Context, limit int) ([]Build, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, base_path, status, built, failed, created_at, completed_at
		 FROM site_builds ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var b Build
		if err := rows.Scan(&b.ID, &b.BasePath, &b.Status, &b.Built, &b.Failed, &b.CreatedAt, &b.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}
