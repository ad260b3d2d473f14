package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/repository"
)

// ProjectCache implements project.LocalCache as a single named slot in the
// cache_slots table.
type ProjectCache struct {
	db  *DB
	key string
}

// NewProjectCache creates a cache bound to the given slot key.
func NewProjectCache(db *DB, key string) *ProjectCache {
	return &ProjectCache{db: db, key: key}
}

// Read returns the cached project set. The bool is false when the slot has
// never been written.
func (c *ProjectCache) Read(ctx context.Context) ([]project.Project, bool, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM cache_slots WHERE key = ?`, c.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapBusy(err, "read", c.key)
	}

	var projects []project.Project
	if err := json.Unmarshal([]byte(payload), &projects); err != nil {
		return nil, false, fmt.Errorf("%w: cache slot %s: %v", repository.ErrCorrupt, c.key, err)
	}
	return projects, true, nil
}

// Write replaces the slot contents with projects.
func (c *ProjectCache) Write(ctx context.Context, projects []project.Project) error {
	if projects == nil {
		projects = []project.Project{}
	}
	payload, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("failed to encode cache slot %s: %w", c.key, err)
	}

	query := `
		INSERT INTO cache_slots (key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`
	if _, err := c.db.ExecContext(ctx, query, c.key, string(payload), time.Now().UTC()); err != nil {
		return wrapBusy(err, "write", c.key)
	}
	return nil
}

// UpdatedAt reports when the slot was last written.
func (c *ProjectCache) UpdatedAt(ctx context.Context) (time.Time, error) {
	var updated time.Time
	err := c.db.QueryRowContext(ctx,
		`SELECT updated_at FROM cache_slots WHERE key = ?`, c.key).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, repository.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read cache slot %s: %w", c.key, err)
	}
	return updated, nil
}
