package remote

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rpggio/sitetrack/internal/domain/project"
)

// RedisStore keeps one JSON document per project in a Redis hash named
// "<prefix>:projects", keyed by project id.
type RedisStore struct {
	client  *redis.Client
	key     string
	timeout time.Duration
	logger  *slog.Logger
}

// NewRedisStore wraps an existing client. A zero timeout disables the
// per-call deadline.
func NewRedisStore(client *redis.Client, prefix string, timeout time.Duration, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if prefix == "" {
		prefix = "sitetrack"
	}
	return &RedisStore{
		client:  client,
		key:     prefix + ":projects",
		timeout: timeout,
		logger:  logger,
	}
}

// Key returns the hash holding the project documents.
func (s *RedisStore) Key() string {
	return s.key
}

func (s *RedisStore) GetAll(ctx context.Context) ([]project.Project, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: hgetall %s: %w", project.ErrRemoteUnavailable, s.key, err)
	}
	return decodeAll(raw, s.logger), nil
}

func (s *RedisStore) Put(ctx context.Context, id string, proj project.Project) error {
	data, err := json.Marshal(proj)
	if err != nil {
		return fmt.Errorf("encode project %s: %w", id, err)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.HSet(ctx, s.key, id, data).Err(); err != nil {
		return fmt.Errorf("%w: hset %s: %w", project.ErrRemoteUnavailable, id, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.HDel(ctx, s.key, id).Err(); err != nil {
		return fmt.Errorf("%w: hdel %s: %w", project.ErrRemoteUnavailable, id, err)
	}
	return nil
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// decodeAll turns id → JSON document pairs into projects ordered by creation
// time then id. Documents that cannot be decoded are skipped.
func decodeAll(raw map[string]string, logger *slog.Logger) []project.Project {
	out := make([]project.Project, 0, len(raw))
	for id, doc := range raw {
		var p project.Project
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			if logger != nil {
				logger.Warn("skipping undecodable project document", "project_id", id, "error", err)
			}
			continue
		}
		if p.ID == "" {
			p.ID = id
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b project.Project) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
