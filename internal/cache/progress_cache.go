package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"formassist/internal/model"

	"github.com/redis/go-redis/v9"
)

// ProgressCache holds the write-through answer progress of each session
type ProgressCache interface {
	SetProgress(ctx context.Context, sessionID, moduleID string, entries []model.ProgressEntry) error
	GetProgress(ctx context.Context, sessionID, moduleID string) ([]model.ProgressEntry, error)
	DeleteProgress(ctx context.Context, sessionID, moduleID string) error
}

type progressCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProgressCache creates a new progress cache
func NewProgressCache(client *redis.Client) ProgressCache {
	return &progressCache{
		client: client,
		ttl:    30 * 24 * time.Hour,
	}
}

// ProgressKey is the Redis key of one module's progress within a session
func ProgressKey(sessionID, moduleID string) string {
	return fmt.Sprintf("session:%s:form-progress-%s", sessionID, moduleID)
}

func (c *progressCache) SetProgress(ctx context.Context, sessionID, moduleID string, entries []model.ProgressEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ProgressKey(sessionID, moduleID), data, c.ttl).Err()
}

// GetProgress returns nil, nil when nothing was saved
func (c *progressCache) GetProgress(ctx context.Context, sessionID, moduleID string) ([]model.ProgressEntry, error) {
	data, err := c.client.Get(ctx, ProgressKey(sessionID, moduleID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []model.ProgressEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *progressCache) DeleteProgress(ctx context.Context, sessionID, moduleID string) error {
	return c.client.Del(ctx, ProgressKey(sessionID, moduleID)).Err()
}
