package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"formassist/internal/model"

	"github.com/redis/go-redis/v9"
)

// GuidanceCache stores generated guidance by prompt, so an unchanged draft
// is not sent to the generation service twice
type GuidanceCache interface {
	SetGuidance(ctx context.Context, prompt string, frag *model.ReviewFragment) error
	GetGuidance(ctx context.Context, prompt string) (*model.ReviewFragment, error)
}

type guidanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGuidanceCache creates a new guidance cache
func NewGuidanceCache(client *redis.Client) GuidanceCache {
	return &guidanceCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *guidanceCache) key(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "guidance:" + hex.EncodeToString(sum[:])
}

func (c *guidanceCache) SetGuidance(ctx context.Context, prompt string, frag *model.ReviewFragment) error {
	data, err := json.Marshal(frag)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(prompt), data, c.ttl).Err()
}

func (c *guidanceCache) GetGuidance(ctx context.Context, prompt string) (*model.ReviewFragment, error) {
	data, err := c.client.Get(ctx, c.key(prompt)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var frag model.ReviewFragment
	if err := json.Unmarshal([]byte(data), &frag); err != nil {
		return nil, err
	}
	return &frag, nil
}
