package cache

import (
	"context"
	"testing"
	"time"

	"formassist/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestProgressCache(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewProgressCache(client)
	ctx := context.Background()

	got, err := c.GetProgress(ctx, "s1", "uc")
	require.NoError(t, err)
	assert.Nil(t, got)

	entries := []model.ProgressEntry{
		{QuestionID: "claim_type", Rating: 1, Length: 1, Value: model.ScalarValue("new")},
		{QuestionID: "support_needs", Rating: 0, Length: 2, Value: model.ListValue("housing")},
		{QuestionID: "household", Rating: 1, Length: 1, Value: model.MapValue(map[string]string{"household_adults": "2"})},
	}
	require.NoError(t, c.SetProgress(ctx, "s1", "uc", entries))

	assert.True(t, mr.Exists("session:s1:form-progress-uc"))
	assert.Equal(t, 30*24*time.Hour, mr.TTL("session:s1:form-progress-uc"))

	got, err = c.GetProgress(ctx, "s1", "uc")
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	require.NoError(t, c.DeleteProgress(ctx, "s1", "uc"))
	got, err = c.GetProgress(ctx, "s1", "uc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProgressCacheCorruptBlob(t *testing.T) {
	mr, client := newTestRedis(t)
	require.NoError(t, mr.Set(ProgressKey("s1", "pip"), "not json"))

	_, err := NewProgressCache(client).GetProgress(context.Background(), "s1", "pip")
	assert.Error(t, err)
}

func TestSessionCache(t *testing.T) {
	_, client := newTestRedis(t)
	c := NewSessionCache(client)
	ctx := context.Background()

	got, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	sess := &model.Session{ID: "s1", ModuleID: "uc", Locale: model.LocaleWelsh, CreatedAt: time.Unix(1700000000, 0).UTC(), UpdatedAt: time.Unix(1700000000, 0).UTC()}
	require.NoError(t, c.Set(ctx, sess))

	got, err = c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	require.NoError(t, c.Delete(ctx, "s1"))
	got, err = c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGuidanceCache(t *testing.T) {
	_, client := newTestRedis(t)
	c := NewGuidanceCache(client)
	ctx := context.Background()

	got, err := c.GetGuidance(ctx, "prompt")
	require.NoError(t, err)
	assert.Nil(t, got)

	frag := &model.ReviewFragment{ImprovedAnswer: "Better", Tips: []string{"Add dates"}, Score: 70}
	require.NoError(t, c.SetGuidance(ctx, "prompt", frag))

	got, err = c.GetGuidance(ctx, "prompt")
	require.NoError(t, err)
	assert.Equal(t, frag, got)

	got, err = c.GetGuidance(ctx, "other prompt")
	require.NoError(t, err)
	assert.Nil(t, got)
}
