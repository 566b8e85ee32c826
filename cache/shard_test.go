package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/shard"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// countingShards serves a fixed shard and counts store reads.
type countingShards struct {
	castiel.ShardService
	castiel.ShardLinkingService

	shard *castiel.Shard
	reads int
}

func (s *countingShards) FindShardByID(_ context.Context, tenantID, id platform.ID) (*castiel.Shard, error) {
	s.reads++
	if s.shard == nil || s.shard.TenantID != tenantID || s.shard.ID != id {
		return nil, shard.ErrShardNotFound
	}
	cp := *s.shard
	return &cp, nil
}

func (s *countingShards) LinkShards(_ context.Context, _, _, childID platform.ID, relType string, _ map[string]string) (*castiel.Shard, error) {
	s.shard.Internal = append(s.shard.Internal, castiel.Relationship{ShardID: childID, Type: relType})
	cp := *s.shard
	return &cp, nil
}

func (s *countingShards) UnlinkShards(context.Context, platform.ID, platform.ID, platform.ID, string) (*castiel.Shard, error) {
	s.shard.Internal = nil
	cp := *s.shard
	return &cp, nil
}

func (s *countingShards) UpdateShard(_ context.Context, tenantID, id platform.ID, upd castiel.ShardUpdate) (*castiel.Shard, error) {
	if upd.Name != nil {
		s.shard.Name = *upd.Name
	}
	cp := *s.shard
	return &cp, nil
}

func (s *countingShards) DeleteShard(context.Context, platform.ID, platform.ID) error {
	return nil
}

func initShardCache(t *testing.T) (*ShardCache, *countingShards, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	inner := &countingShards{
		shard: &castiel.Shard{
			ID:       platform.ID(2),
			TenantID: platform.ID(1),
			TypeID:   platform.ID(3),
			Name:     "acme",
			Status:   castiel.ShardActive,
		},
	}

	return NewShardCache(zaptest.NewLogger(t), client, inner, time.Minute), inner, mr
}

func TestShardCache_ReadThrough(t *testing.T) {
	c, inner, _ := initShardCache(t)
	ctx := context.Background()

	sh, err := c.FindShardByID(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "acme", sh.Name)
	assert.Equal(t, 1, inner.reads)

	// Second read is served from redis.
	sh, err = c.FindShardByID(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "acme", sh.Name)
	assert.Equal(t, 1, inner.reads)
}

func TestShardCache_MissesAreNotCached(t *testing.T) {
	c, inner, _ := initShardCache(t)
	ctx := context.Background()

	_, err := c.FindShardByID(ctx, 1, 99)
	require.Error(t, err)
	_, err = c.FindShardByID(ctx, 1, 99)
	require.Error(t, err)
	assert.Equal(t, 2, inner.reads)
}

func TestShardCache_UpdateInvalidates(t *testing.T) {
	c, inner, _ := initShardCache(t)
	ctx := context.Background()

	_, err := c.FindShardByID(ctx, 1, 2)
	require.NoError(t, err)

	name := "acme-renamed"
	_, err = c.UpdateShard(ctx, 1, 2, castiel.ShardUpdate{Name: &name})
	require.NoError(t, err)

	sh, err := c.FindShardByID(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "acme-renamed", sh.Name)
	assert.Equal(t, 2, inner.reads)
}

func TestShardCache_LinkInvalidates(t *testing.T) {
	c, inner, _ := initShardCache(t)
	ctx := context.Background()

	sh, err := c.FindShardByID(ctx, 1, 2)
	require.NoError(t, err)
	require.Empty(t, sh.Internal)

	_, err = c.LinkShards(ctx, 1, 2, 5, "subsidiary", nil)
	require.NoError(t, err)

	// the cached relation set must not survive the link
	sh, err = c.FindShardByID(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, sh.Internal, 1)
	assert.Equal(t, platform.ID(5), sh.Internal[0].ShardID)
	assert.Equal(t, 2, inner.reads)

	_, err = c.UnlinkShards(ctx, 1, 2, 5, "subsidiary")
	require.NoError(t, err)

	sh, err = c.FindShardByID(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, sh.Internal)
	assert.Equal(t, 3, inner.reads)
}

func TestShardCache_RedisDownFallsBack(t *testing.T) {
	c, inner, mr := initShardCache(t)
	ctx := context.Background()
	mr.Close()

	sh, err := c.FindShardByID(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "acme", sh.Name)

	_, err = c.FindShardByID(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.reads)

	require.NoError(t, c.DeleteShard(ctx, 1, 2))
}

func TestSubscriber_DeletesPublishedKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sub := NewSubscriber(zaptest.NewLogger(t), client)
	require.NoError(t, sub.Open(context.Background()))
	t.Cleanup(func() { sub.Close() })

	key := shardKey(1, 2)
	require.NoError(t, client.Set(context.Background(), key, "cached", time.Minute).Err())

	require.NoError(t, client.Publish(context.Background(), InvalidationChannel,
		`{"key":"`+key+`","correlationID":"abc"}`).Err())

	require.Eventually(t, func() bool {
		err := client.Get(context.Background(), key).Err()
		return err == redis.Nil
	}, time.Second, 10*time.Millisecond)
}
