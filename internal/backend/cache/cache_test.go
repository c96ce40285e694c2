package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jo-hoe/inventory/internal/backend/database"
	"github.com/redis/go-redis/v9"
)

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisListCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisListCache(client, "inventory", ttl)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func mustGeneration(t *testing.T, c ListCache) int64 {
	t.Helper()
	generation, err := c.Generation(context.Background())
	if err != nil {
		t.Fatalf("Generation error: %v", err)
	}
	return generation
}

func TestRedisListCache_MissThenHit(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	generation := mustGeneration(t, c)
	if generation != 0 {
		t.Fatalf("expected generation 0 on empty redis, got %d", generation)
	}
	_, ok, err := c.Load(ctx, generation)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if ok {
		t.Fatal("expected cache miss on empty redis")
	}

	description := "NVIDIA"
	created := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)
	list := []*database.Resource{
		{ID: 1, Name: "RTX 4090", Type: "GPU", Description: &description, CreatedAt: created, UpdatedAt: created},
	}
	if err := c.Store(ctx, generation, list); err != nil {
		t.Fatalf("Store error: %v", err)
	}
	if !mr.Exists("inventory:resources:list:0") {
		t.Fatal("expected namespaced key to exist in redis")
	}

	got, ok, err := c.Load(ctx, generation)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v; want hit", ok, err)
	}
	if len(got) != 1 || got[0].Name != "RTX 4090" || got[0].DescriptionOrEmpty() != "NVIDIA" {
		t.Fatalf("unexpected cached list: %+v", got)
	}
	if !got[0].CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", got[0].CreatedAt, created)
	}
}

func TestRedisListCache_EmptyListIsAHit(t *testing.T) {
	c, _ := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Store(ctx, 0, nil); err != nil {
		t.Fatalf("Store error: %v", err)
	}
	got, ok, err := c.Load(ctx, 0)
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v; want hit", ok, err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(got))
	}
}

func TestRedisListCache_InvalidateAdvancesGeneration(t *testing.T) {
	c, _ := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	before := mustGeneration(t, c)
	if err := c.Store(ctx, before, []*database.Resource{{ID: 1, Name: "a", Type: "b"}}); err != nil {
		t.Fatalf("Store error: %v", err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}

	after := mustGeneration(t, c)
	if after <= before {
		t.Fatalf("expected generation to advance, got %d -> %d", before, after)
	}
	if _, ok, _ := c.Load(ctx, after); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestRedisListCache_LateStoreOfOldGenerationIsNeverLoaded(t *testing.T) {
	c, _ := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	// a reader picks up the generation, then a writer invalidates before the reader stores
	readerGeneration := mustGeneration(t, c)
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}
	if err := c.Store(ctx, readerGeneration, []*database.Resource{}); err != nil {
		t.Fatalf("Store error: %v", err)
	}

	if _, ok, _ := c.Load(ctx, mustGeneration(t, c)); ok {
		t.Fatal("expected the old snapshot not to be served for the current generation")
	}
}

func TestRedisListCache_TTL(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Second*30)
	ctx := context.Background()

	if err := c.Store(ctx, 0, []*database.Resource{}); err != nil {
		t.Fatalf("Store error: %v", err)
	}
	mr.FastForward(time.Minute)
	if _, ok, _ := c.Load(ctx, 0); ok {
		t.Fatal("expected miss after ttl expired")
	}
}

func TestNewListCache(t *testing.T) {
	c, err := NewListCache(TypeNone, "inventory", "", "", 0, 0)
	if err != nil {
		t.Fatalf("NewListCache(none) error: %v", err)
	}
	if _, ok := c.(NoopListCache); !ok {
		t.Fatalf("expected NoopListCache, got %T", c)
	}

	if _, err := NewListCache("memcached", "inventory", "", "", 0, 0); err == nil {
		t.Fatal("expected error for unsupported cache type")
	}
}
