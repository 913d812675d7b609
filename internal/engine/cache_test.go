package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("transcript", "ABC123", "en")
		k2 := CacheKey("transcript", "ABC123", "en")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("transcript", "ABC123", "en")
		k2 := CacheKey("transcript", "ABC123", "de")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		if k := CacheKey("test"); !strings.HasPrefix(k, "yt:") {
			t.Errorf("expected yt: prefix, got %q", k)
		}
	})
}

func TestCacheDisabled(t *testing.T) {
	InitCache("", 0, 100, time.Minute)
	if CacheEnabled() {
		t.Fatal("CacheEnabled() = true with zero TTL")
	}
	ctx := context.Background()
	CacheSet(ctx, "k", []byte("v"))
	if _, ok := CacheGet(ctx, "k"); ok {
		t.Error("disabled cache returned a hit")
	}
}

func TestCacheGetSet(t *testing.T) {
	InitCache("", time.Minute, 100, 5*time.Minute)
	defer InitCache("", 0, 0, 0)

	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected cache miss on empty cache")
	}

	CacheStoreJSON(ctx, key, []Entry{{Text: "hello", Start: 1.5, Duration: 2}})

	got, ok := CacheLoadJSON[[]Entry](ctx, key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if len(got) != 1 || got[0].Text != "hello" || got[0].Start != 1.5 {
		t.Errorf("got %+v", got)
	}
}

func TestCacheLoadJSONDecodeError(t *testing.T) {
	InitCache("", time.Minute, 100, 5*time.Minute)
	defer InitCache("", 0, 0, 0)

	ctx := context.Background()
	CacheSet(ctx, "bad", []byte("not json"))
	if _, ok := CacheLoadJSON[[]Entry](ctx, "bad"); ok {
		t.Error("expected miss on undecodable entry")
	}
}

func TestCacheExpiration(t *testing.T) {
	InitCache("", time.Millisecond, 100, 5*time.Minute)
	defer InitCache("", 0, 0, 0)

	ctx := context.Background()
	key := CacheKey("test", "expiry")

	CacheSet(ctx, key, []byte("temp"))
	time.Sleep(5 * time.Millisecond)

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestCacheEviction(t *testing.T) {
	InitCache("", time.Minute, 3, 5*time.Minute)
	defer InitCache("", 0, 0, 0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		CacheSet(ctx, CacheKey("evict", fmt.Sprintf("item-%d", i)), []byte(fmt.Sprintf("v%d", i)))
	}

	count := 0
	transcriptCache.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 3 {
		t.Errorf("expected at most 3 entries after eviction, got %d", count)
	}
	if _, ok := CacheGet(ctx, CacheKey("evict", "item-4")); !ok {
		t.Error("newest entry was evicted")
	}
}

func TestCacheStats(t *testing.T) {
	InitCache("", time.Minute, 100, 5*time.Minute)
	defer InitCache("", 0, 0, 0)
	cacheHits.Store(0)
	cacheMisses.Store(0)

	ctx := context.Background()
	key := CacheKey("stats", "test")

	CacheGet(ctx, key)
	if _, misses := CacheStats(); misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}

	CacheSet(ctx, key, []byte("x"))
	CacheGet(ctx, key)

	hits, misses := CacheStats()
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}
