package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestLikeCacheCountRoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb, _ := newTestClient(t)
	cache := NewLikeCacheRepository(rdb)

	if _, hit, err := cache.GetLikeCountCached(ctx, 1); err != nil || hit {
		t.Fatalf("cold cache hit=%v err=%v", hit, err)
	}
	gen, err := cache.Generation(ctx, 1)
	if err != nil || gen != 0 {
		t.Fatalf("gen=%d err=%v", gen, err)
	}
	if ok, err := cache.SetLikeCount(ctx, 1, 3, gen); err != nil || !ok {
		t.Fatalf("set ok=%v err=%v", ok, err)
	}
	n, hit, err := cache.GetLikeCountCached(ctx, 1)
	if err != nil || !hit || n != 3 {
		t.Fatalf("count=%d hit=%v err=%v", n, hit, err)
	}
	if err := cache.Evict(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := cache.GetLikeCountCached(ctx, 1); hit {
		t.Fatal("count key survived evict")
	}
}

func TestLikeCacheRejectsWritesFromOldGeneration(t *testing.T) {
	ctx := context.Background()
	rdb, mr := newTestClient(t)
	cache := NewLikeCacheRepository(rdb)

	// 回填方读库前拿到的代数
	gen, _ := cache.Generation(ctx, 9)
	// 期间有写入让缓存失效
	if err := cache.Evict(ctx, 9); err != nil {
		t.Fatal(err)
	}

	if ok, err := cache.SetLikeCount(ctx, 9, 0, gen); err != nil || ok {
		t.Fatalf("stale count accepted ok=%v err=%v", ok, err)
	}
	if ok, err := cache.WarmLikers(ctx, 9, []uint64{1}, gen); err != nil || ok {
		t.Fatalf("stale set accepted ok=%v err=%v", ok, err)
	}
	if ok, err := cache.ApplyToggle(ctx, 1, 9, true, 1, gen); err != nil || ok {
		t.Fatalf("stale toggle accepted ok=%v err=%v", ok, err)
	}
	if _, hit, _ := cache.GetLikeCountCached(ctx, 9); hit {
		t.Fatal("stale count written")
	}
	if _, hit, _ := cache.IsLikedCached(ctx, 1, 9); hit {
		t.Fatal("stale set written")
	}

	cur, _ := cache.Generation(ctx, 9)
	if cur != gen+1 {
		t.Fatalf("gen = %d, want %d", cur, gen+1)
	}
	if ttl := mr.TTL(cache.likeGenKey(9)); ttl <= 0 {
		t.Fatalf("generation key has no ttl: %v", ttl)
	}
	if ok, _ := cache.SetLikeCount(ctx, 9, 2, cur); !ok {
		t.Fatal("current generation rejected")
	}
}

func TestLikeCacheApplyToggleOnlyTouchesWarmSet(t *testing.T) {
	ctx := context.Background()
	rdb, _ := newTestClient(t)
	cache := NewLikeCacheRepository(rdb)

	gen, _ := cache.Generation(ctx, 1)
	if ok, err := cache.ApplyToggle(ctx, 7, 1, true, 1, gen); err != nil || !ok {
		t.Fatalf("apply ok=%v err=%v", ok, err)
	}
	if _, hit, _ := cache.IsLikedCached(ctx, 7, 1); hit {
		t.Fatal("cold set should not be created by a toggle")
	}

	// 写入成功后代数前进，旧代数不能再用
	if ok, _ := cache.WarmLikers(ctx, 1, []uint64{7, 8}, gen); ok {
		t.Fatal("warm with consumed generation accepted")
	}
	gen, _ = cache.Generation(ctx, 1)
	if ok, err := cache.WarmLikers(ctx, 1, []uint64{7, 8}, gen); err != nil || !ok {
		t.Fatalf("warm ok=%v err=%v", ok, err)
	}
	if ok, err := cache.ApplyToggle(ctx, 7, 1, false, 1, gen); err != nil || !ok {
		t.Fatalf("apply ok=%v err=%v", ok, err)
	}
	liked, hit, err := cache.IsLikedCached(ctx, 7, 1)
	if err != nil || !hit || liked {
		t.Fatalf("liked=%v hit=%v err=%v", liked, hit, err)
	}
	liked, _, _ = cache.IsLikedCached(ctx, 8, 1)
	if !liked {
		t.Fatal("other liker removed")
	}
	if n, _, _ := cache.GetLikeCountCached(ctx, 1); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}

	if err := cache.Evict(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := cache.IsLikedCached(ctx, 8, 1); hit {
		t.Fatal("set survived evict")
	}
	if ok, _ := cache.WarmLikers(ctx, 1, nil, gen+2); ok {
		t.Fatal("empty liker set cached")
	}
}

func TestDistLockReleaseRequiresToken(t *testing.T) {
	ctx := context.Background()
	rdb, mr := newTestClient(t)
	lock := &DistLock{RDB: rdb}

	ok, err := lock.Acquire(ctx, 5, "a")
	if err != nil || !ok {
		t.Fatalf("first acquire ok=%v err=%v", ok, err)
	}
	if ok, _ := lock.Acquire(ctx, 5, "b"); ok {
		t.Fatal("second acquire should fail while held")
	}
	if err := lock.Release(ctx, 5, "b"); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists(lock.key(5)) {
		t.Fatal("foreign token released the lock")
	}
	if err := lock.Release(ctx, 5, "a"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := lock.Acquire(ctx, 5, "b"); !ok {
		t.Fatal("lock not released by owner")
	}
}
