package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	LikeSetTTL    = 24 * time.Hour
	LikeCntTTL    = 24 * time.Hour
	LikeGenTTL    = 48 * time.Hour
	LockTTL       = 300 * time.Millisecond
	LikeKeyPrefix = "pp:like"
	LockKeyPrefix = "pp:lock:like:post"
)

// LikeCacheRepository 点赞缓存，只在数据库提交之后写入
//
// 每个帖子有一个代数 key。回填与回写都带上读库之前拿到的代数，
// 代数变化说明期间有写入让缓存失效，本次写入直接放弃。
type LikeCacheRepository struct {
	rdb        *redis.Client
	likeSetTTL time.Duration
	likeCntTTL time.Duration
	likeGenTTL time.Duration
}

func NewLikeCacheRepository(rdb *redis.Client) *LikeCacheRepository {
	return &LikeCacheRepository{
		rdb:        rdb,
		likeSetTTL: LikeSetTTL,
		likeCntTTL: LikeCntTTL,
		likeGenTTL: LikeGenTTL,
	}
}

// 同一帖子的 key 带相同 hash tag，lua 脚本在集群下也落在同一个 slot
func (r *LikeCacheRepository) likeSetKey(postID uint64) string {
	return fmt.Sprintf("%s:{%d}:set", LikeKeyPrefix, postID)
}

func (r *LikeCacheRepository) likeCntKey(postID uint64) string {
	return fmt.Sprintf("%s:{%d}:cnt", LikeKeyPrefix, postID)
}

func (r *LikeCacheRepository) likeGenKey(postID uint64) string {
	return fmt.Sprintf("%s:{%d}:gen", LikeKeyPrefix, postID)
}

func seconds(d time.Duration) int64 {
	if s := int64(d / time.Second); s > 0 {
		return s
	}
	return 1
}

// Generation 读取帖子缓存代数，key 不存在视为 0
func (r *LikeCacheRepository) Generation(ctx context.Context, postID uint64) (int64, error) {
	gen, err := r.rdb.Get(ctx, r.likeGenKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

var applyToggleScript = redis.NewScript(`
if tonumber(redis.call("get", KEYS[1]) or "0") ~= tonumber(ARGV[1]) then
  return 0
end
if redis.call("exists", KEYS[2]) == 1 then
  if ARGV[3] == "1" then
    redis.call("sadd", KEYS[2], ARGV[2])
  else
    redis.call("srem", KEYS[2], ARGV[2])
  end
  redis.call("expire", KEYS[2], ARGV[5])
end
redis.call("set", KEYS[3], ARGV[4], "EX", ARGV[6])
redis.call("incr", KEYS[1])
redis.call("expire", KEYS[1], ARGV[7])
return 1`)

// ApplyToggle 以数据库返回的最终状态覆盖缓存，集合只在已存在时维护。
// 代数与 gen 不一致时不写入并返回 false；写入成功后代数加一。
func (r *LikeCacheRepository) ApplyToggle(ctx context.Context, userID, postID uint64, liked bool, count, gen int64) (bool, error) {
	flag := "0"
	if liked {
		flag = "1"
	}
	n, err := applyToggleScript.Run(ctx, r.rdb,
		[]string{r.likeGenKey(postID), r.likeSetKey(postID), r.likeCntKey(postID)},
		gen, userID, flag, count, seconds(r.likeSetTTL), seconds(r.likeCntTTL), seconds(r.likeGenTTL),
	).Int64()
	return n == 1, err
}

// IsLikedCached 第二个返回值表示缓存是否命中
func (r *LikeCacheRepository) IsLikedCached(ctx context.Context, userID, postID uint64) (bool, bool, error) {
	k := r.likeSetKey(postID)
	exists, err := r.rdb.Exists(ctx, k).Result()
	if err != nil {
		return false, false, err
	}
	if exists == 0 {
		return false, false, nil
	}
	b, err := r.rdb.SIsMember(ctx, k, userID).Result()
	return b, true, err
}

var warmLikersScript = redis.NewScript(`
if tonumber(redis.call("get", KEYS[1]) or "0") ~= tonumber(ARGV[1]) then
  return 0
end
redis.call("del", KEYS[2])
for i = 3, #ARGV do
  redis.call("sadd", KEYS[2], ARGV[i])
end
redis.call("expire", KEYS[2], ARGV[2])
return 1`)

// WarmLikers 用数据库中的完整点赞集合回填；空集合无法缓存，直接返回 false
func (r *LikeCacheRepository) WarmLikers(ctx context.Context, postID uint64, userIDs []uint64, gen int64) (bool, error) {
	if len(userIDs) == 0 {
		return false, nil
	}
	args := make([]any, 0, len(userIDs)+2)
	args = append(args, gen, seconds(r.likeSetTTL))
	for _, id := range userIDs {
		args = append(args, id)
	}
	n, err := warmLikersScript.Run(ctx, r.rdb,
		[]string{r.likeGenKey(postID), r.likeSetKey(postID)}, args...).Int64()
	return n == 1, err
}

// GetLikeCountCached 第二个返回值表示缓存是否命中
func (r *LikeCacheRepository) GetLikeCountCached(ctx context.Context, postID uint64) (int64, bool, error) {
	val, err := r.rdb.Get(ctx, r.likeCntKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

var setCountScript = redis.NewScript(`
if tonumber(redis.call("get", KEYS[1]) or "0") ~= tonumber(ARGV[1]) then
  return 0
end
redis.call("set", KEYS[2], ARGV[2], "EX", ARGV[3])
return 1`)

// SetLikeCount 回填帖子点赞数，代数已变化时放弃
func (r *LikeCacheRepository) SetLikeCount(ctx context.Context, postID uint64, cnt, gen int64) (bool, error) {
	n, err := setCountScript.Run(ctx, r.rdb,
		[]string{r.likeGenKey(postID), r.likeCntKey(postID)},
		gen, cnt, seconds(r.likeCntTTL),
	).Int64()
	return n == 1, err
}

// Evict 删除集合与计数并推进代数，进行中的回填随之作废
func (r *LikeCacheRepository) Evict(ctx context.Context, postID uint64) error {
	gen := r.likeGenKey(postID)
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, gen)
		p.Expire(ctx, gen, r.likeGenTTL)
		p.Del(ctx, r.likeSetKey(postID), r.likeCntKey(postID))
		return nil
	})
	return err
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// DistLock 按帖子加锁，串行化缓存回写
type DistLock struct {
	RDB *redis.Client
	TTL time.Duration
}

func (l *DistLock) key(postID uint64) string {
	return fmt.Sprintf("%s:%d", LockKeyPrefix, postID)
}

// Acquire 请求加分布式锁
func (l *DistLock) Acquire(ctx context.Context, postID uint64, token string) (bool, error) {
	ttl := l.TTL
	if ttl <= 0 {
		ttl = LockTTL
	}
	return l.RDB.SetNX(ctx, l.key(postID), token, ttl).Result()
}

// Release 用lua保证只删除自己持有的锁
func (l *DistLock) Release(ctx context.Context, postID uint64, token string) error {
	return releaseScript.Run(ctx, l.RDB, []string{l.key(postID)}, token).Err()
}
