package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"PedagoPass/internal/model"
	"PedagoPass/internal/pkg"
	"PedagoPass/internal/repository/mysql"
)

type PostLikeService struct {
	repo      *mysql.PostLikeRepository
	likeCache LikeCache
	lock      Locker
	points    PointsAwarder
	log       *slog.Logger
}

// NewPostLikeService cache 与 lock 同时为 nil 时只走数据库
func NewPostLikeService(repo *mysql.PostLikeRepository, cache LikeCache, lock Locker, points PointsAwarder, log *slog.Logger) *PostLikeService {
	return &PostLikeService{
		repo:      repo,
		likeCache: cache,
		lock:      lock,
		points:    points,
		log:       log,
	}
}

// LikeState 点赞切换后的状态
type LikeState struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

func (s *PostLikeService) cached() bool {
	return s.likeCache != nil && s.lock != nil
}

// Toggle 点赞集合与计数在同一事务内切换；提交前记下缓存代数，提交后加锁按代数回写，失败或拿不到锁则整体失效
func (s *PostLikeService) Toggle(ctx context.Context, postID, userID uint64) (*LikeState, error) {
	if userID == 0 || postID == 0 {
		return nil, pkg.ErrValidation("invalid id")
	}
	var gen int64
	genOK := false
	if s.cached() {
		if g, err := s.likeCache.Generation(ctx, postID); err == nil {
			gen, genOK = g, true
		}
	}
	res, err := s.repo.Toggle(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return nil, pkg.ErrNotFound("post not found")
		}
		return nil, err
	}

	if s.cached() {
		s.applyToggle(ctx, userID, postID, res, gen, genOK)
	}

	// 只在新增点赞且不是给自己点赞时给作者加分
	if res.Liked && res.AuthorID != userID {
		awardQuietly(ctx, s.log, s.points, res.AuthorID, model.ActivityLikeReceived, "Your post received a like")
	}
	return &LikeState{Liked: res.Liked, LikesCount: res.LikesCount}, nil
}

func (s *PostLikeService) applyToggle(ctx context.Context, userID, postID uint64, res *mysql.ToggleResult, gen int64, genOK bool) {
	if !genOK {
		s.evict(ctx, postID)
		return
	}
	token := uuid.NewString()
	if got, _ := s.lock.Acquire(ctx, postID, token); !got {
		s.evict(ctx, postID)
		return
	}
	defer func() { _ = s.lock.Release(ctx, postID, token) }()
	if ok, err := s.likeCache.ApplyToggle(ctx, userID, postID, res.Liked, res.LikesCount, gen); err != nil || !ok {
		s.evict(ctx, postID)
	}
}

func (s *PostLikeService) evict(ctx context.Context, postID uint64) {
	if err := s.likeCache.Evict(ctx, postID); err != nil {
		s.log.Warn("evict like cache failed", "post_id", postID, "err", err)
	}
}

func (s *PostLikeService) IsLiked(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 || postID == 0 {
		return false, pkg.ErrValidation("invalid id")
	}
	if s.cached() {
		if b, ok, err := s.likeCache.IsLikedCached(ctx, userID, postID); err == nil && ok {
			return b, nil
		}
	}
	b, err := s.repo.IsLiked(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if s.cached() {
		s.warmLikers(ctx, postID)
	}
	return b, nil
}

// warmLikers 持锁回填集合，与 Toggle 的缓存回写互斥
func (s *PostLikeService) warmLikers(ctx context.Context, postID uint64) {
	token := uuid.NewString()
	got, _ := s.lock.Acquire(ctx, postID, token)
	if !got {
		return
	}
	defer func() { _ = s.lock.Release(ctx, postID, token) }()

	// 代数要在读库之前取，期间有失效则回填被拒
	gen, err := s.likeCache.Generation(ctx, postID)
	if err != nil {
		return
	}
	ids, err := s.repo.LikerIDs(ctx, postID)
	if err != nil {
		return
	}
	if _, err := s.likeCache.WarmLikers(ctx, postID, ids, gen); err != nil {
		s.log.Debug("warm like set failed", "post_id", postID, "err", err)
	}
}

// Count 先读缓存，未命中时持锁回源并回填
func (s *PostLikeService) Count(ctx context.Context, postID uint64) (int64, error) {
	if postID == 0 {
		return 0, pkg.ErrValidation("invalid id")
	}
	if !s.cached() {
		return s.countFromDB(ctx, postID)
	}
	if v, ok, err := s.likeCache.GetLikeCountCached(ctx, postID); err == nil && ok {
		return v, nil
	}

	token := uuid.NewString()
	got, _ := s.lock.Acquire(ctx, postID, token)
	if !got {
		// 没拿到锁直接读库，不回填
		return s.countFromDB(ctx, postID)
	}
	defer func() {
		if err := s.lock.Release(ctx, postID, token); err != nil {
			s.log.Debug("release like lock failed", "post_id", postID, "err", err)
		}
	}()

	// 第二次检查
	if v, ok, err := s.likeCache.GetLikeCountCached(ctx, postID); err == nil && ok {
		return v, nil
	}
	gen, genErr := s.likeCache.Generation(ctx, postID)
	v, err := s.countFromDB(ctx, postID)
	if err != nil {
		return 0, err
	}
	if genErr == nil {
		_, _ = s.likeCache.SetLikeCount(ctx, postID, v, gen)
	}
	return v, nil
}

func (s *PostLikeService) countFromDB(ctx context.Context, postID uint64) (int64, error) {
	v, err := s.repo.GetLikeCount(ctx, postID)
	if errors.Is(err, mysql.ErrNotFound) {
		return 0, pkg.ErrNotFound("post not found")
	}
	return v, err
}

// LikedSet 批量判断查看者对一页帖子的点赞状态
func (s *PostLikeService) LikedSet(ctx context.Context, userID uint64, postIDs []uint64) (map[uint64]bool, error) {
	if userID == 0 || len(postIDs) == 0 {
		return map[uint64]bool{}, nil
	}
	return s.repo.LikedPostIDs(ctx, userID, postIDs)
}

// Forget 帖子删除后清理缓存
func (s *PostLikeService) Forget(ctx context.Context, postID uint64) {
	if s.likeCache != nil {
		s.evict(ctx, postID)
	}
}
