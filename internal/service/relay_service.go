package service

import (
	"context"
	"log/slog"
	"time"

	"PedagoPass/internal/model"
	"PedagoPass/internal/pkg"
	"PedagoPass/internal/repository/mysql"
)

// OutboxRelayer 从 outbox 表读取积分事件并投递
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	publisher EventPublisher
	batchSize int
	maxRetry  int
	interval  time.Duration
	log       *slog.Logger
}

func NewOutboxRelayer(repo *mysql.OutboxRepository, publisher EventPublisher, log *slog.Logger) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      repo,
		publisher: publisher,
		batchSize: 200,
		maxRetry:  5,
		interval:  time.Second,
		log:       log,
	}
}

// Run outbox启动器
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.List(ctx, r.batchSize, r.maxRetry)
	if err != nil {
		r.log.Error("outbox query failed", "err", err)
		return
	}
	for i := range rows {
		ob := rows[i]
		if err := r.publisher.Publish(ctx, &ob); err != nil {
			r.log.Warn("outbox publish failed", "event_id", ob.EventID, "retry", ob.Retry+1, "err", err)
			if err := r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				r.log.Error("outbox retry update failed", "id", ob.ID, "err", err)
			}
			continue
		}
		if err := r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			r.log.Error("outbox success update failed", "id", ob.ID, "err", err)
		}
	}
}

// KafkaPublisher 以用户 id 作为分区 key，同一用户的事件保持顺序
type KafkaPublisher struct {
	producer *pkg.ActivityProducer
}

func NewKafkaPublisher(p *pkg.ActivityProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ob *model.ActivityOutbox) error {
	return p.producer.Publish(ctx, pkg.ActivityEvent{
		EventID:   ob.EventID,
		EventType: ob.EventType,
		UserID:    ob.UserID,
		Payload:   []byte(ob.Payload),
	})
}

// LogPublisher 未配置 kafka 时只打日志
type LogPublisher struct {
	Log *slog.Logger
}

func (p LogPublisher) Publish(_ context.Context, ob *model.ActivityOutbox) error {
	p.Log.Info("activity event", "event_id", ob.EventID, "type", ob.EventType, "user_id", ob.UserID, "payload", ob.Payload)
	return nil
}

// CounterReconciler 冗余计数对账
type CounterReconciler struct {
	repo      *mysql.CounterReconcilerRepo
	likeCache LikeCache
	batchSize int
	interval  time.Duration
	log       *slog.Logger
}

// NewCounterReconciler likeCache 可以为 nil；修正帖子计数后同时作废该帖的点赞缓存
func NewCounterReconciler(repo *mysql.CounterReconcilerRepo, likeCache LikeCache, log *slog.Logger) *CounterReconciler {
	return &CounterReconciler{
		repo:      repo,
		likeCache: likeCache,
		batchSize: 500,             // 设置一次对账的大小
		interval:  5 * time.Minute, // 对账的间隔时间
		log:       log,
	}
}

// Run 对账定时任务启动器
func (r *CounterReconciler) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.reconcileOnce(ctx)
		}
	}
}

// reconcileOnce 全表按 id 分批扫描，返回修复的行数
func (r *CounterReconciler) reconcileOnce(ctx context.Context) int {
	return r.reconcilePosts(ctx) + r.reconcileCommunities(ctx)
}

func (r *CounterReconciler) reconcilePosts(ctx context.Context) int {
	fixed := 0
	var lastID uint64
	for ctx.Err() == nil {
		batch, next, err := r.repo.PostBatch(ctx, lastID, r.batchSize)
		if err != nil {
			r.log.Error("reconcile post batch failed", "err", err)
			return fixed
		}
		if len(batch) == 0 {
			return fixed
		}
		for _, p := range batch {
			likes, comments, err := r.repo.RealPostCounters(ctx, p.ID)
			if err != nil {
				continue
			}
			if likes == p.LikesCount && comments == p.CommentsCount {
				continue
			}
			if err := r.repo.FixPostCounters(ctx, p.ID); err != nil {
				r.log.Error("fix post counters failed", "post_id", p.ID, "err", err)
				continue
			}
			r.log.Warn("post counters repaired", "post_id", p.ID,
				"likes", p.LikesCount, "real_likes", likes,
				"comments", p.CommentsCount, "real_comments", comments)
			if r.likeCache != nil {
				if err := r.likeCache.Evict(ctx, p.ID); err != nil {
					r.log.Warn("evict like cache failed", "post_id", p.ID, "err", err)
				}
			}
			fixed++
		}
		lastID = next
	}
	return fixed
}

func (r *CounterReconciler) reconcileCommunities(ctx context.Context) int {
	fixed := 0
	var lastID uint64
	for ctx.Err() == nil {
		batch, next, err := r.repo.CommunityBatch(ctx, lastID, r.batchSize)
		if err != nil {
			r.log.Error("reconcile community batch failed", "err", err)
			return fixed
		}
		if len(batch) == 0 {
			return fixed
		}
		for _, c := range batch {
			members, posts, err := r.repo.RealCommunityCounters(ctx, c.ID)
			if err != nil {
				continue
			}
			if members == c.MembersCount && posts == c.PostsCount {
				continue
			}
			if err := r.repo.FixCommunityCounters(ctx, c.ID); err != nil {
				r.log.Error("fix community counters failed", "community_id", c.ID, "err", err)
				continue
			}
			r.log.Warn("community counters repaired", "community_id", c.ID,
				"members", c.MembersCount, "real_members", members,
				"posts", c.PostsCount, "real_posts", posts)
			fixed++
		}
		lastID = next
	}
	return fixed
}
