package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"PedagoPass/internal/logging"
	"PedagoPass/internal/model"
	"PedagoPass/internal/repository/mysql"
	"PedagoPass/internal/service/mocks"
)

func TestOutboxRelayerRetriesThenSends(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockEventPublisher(ctrl)
	outbox := &mysql.OutboxRepository{DB: env.db}
	relayer := NewOutboxRelayer(outbox, pub, logging.Discard())

	if _, err := env.points.AwardPoints(ctx, 1, model.ActivityPostCreated, "p", 10); err != nil {
		t.Fatal(err)
	}

	gomock.InOrder(
		pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down")),
		pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ob *model.ActivityOutbox) error {
			if ob.UserID != 1 || ob.EventType != model.ActivityPostCreated || ob.Retry != 1 {
				t.Errorf("event = %+v", ob)
			}
			return nil
		}),
	)
	relayer.drainOnce(ctx)
	relayer.drainOnce(ctx)
	relayer.drainOnce(ctx)

	rows, _ := outbox.List(ctx, 10, 5)
	if len(rows) != 0 {
		t.Fatalf("pending rows = %d", len(rows))
	}
}

func TestCounterReconcilerRepairsDrift(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.seedUser(t, "u@x.com")
	post := seedPost(t, env, u.ID)
	c := &model.Community{Slug: "s", Name: "Sss", Topic: model.TopicGeneral, CreatorID: u.ID}
	if err := env.communities.Create(ctx, c); err != nil {
		t.Fatal(err)
	}
	env.db.Exec("UPDATE posts SET likes_count = 5 WHERE id = ?", post.ID)
	env.db.Exec("UPDATE communities SET members_count = 0, posts_count = 3 WHERE id = ?", c.ID)

	// 只有帖子计数被修正时作废点赞缓存
	cache := mocks.NewMockLikeCache(gomock.NewController(t))
	cache.EXPECT().Evict(gomock.Any(), post.ID).Return(nil).Times(1)

	r := NewCounterReconciler(&mysql.CounterReconcilerRepo{DB: env.db}, cache, logging.Discard())
	if fixed := r.reconcileOnce(ctx); fixed != 2 {
		t.Fatalf("fixed = %d, want 2", fixed)
	}
	p, _ := env.posts.FindByID(ctx, post.ID)
	got, _ := env.communities.FindByID(ctx, c.ID)
	if p.LikesCount != 0 || got.MembersCount != 1 || got.PostsCount != 0 {
		t.Fatalf("post = %+v community = %+v", p, got)
	}
	if fixed := r.reconcileOnce(ctx); fixed != 0 {
		t.Fatalf("second pass fixed = %d", fixed)
	}
}

func TestCounterReconcilerDropsStaleLikeCache(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc, cache := newRedisLikeService(t, env)
	u := env.seedUser(t, "u@x.com")
	post := seedPost(t, env, u.ID)

	// 缓存里是漂移后的计数
	env.db.Exec("UPDATE posts SET likes_count = 5 WHERE id = ?", post.ID)
	if n, err := svc.Count(ctx, post.ID); err != nil || n != 5 {
		t.Fatalf("drifted count = %d, %v", n, err)
	}

	r := NewCounterReconciler(&mysql.CounterReconcilerRepo{DB: env.db}, cache, logging.Discard())
	if fixed := r.reconcileOnce(ctx); fixed != 1 {
		t.Fatalf("fixed = %d, want 1", fixed)
	}
	if n, err := svc.Count(ctx, post.ID); err != nil || n != 0 {
		t.Fatalf("count after reconcile = %d, %v, want 0", n, err)
	}
}
