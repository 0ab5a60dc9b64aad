package service

import (
	"context"
	"io"

	"PedagoPass/internal/model"
)

//go:generate mockgen -destination=mocks/mock_deps.go -package=mocks PedagoPass/internal/service Notifier,EventPublisher,LikeCache,Locker,MediaStore

// Notifier 账号安全相关通知
type Notifier interface {
	PasswordChanged(ctx context.Context, user *model.User) error
}

// EventPublisher 积分事件对外投递
type EventPublisher interface {
	Publish(ctx context.Context, ob *model.ActivityOutbox) error
}

// LikeCache 点赞缓存，未配置 redis 时为 nil。
// 带 gen 的写入只在缓存代数未变化时生效，返回值表示是否写入。
type LikeCache interface {
	Generation(ctx context.Context, postID uint64) (int64, error)
	ApplyToggle(ctx context.Context, userID, postID uint64, liked bool, count, gen int64) (bool, error)
	IsLikedCached(ctx context.Context, userID, postID uint64) (bool, bool, error)
	WarmLikers(ctx context.Context, postID uint64, userIDs []uint64, gen int64) (bool, error)
	GetLikeCountCached(ctx context.Context, postID uint64) (int64, bool, error)
	SetLikeCount(ctx context.Context, postID uint64, cnt, gen int64) (bool, error)
	Evict(ctx context.Context, postID uint64) error
}

type Locker interface {
	Acquire(ctx context.Context, postID uint64, token string) (bool, error)
	Release(ctx context.Context, postID uint64, token string) error
}

type MediaStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (url, key string, err error)
	Delete(ctx context.Context, key string) error
}

// PointsAwarder 业务动作完成后发放积分
type PointsAwarder interface {
	AwardActivity(ctx context.Context, userID uint64, activityType, description string) error
}

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// pageOf 页码从 1 开始，返回 offset 与修正后的 page/size
func pageOf(page, size int) (offset, p, s int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return (page - 1) * size, page, size
}
