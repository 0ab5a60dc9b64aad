package model

import "time"

type PostLike struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	PostID    uint64 `gorm:"not null;uniqueIndex:uk_post_likes_post_user,priority:1"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_post_likes_post_user,priority:2;index"`
	CreatedAt time.Time
}

func (PostLike) TableName() string {
	return "post_likes"
}
