package model

import (
	"time"

	"gorm.io/datatypes"
)

// Media 帖子附件，按上传顺序保存
type Media struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Position int    `json:"position"`
}

type Post struct {
	ID            uint64                      `gorm:"primaryKey" json:"id"`
	AuthorID      uint64                      `gorm:"not null;index:idx_posts_author_time,priority:1" json:"authorId"`
	CommunityID   *uint64                     `gorm:"index:idx_posts_community_time,priority:1" json:"communityId,omitempty"`
	DestinationID *uint64                     `gorm:"index" json:"destinationId,omitempty"`
	Content       string                      `gorm:"type:text;not null" json:"content"`
	Media         datatypes.JSONSlice[Media]  `json:"media"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	LikesCount    int64                       `gorm:"not null;default:0" json:"likesCount"`
	CommentsCount int64                       `gorm:"not null;default:0" json:"commentsCount"`
	CreatedAt     time.Time                   `gorm:"index:idx_posts_author_time,priority:2;index:idx_posts_community_time,priority:2" json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`

	// Liked 当前查看者是否点过赞，仅在已登录时计算
	Liked bool `gorm:"-" json:"liked"`
}
