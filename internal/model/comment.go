package model

import "time"

type Comment struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	PostID    uint64    `gorm:"not null;index:idx_comments_post_time,priority:1" json:"postId"`
	AuthorID  uint64    `gorm:"not null;index" json:"authorId"`
	ParentID  *uint64   `gorm:"index" json:"parentId,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_comments_post_time,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
