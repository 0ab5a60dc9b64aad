package model

import "time"

const (
	ActivityPostCreated      = "POST_CREATED"
	ActivityCommentCreated   = "COMMENT_CREATED"
	ActivityLikeReceived     = "LIKE_RECEIVED"
	ActivityCommunityCreated = "COMMUNITY_CREATED"
	ActivityCommunityJoined  = "COMMUNITY_JOINED"
)

const (
	LevelBronze = "Bronze"
	LevelSilver = "Silver"
	LevelGold   = "Gold"
)

// UserPoints 积分账本，首次查询时惰性创建
type UserPoints struct {
	UserID      uint64    `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	TotalPoints int64     `gorm:"not null;default:0" json:"totalPoints"`
	Level       string    `gorm:"size:16;not null;default:Bronze" json:"level"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Activity 积分流水，每个用户只保留最近 MaxActivities 条
type Activity struct {
	ID          uint64    `gorm:"primaryKey" json:"-"`
	ActivityID  string    `gorm:"uniqueIndex:uk_activities_activity_id;size:36;not null" json:"id"`
	UserID      uint64    `gorm:"not null;index" json:"userId"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	Description string    `gorm:"size:255" json:"description"`
	Points      int64     `gorm:"not null" json:"points"`
	CreatedAt   time.Time `json:"timestamp"`
}

const MaxActivities = 50
