package model

import "time"

const (
	OutboxPending = 0
	OutboxSent    = 1
	OutboxFailed  = 2
)

// ActivityOutbox 积分事件投递表，与积分变更同事务写入
type ActivityOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventID   string `gorm:"uniqueIndex:uk_activity_outbox_event_id;size:36;not null"`
	EventType string `gorm:"size:32;not null"`
	UserID    uint64 `gorm:"not null"`
	Payload   string `gorm:"type:text;not null"`
	Status    int8   `gorm:"not null;default:0;index"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ActivityOutbox) TableName() string { return "activity_outbox" }
