package model

import (
	"time"

	"gorm.io/datatypes"
)

type Destination struct {
	ID          uint64                      `gorm:"primaryKey" json:"id"`
	Slug        string                      `gorm:"uniqueIndex:uk_destinations_slug;size:80;not null" json:"slug"`
	Name        string                      `gorm:"size:128;not null" json:"name"`
	Country     string                      `gorm:"size:64;not null;index" json:"country"`
	City        string                      `gorm:"size:64" json:"city"`
	Description string                      `gorm:"type:text" json:"description"`
	ImageURL    string                      `gorm:"size:512" json:"imageUrl,omitempty"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Featured    bool                        `gorm:"not null;default:false;index" json:"featured"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

const (
	SuggestionPending  = "PENDING"
	SuggestionReviewed = "REVIEWED"
)

// Suggestion 用户提交的目的地或功能建议
type Suggestion struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	UserID      uint64    `gorm:"not null;index" json:"userId"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:16;not null;default:PENDING" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
