package model

import "time"

const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"

	DefaultRole = RoleTeacher
)

type User struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex:uk_users_email;size:128;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Name      string    `gorm:"size:64;not null" json:"name"`
	AvatarURL string    `gorm:"size:512" json:"avatarUrl,omitempty"`
	Bio       string    `gorm:"type:text" json:"bio"`
	School    string    `gorm:"size:128" json:"school,omitempty"`
	City      string    `gorm:"size:64" json:"city,omitempty"`
	State     string    `gorm:"size:64" json:"state,omitempty"`
	Role      string    `gorm:"size:16;not null;default:TEACHER" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}
