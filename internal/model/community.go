package model

import "time"

const (
	MemberRoleCreator   = "CREATOR"
	MemberRoleAdmin     = "ADMIN"
	MemberRoleModerator = "MODERATOR"
	MemberRoleMember    = "MEMBER"
)

const (
	TopicGeneral      = "GENERAL"
	TopicTravel       = "TRAVEL"
	TopicMethodology  = "METHODOLOGY"
	TopicTechnology   = "TECHNOLOGY"
	TopicLanguages    = "LANGUAGES"
	TopicExchange     = "EXCHANGE"
	TopicProfessional = "PROFESSIONAL"
)

var Topics = []string{
	TopicGeneral, TopicTravel, TopicMethodology, TopicTechnology,
	TopicLanguages, TopicExchange, TopicProfessional,
}

type Community struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	Slug         string    `gorm:"uniqueIndex:uk_communities_slug;size:80;not null" json:"slug"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Topic        string    `gorm:"size:24;not null;default:GENERAL;index" json:"topic"`
	IsPrivate    bool      `gorm:"not null;default:false" json:"isPrivate"`
	CreatorID    uint64    `gorm:"not null;index" json:"creatorId"`
	MembersCount int64     `gorm:"not null;default:0" json:"membersCount"`
	PostsCount   int64     `gorm:"not null;default:0" json:"postsCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CommunityMember struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CommunityID uint64    `gorm:"not null;uniqueIndex:uk_community_members_community_user,priority:1" json:"communityId"`
	UserID      uint64    `gorm:"not null;index;uniqueIndex:uk_community_members_community_user,priority:2" json:"userId"`
	Role        string    `gorm:"size:16;not null;default:MEMBER" json:"role"`
	CreatedAt   time.Time `json:"joinedAt"`
	UpdatedAt   time.Time `json:"-"`
}

func IsValidTopic(topic string) bool {
	for _, t := range Topics {
		if t == topic {
			return true
		}
	}
	return false
}

func IsValidMemberRole(role string) bool {
	switch role {
	case MemberRoleCreator, MemberRoleAdmin, MemberRoleModerator, MemberRoleMember:
		return true
	}
	return false
}
