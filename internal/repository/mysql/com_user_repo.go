package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"PedagoPass/internal/model"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

// Join 锁住社区行后检查成员关系，已是成员时返回 ErrAlreadyMember 且计数不变
func (r *CommunityMemberRepository) Join(ctx context.Context, communityID, userID uint64) (*model.CommunityMember, error) {
	member := &model.CommunityMember{CommunityID: communityID, UserID: userID, Role: model.MemberRoleMember}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&model.Community{}, communityID).Error; err != nil {
			return translate(err)
		}
		var count int64
		if err := tx.Model(&model.CommunityMember{}).
			Where("community_id = ? AND user_id = ?", communityID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyMember
		}
		if err := tx.Create(member).Error; err != nil {
			if isDuplicate(err) {
				return ErrAlreadyMember
			}
			return err
		}
		return tx.Model(&model.Community{}).Where("id = ?", communityID).
			UpdateColumn("members_count", gorm.Expr("members_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// Leave 创建者不能退出
func (r *CommunityMemberRepository) Leave(ctx context.Context, communityID, userID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&model.Community{}, communityID).Error; err != nil {
			return translate(err)
		}
		var m model.CommunityMember
		if err := tx.Where("community_id = ? AND user_id = ?", communityID, userID).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotMember
			}
			return err
		}
		if m.Role == model.MemberRoleCreator {
			return ErrCreatorLocked
		}
		if err := tx.Delete(&model.CommunityMember{}, m.ID).Error; err != nil {
			return err
		}
		return tx.Model(&model.Community{}).Where("id = ?", communityID).
			UpdateColumn("members_count", decrementFloor("members_count", 1)).Error
	})
}

func (r *CommunityMemberRepository) FindMember(ctx context.Context, communityID, userID uint64) (*model.CommunityMember, error) {
	var m model.CommunityMember
	err := r.DB.WithContext(ctx).Where("community_id = ? AND user_id = ?", communityID, userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotMember
		}
		return nil, err
	}
	return &m, nil
}

func (r *CommunityMemberRepository) IsMember(ctx context.Context, communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *CommunityMemberRepository) ListMembers(ctx context.Context, communityID uint64, offset, limit int) ([]model.CommunityMember, error) {
	var list []model.CommunityMember
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// UpdateRole CREATOR 既不能被授予也不能被降级
func (r *CommunityMemberRepository) UpdateRole(ctx context.Context, communityID, userID uint64, role string) error {
	if role == model.MemberRoleCreator {
		return ErrCreatorLocked
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.CommunityMember
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("community_id = ? AND user_id = ?", communityID, userID).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotMember
			}
			return err
		}
		if m.Role == model.MemberRoleCreator {
			return ErrCreatorLocked
		}
		return tx.Model(&model.CommunityMember{}).Where("id = ?", m.ID).Update("role", role).Error
	})
}

// CountMembers 成员集合的真实基数
func (r *CommunityMemberRepository) CountMembers(ctx context.Context, communityID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).Where("community_id = ?", communityID).Count(&n).Error
	return n, err
}
