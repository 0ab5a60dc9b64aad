package mysql

import (
	"context"

	"gorm.io/gorm"

	"PedagoPass/internal/model"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// Create 建社区的同时让创建者以 CREATOR 身份加入
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c.MembersCount = 1
		if err := tx.Create(c).Error; err != nil {
			return translate(err)
		}
		return translate(tx.Create(&model.CommunityMember{
			CommunityID: c.ID,
			UserID:      c.CreatorID,
			Role:        model.MemberRoleCreator,
		}).Error)
	})
}

func (r *CommunityRepository) FindByID(ctx context.Context, id uint64) (*model.Community, error) {
	var community model.Community
	if err := r.DB.WithContext(ctx).First(&community, id).Error; err != nil {
		return nil, translate(err)
	}
	return &community, nil
}

func (r *CommunityRepository) FindBySlug(ctx context.Context, slug string) (*model.Community, error) {
	var community model.Community
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&community).Error; err != nil {
		return nil, translate(err)
	}
	return &community, nil
}

func (r *CommunityRepository) List(ctx context.Context, topic string, offset, limit int) ([]model.Community, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Community{})
	if topic != "" {
		q = q.Where("topic = ?", topic)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Community
	err := q.Order("members_count DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *CommunityRepository) Update(ctx context.Context, id uint64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return translate(r.DB.WithContext(ctx).Model(&model.Community{}).Where("id = ?", id).Updates(fields).Error)
}

// Delete 删除社区与成员关系，社区内帖子保留但解除关联
func (r *CommunityRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ?", id).Delete(&model.CommunityMember{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Post{}).Where("community_id = ?", id).
			UpdateColumn("community_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Community{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
