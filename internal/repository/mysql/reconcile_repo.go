package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"PedagoPass/internal/model"
)

// CounterReconcilerRepo 冗余计数对账
type CounterReconcilerRepo struct {
	DB *gorm.DB
}

type PostCounters struct {
	ID            uint64
	LikesCount    int64
	CommentsCount int64
}

type CommunityCounters struct {
	ID           uint64
	MembersCount int64
	PostsCount   int64
}

func (r *CounterReconcilerRepo) PostBatch(ctx context.Context, lastID uint64, batchSize int) ([]PostCounters, uint64, error) {
	var list []PostCounters
	if err := r.DB.WithContext(ctx).Model(&model.Post{}).
		Select("id", "likes_count", "comments_count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, lastID, err
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

func (r *CounterReconcilerRepo) CommunityBatch(ctx context.Context, lastID uint64, batchSize int) ([]CommunityCounters, uint64, error) {
	var list []CommunityCounters
	if err := r.DB.WithContext(ctx).Model(&model.Community{}).
		Select("id", "members_count", "posts_count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, lastID, err
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

func (r *CounterReconcilerRepo) RealPostCounters(ctx context.Context, postID uint64) (likes, comments int64, err error) {
	if err = r.DB.WithContext(ctx).Model(&model.PostLike{}).Where("post_id = ?", postID).Count(&likes).Error; err != nil {
		return
	}
	err = r.DB.WithContext(ctx).Model(&model.Comment{}).Where("post_id = ?", postID).Count(&comments).Error
	return
}

func (r *CounterReconcilerRepo) RealCommunityCounters(ctx context.Context, communityID uint64) (members, posts int64, err error) {
	if err = r.DB.WithContext(ctx).Model(&model.CommunityMember{}).Where("community_id = ?", communityID).Count(&members).Error; err != nil {
		return
	}
	err = r.DB.WithContext(ctx).Model(&model.Post{}).Where("community_id = ?", communityID).Count(&posts).Error
	return
}

// FixPostCounters 在行锁内重新计数后写回，避免覆盖对账期间的并发变更
func (r *CounterReconcilerRepo) FixPostCounters(ctx context.Context, postID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&model.Post{}, postID).Error; err != nil {
			return translate(err)
		}
		var likes, comments int64
		if err := tx.Model(&model.PostLike{}).Where("post_id = ?", postID).Count(&likes).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Comment{}).Where("post_id = ?", postID).Count(&comments).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).Where("id = ?", postID).UpdateColumns(map[string]any{
			"likes_count":    likes,
			"comments_count": comments,
		}).Error
	})
}

func (r *CounterReconcilerRepo) FixCommunityCounters(ctx context.Context, communityID uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&model.Community{}, communityID).Error; err != nil {
			return translate(err)
		}
		var members, posts int64
		if err := tx.Model(&model.CommunityMember{}).Where("community_id = ?", communityID).Count(&members).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Post{}).Where("community_id = ?", communityID).Count(&posts).Error; err != nil {
			return err
		}
		return tx.Model(&model.Community{}).Where("id = ?", communityID).UpdateColumns(map[string]any{
			"members_count": members,
			"posts_count":   posts,
		}).Error
	})
}
