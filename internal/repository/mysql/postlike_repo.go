package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"PedagoPass/internal/model"
)

type PostLikeRepository struct {
	DB *gorm.DB
}

// ToggleResult 一次切换后的最终状态
type ToggleResult struct {
	Liked      bool
	LikesCount int64
	AuthorID   uint64
}

// Toggle 先锁帖子行，点赞集合与计数在同一事务内变更，同一帖子的并发切换被串行化
func (r *PostLikeRepository) Toggle(ctx context.Context, postID, userID uint64) (*ToggleResult, error) {
	var res ToggleResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "author_id", "likes_count").
			First(&post, postID).Error; err != nil {
			return translate(err)
		}
		res.AuthorID = post.AuthorID

		del := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.PostLike{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected > 0 {
			// 计数防负数
			if err := tx.Model(&model.Post{}).Where("id = ?", postID).
				UpdateColumn("likes_count", decrementFloor("likes_count", 1)).Error; err != nil {
				return err
			}
			res.Liked = false
		} else {
			if err := tx.Create(&model.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
				return translate(err)
			}
			if err := tx.Model(&model.Post{}).Where("id = ?", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
				return err
			}
			res.Liked = true
		}

		var counts []int64
		if err := tx.Model(&model.Post{}).Where("id = ?", postID).Pluck("likes_count", &counts).Error; err != nil {
			return err
		}
		if len(counts) > 0 {
			res.LikesCount = counts[0]
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *PostLikeRepository) IsLiked(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// LikedPostIDs 批量查询用户在给定帖子中点过赞的集合
func (r *PostLikeRepository) LikedPostIDs(ctx context.Context, userID uint64, postIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var ids []uint64
	if err := r.DB.WithContext(ctx).Model(&model.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *PostLikeRepository) GetLikeCount(ctx context.Context, postID uint64) (int64, error) {
	var p model.Post
	err := r.DB.WithContext(ctx).Select("id", "likes_count").First(&p, postID).Error
	if err != nil {
		return 0, translate(err)
	}
	return p.LikesCount, nil
}

// CountLikes 点赞集合的真实基数
func (r *PostLikeRepository) CountLikes(ctx context.Context, postID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.PostLike{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

// LikerIDs 帖子的全部点赞用户，用于回填缓存集合
func (r *PostLikeRepository) LikerIDs(ctx context.Context, postID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.PostLike{}).Where("post_id = ?", postID).Pluck("user_id", &ids).Error
	return ids, err
}
