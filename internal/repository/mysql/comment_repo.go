package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"PedagoPass/internal/model"
)

type CommentRepository struct {
	DB *gorm.DB
}

// Create 评论写入与帖子评论计数在同一事务
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&post, c.PostID).Error; err != nil {
			return translate(err)
		}
		if c.ParentID != nil {
			var parent model.Comment
			if err := tx.Select("id", "post_id").First(&parent, *c.ParentID).Error; err != nil {
				return translate(err)
			}
			if parent.PostID != c.PostID {
				return ErrParentNotOnPost
			}
		}
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).Where("id = ?", c.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	return err
}

func (r *CommentRepository) FindByID(ctx context.Context, id uint64) (*model.Comment, error) {
	var c model.Comment
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ListByPost 按时间正序，方便前端拼装楼中楼
func (r *CommentRepository) ListByPost(ctx context.Context, postID uint64, offset, limit int) ([]model.Comment, error) {
	var list []model.Comment
	err := r.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// DeleteTree 删除评论及其全部回复，评论计数按实际删除条数回退
func (r *CommentRepository) DeleteTree(ctx context.Context, id uint64) (int64, error) {
	var removed int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Comment
		if err := tx.First(&c, id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&model.Post{}, c.PostID).Error; err != nil {
			return translate(err)
		}

		ids := []uint64{id}
		frontier := []uint64{id}
		for len(frontier) > 0 {
			var children []uint64
			if err := tx.Model(&model.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}

		res := tx.Where("id IN ?", ids).Delete(&model.Comment{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Model(&model.Post{}).Where("id = ?", c.PostID).
			UpdateColumn("comments_count", decrementFloor("comments_count", removed)).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return removed, nil
}

// CountByPost 评论集合的真实基数
func (r *CommentRepository) CountByPost(ctx context.Context, postID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Comment{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}
