package mysql

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"PedagoPass/internal/model"
)

type PostRepository struct {
	DB *gorm.DB
}

type PostFilter struct {
	CommunityID   uint64
	AuthorID      uint64
	DestinationID uint64
	Tag           string
	Offset        int
	Limit         int
}

// Create 帖子写入与社区帖子计数在同一事务
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return translate(err)
		}
		if post.CommunityID == nil {
			return nil
		}
		return tx.Model(&model.Community{}).
			Where("id = ?", *post.CommunityID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + 1")).Error
	})
}

func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	if err := r.DB.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// List 基础分页查询，按创建时间倒序
func (r *PostRepository) List(ctx context.Context, f PostFilter) ([]model.Post, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Post{})
	if f.CommunityID > 0 {
		q = q.Where("community_id = ?", f.CommunityID)
	}
	if f.AuthorID > 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.DestinationID > 0 {
		q = q.Where("destination_id = ?", f.DestinationID)
	}
	if f.Tag != "" {
		q = q.Where(datatypes.JSONArrayQuery("tags").Contains(f.Tag))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Post
	err := q.Order("created_at DESC, id DESC").Offset(f.Offset).Limit(f.Limit).Find(&list).Error
	return list, total, err
}

func (r *PostRepository) UpdateContent(ctx context.Context, id uint64, content string, tags []string) error {
	return r.DB.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(map[string]any{
		"content": content,
		"tags":    datatypes.NewJSONSlice(tags),
	}).Error
}

// Delete 级联删除点赞与评论并回退社区帖子计数，返回被删帖子供调用方清理媒体文件
func (r *PostRepository) Delete(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Post{}, id).Error; err != nil {
			return err
		}
		if post.CommunityID == nil {
			return nil
		}
		return tx.Model(&model.Community{}).
			Where("id = ?", *post.CommunityID).
			UpdateColumn("posts_count", decrementFloor("posts_count", 1)).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}
