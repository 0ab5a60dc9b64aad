package service

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"PedagoPass/internal/model"
	"PedagoPass/internal/pkg"
	"PedagoPass/internal/repository/mysql"
)

const MaxCommentLen = 2000

type CommentService struct {
	repo   *mysql.CommentRepository
	posts  *mysql.PostRepository
	points PointsAwarder
	log    *slog.Logger
}

func NewCommentService(repo *mysql.CommentRepository, posts *mysql.PostRepository, points PointsAwarder, log *slog.Logger) *CommentService {
	return &CommentService{repo: repo, posts: posts, points: points, log: log}
}

// AddComment parentID 非空时必须属于同一帖子
func (s *CommentService) AddComment(ctx context.Context, userID, postID uint64, content string, parentID *uint64) (*model.Comment, error) {
	content = pkg.SanitizeText(content)
	if content == "" {
		return nil, pkg.ErrValidation("content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLen {
		return nil, pkg.ErrValidation("comment is too long")
	}
	c := &model.Comment{PostID: postID, AuthorID: userID, Content: content, ParentID: parentID}
	if err := s.repo.Create(ctx, c); err != nil {
		switch {
		case errors.Is(err, mysql.ErrParentNotOnPost):
			return nil, pkg.ErrValidation("parent comment belongs to another post")
		case errors.Is(err, mysql.ErrNotFound) && parentID != nil:
			return nil, pkg.ErrNotFound("post or parent comment not found")
		case errors.Is(err, mysql.ErrNotFound):
			return nil, pkg.ErrNotFound("post not found")
		}
		return nil, err
	}
	awardQuietly(ctx, s.log, s.points, userID, model.ActivityCommentCreated, "Commented on a post")
	return c, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint64, page, size int) ([]model.Comment, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return nil, pkg.ErrNotFound("post not found")
		}
		return nil, err
	}
	offset, _, size := pageOf(page, size)
	list, err := s.repo.ListByPost(ctx, postID, offset, size)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Comment{}
	}
	return list, nil
}

// DeleteComment 删除评论及其回复，返回删除条数
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint64) (int64, error) {
	c, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return 0, pkg.ErrNotFound("comment not found")
		}
		return 0, err
	}
	if c.AuthorID != userID {
		return 0, pkg.ErrForbidden("only the author can delete this comment")
	}
	removed, err := s.repo.DeleteTree(ctx, commentID)
	if errors.Is(err, mysql.ErrNotFound) {
		return 0, pkg.ErrNotFound("comment not found")
	}
	return removed, err
}
