package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"PedagoPass/internal/model"
	"PedagoPass/internal/pkg"
	"PedagoPass/internal/repository/mysql"
)

const (
	MaxMediaPerPost   = 5
	MaxPostContentLen = 5000
	MaxTagsPerPost    = 10
)

type PostService struct {
	repo         *mysql.PostRepository
	communities  *mysql.CommunityRepository
	memberRepo   *mysql.CommunityMemberRepository
	destinations *mysql.DestinationRepository
	likes        *PostLikeService
	store        MediaStore
	points       PointsAwarder
	log          *slog.Logger
}

type PostServiceDeps struct {
	Posts        *mysql.PostRepository
	Communities  *mysql.CommunityRepository
	Members      *mysql.CommunityMemberRepository
	Destinations *mysql.DestinationRepository
	Likes        *PostLikeService
	Store        MediaStore
	Points       PointsAwarder
	Log          *slog.Logger
}

func NewPostService(d PostServiceDeps) *PostService {
	return &PostService{
		repo:         d.Posts,
		communities:  d.Communities,
		memberRepo:   d.Members,
		destinations: d.Destinations,
		likes:        d.Likes,
		store:        d.Store,
		points:       d.Points,
		log:          d.Log,
	}
}

// MediaUpload 已打开的上传文件，由调用方负责关闭
type MediaUpload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type CreatePostInput struct {
	Content       string
	Tags          []string
	CommunityID   uint64
	DestinationID uint64
	Media         []MediaUpload
}

func mediaKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return ""
	}
}

func (s *PostService) CreatePost(ctx context.Context, authorID uint64, in CreatePostInput) (*model.Post, error) {
	content := pkg.SanitizeText(in.Content)
	if content == "" && len(in.Media) == 0 {
		return nil, pkg.ErrValidation("content is required")
	}
	if utf8.RuneCountInString(content) > MaxPostContentLen {
		return nil, pkg.ErrValidation("content is too long")
	}
	if len(in.Media) > MaxMediaPerPost {
		return nil, pkg.ErrValidation("at most 5 media files per post")
	}
	tags := pkg.NormalizeTags(in.Tags)
	if len(tags) > MaxTagsPerPost {
		return nil, pkg.ErrValidation("too many tags")
	}
	for _, m := range in.Media {
		if mediaKind(m.ContentType) == "" {
			return nil, pkg.ErrValidation("unsupported media type")
		}
	}
	if len(in.Media) > 0 && s.store == nil {
		return nil, pkg.ErrValidation("media uploads are disabled")
	}

	post := &model.Post{AuthorID: authorID, Content: content, Tags: tags}
	if in.CommunityID > 0 {
		if _, err := s.communities.FindByID(ctx, in.CommunityID); err != nil {
			if errors.Is(err, mysql.ErrNotFound) {
				return nil, pkg.ErrNotFound("community not found")
			}
			return nil, err
		}
		// 判断是否是 community 成员
		ok, err := s.memberRepo.IsMember(ctx, in.CommunityID, authorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, pkg.ErrForbidden("only members can post in this community")
		}
		id := in.CommunityID
		post.CommunityID = &id
	}
	if in.DestinationID > 0 {
		if _, err := s.destinations.FindByID(ctx, in.DestinationID); err != nil {
			if errors.Is(err, mysql.ErrNotFound) {
				return nil, pkg.ErrNotFound("destination not found")
			}
			return nil, err
		}
		id := in.DestinationID
		post.DestinationID = &id
	}

	for i, m := range in.Media {
		url, key, err := s.store.Save(ctx, m.Name, m.ContentType, m.Body)
		if err != nil {
			s.removeMedia(ctx, post.Media)
			return nil, err
		}
		post.Media = append(post.Media, model.Media{
			URL:      url,
			Key:      key,
			Type:     mediaKind(m.ContentType),
			Name:     m.Name,
			Size:     m.Size,
			Position: i,
		})
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.removeMedia(ctx, post.Media)
		return nil, err
	}
	awardQuietly(ctx, s.log, s.points, authorID, model.ActivityPostCreated, "Published a post")
	return post, nil
}

func (s *PostService) removeMedia(ctx context.Context, media []model.Media) {
	if s.store == nil {
		return
	}
	for _, m := range media {
		if err := s.store.Delete(ctx, m.Key); err != nil {
			s.log.Warn("remove media failed", "key", m.Key, "err", err)
		}
	}
}

// GetPost viewerID 为 0 表示匿名访问
func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint64) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return nil, pkg.ErrNotFound("post not found")
		}
		return nil, err
	}
	if viewerID > 0 {
		liked, err := s.likes.IsLiked(ctx, viewerID, postID)
		if err != nil {
			return nil, err
		}
		post.Liked = liked
	}
	return post, nil
}

type ListPostsInput struct {
	Page          int
	Size          int
	CommunityID   uint64
	AuthorID      uint64
	DestinationID uint64
	Tag           string
}

type PostPage struct {
	Posts []model.Post `json:"posts"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Size  int          `json:"size"`
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput, viewerID uint64) (*PostPage, error) {
	offset, page, size := pageOf(in.Page, in.Size)
	tag := ""
	if tags := pkg.NormalizeTags([]string{in.Tag}); len(tags) == 1 {
		tag = tags[0]
	}
	list, total, err := s.repo.List(ctx, mysql.PostFilter{
		CommunityID:   in.CommunityID,
		AuthorID:      in.AuthorID,
		DestinationID: in.DestinationID,
		Tag:           tag,
		Offset:        offset,
		Limit:         size,
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Post{}
	}
	if viewerID > 0 && len(list) > 0 {
		ids := make([]uint64, len(list))
		for i := range list {
			ids[i] = list[i].ID
		}
		liked, err := s.likes.LikedSet(ctx, viewerID, ids)
		if err != nil {
			return nil, err
		}
		for i := range list {
			list[i].Liked = liked[list[i].ID]
		}
	}
	return &PostPage{Posts: list, Total: total, Page: page, Size: size}, nil
}

// UpdatePostInput nil 字段保持不变
type UpdatePostInput struct {
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
}

func (s *PostService) UpdatePost(ctx context.Context, userID, postID uint64, in UpdatePostInput) (*model.Post, error) {
	post, err := s.GetPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, pkg.ErrForbidden("only the author can edit this post")
	}
	content := post.Content
	if in.Content != nil {
		content = pkg.SanitizeText(*in.Content)
		if content == "" && len(post.Media) == 0 {
			return nil, pkg.ErrValidation("content is required")
		}
		if utf8.RuneCountInString(content) > MaxPostContentLen {
			return nil, pkg.ErrValidation("content is too long")
		}
	}
	tags := []string(post.Tags)
	if in.Tags != nil {
		tags = pkg.NormalizeTags(in.Tags)
		if len(tags) > MaxTagsPerPost {
			return nil, pkg.ErrValidation("too many tags")
		}
	}
	if err := s.repo.UpdateContent(ctx, postID, content, tags); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, postID, userID)
}

// DeletePost 只有作者可以删除，点赞、评论和媒体文件一并清理
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint64) error {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return pkg.ErrNotFound("post not found")
		}
		return err
	}
	if post.AuthorID != userID {
		return pkg.ErrForbidden("only the author can delete this post")
	}
	deleted, err := s.repo.Delete(ctx, postID)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return pkg.ErrNotFound("post not found")
		}
		return err
	}
	s.removeMedia(ctx, deleted.Media)
	s.likes.Forget(ctx, postID)
	return nil
}
