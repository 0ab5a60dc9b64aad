package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"PedagoPass/internal/model"
	"PedagoPass/internal/pkg"
	"PedagoPass/internal/repository/mysql"
)

type CommunityService struct {
	repo       *mysql.CommunityRepository
	memberRepo *mysql.CommunityMemberRepository
	points     PointsAwarder
	log        *slog.Logger
}

func NewCommunityService(repo *mysql.CommunityRepository, members *mysql.CommunityMemberRepository, points PointsAwarder, log *slog.Logger) *CommunityService {
	return &CommunityService{repo: repo, memberRepo: members, points: points, log: log}
}

type CreateCommunityInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Topic       string `json:"topic"`
	IsPrivate   bool   `json:"isPrivate"`
}

func validCommunityName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 3 && n <= 64
}

func (s *CommunityService) CreateCommunity(ctx context.Context, userID uint64, in CreateCommunityInput) (*model.Community, error) {
	name := strings.TrimSpace(in.Name)
	if !validCommunityName(name) {
		return nil, pkg.ErrValidation("community name must be 3 to 64 characters")
	}
	topic := in.Topic
	if topic == "" {
		topic = model.TopicGeneral
	}
	if !model.IsValidTopic(topic) {
		return nil, pkg.ErrValidation("invalid topic")
	}
	slugSrc := in.Slug
	if strings.TrimSpace(slugSrc) == "" {
		slugSrc = name
	}
	slug := pkg.Slugify(slugSrc)
	if slug == "" {
		return nil, pkg.ErrValidation("invalid slug")
	}

	if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
		return nil, pkg.ErrConflict("a community with this slug already exists")
	} else if !errors.Is(err, mysql.ErrNotFound) {
		return nil, err
	}

	community := &model.Community{
		Slug:        slug,
		Name:        name,
		Description: pkg.SanitizeText(in.Description),
		Topic:       topic,
		IsPrivate:   in.IsPrivate,
		CreatorID:   userID,
	}
	if err := s.repo.Create(ctx, community); err != nil {
		if errors.Is(err, mysql.ErrDuplicate) {
			return nil, pkg.ErrConflict("a community with this slug already exists")
		}
		return nil, err
	}
	awardQuietly(ctx, s.log, s.points, userID, model.ActivityCommunityCreated, "Created the community "+name)
	return community, nil
}

type CommunityPage struct {
	Communities []model.Community `json:"communities"`
	Total       int64             `json:"total"`
	Page        int               `json:"page"`
	Size        int               `json:"size"`
}

func (s *CommunityService) ListCommunities(ctx context.Context, topic string, page, size int) (*CommunityPage, error) {
	if topic != "" && !model.IsValidTopic(topic) {
		return nil, pkg.ErrValidation("invalid topic")
	}
	offset, page, size := pageOf(page, size)
	list, total, err := s.repo.List(ctx, topic, offset, size)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Community{}
	}
	return &CommunityPage{Communities: list, Total: total, Page: page, Size: size}, nil
}

// GetCommunity 数字按 id 查询，否则按 slug 查询
func (s *CommunityService) GetCommunity(ctx context.Context, idOrSlug string) (*model.Community, error) {
	var (
		c   *model.Community
		err error
	)
	if id, perr := strconv.ParseUint(idOrSlug, 10, 64); perr == nil {
		c, err = s.repo.FindByID(ctx, id)
	} else {
		c, err = s.repo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return nil, pkg.ErrNotFound("community not found")
		}
		return nil, err
	}
	return c, nil
}

func (s *CommunityService) findByID(ctx context.Context, id uint64) (*model.Community, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return nil, pkg.ErrNotFound("community not found")
		}
		return nil, err
	}
	return c, nil
}

// memberRole 非成员返回空串
func (s *CommunityService) memberRole(ctx context.Context, communityID, userID uint64) (string, error) {
	m, err := s.memberRepo.FindMember(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, mysql.ErrNotMember) {
			return "", nil
		}
		return "", err
	}
	return m.Role, nil
}

func (s *CommunityService) requireManager(ctx context.Context, communityID, userID uint64) error {
	role, err := s.memberRole(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if role != model.MemberRoleCreator && role != model.MemberRoleAdmin {
		return pkg.ErrForbidden("only the creator or an admin can manage this community")
	}
	return nil
}

type UpdateCommunityInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Topic       *string `json:"topic"`
	IsPrivate   *bool   `json:"isPrivate"`
}

// UpdateCommunity slug 创建后不再变化
func (s *CommunityService) UpdateCommunity(ctx context.Context, userID, communityID uint64, in UpdateCommunityInput) (*model.Community, error) {
	if _, err := s.findByID(ctx, communityID); err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, communityID, userID); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if !validCommunityName(name) {
			return nil, pkg.ErrValidation("community name must be 3 to 64 characters")
		}
		fields["name"] = name
	}
	if in.Description != nil {
		fields["description"] = pkg.SanitizeText(*in.Description)
	}
	if in.Topic != nil {
		if !model.IsValidTopic(*in.Topic) {
			return nil, pkg.ErrValidation("invalid topic")
		}
		fields["topic"] = *in.Topic
	}
	if in.IsPrivate != nil {
		fields["is_private"] = *in.IsPrivate
	}
	if err := s.repo.Update(ctx, communityID, fields); err != nil {
		return nil, err
	}
	return s.findByID(ctx, communityID)
}

// DeleteCommunity 只有创建者可以删除
func (s *CommunityService) DeleteCommunity(ctx context.Context, userID, communityID uint64) error {
	c, err := s.findByID(ctx, communityID)
	if err != nil {
		return err
	}
	if c.CreatorID != userID {
		return pkg.ErrForbidden("only the creator can delete this community")
	}
	if err := s.repo.Delete(ctx, communityID); err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return pkg.ErrNotFound("community not found")
		}
		return err
	}
	return nil
}

func (s *CommunityService) JoinCommunity(ctx context.Context, userID, communityID uint64) (*model.CommunityMember, error) {
	c, err := s.findByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if c.IsPrivate {
		return nil, pkg.ErrForbidden("this community is private")
	}
	m, err := s.memberRepo.Join(ctx, communityID, userID)
	if err != nil {
		switch {
		case errors.Is(err, mysql.ErrAlreadyMember):
			return nil, pkg.ErrConflict("already a member of this community")
		case errors.Is(err, mysql.ErrNotFound):
			return nil, pkg.ErrNotFound("community not found")
		}
		return nil, err
	}
	awardQuietly(ctx, s.log, s.points, userID, model.ActivityCommunityJoined, "Joined the community "+c.Name)
	return m, nil
}

func (s *CommunityService) LeaveCommunity(ctx context.Context, userID, communityID uint64) error {
	err := s.memberRepo.Leave(ctx, communityID, userID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mysql.ErrNotFound):
		return pkg.ErrNotFound("community not found")
	case errors.Is(err, mysql.ErrNotMember):
		return pkg.ErrNotFound("not a member of this community")
	case errors.Is(err, mysql.ErrCreatorLocked):
		return pkg.ErrForbidden("the creator cannot leave the community")
	}
	return err
}

func (s *CommunityService) ListMembers(ctx context.Context, communityID uint64, page, size int) ([]model.CommunityMember, error) {
	if _, err := s.findByID(ctx, communityID); err != nil {
		return nil, err
	}
	offset, _, size := pageOf(page, size)
	list, err := s.memberRepo.ListMembers(ctx, communityID, offset, size)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.CommunityMember{}
	}
	return list, nil
}

// SetMemberRole CREATOR 角色既不能授予也不能被修改
func (s *CommunityService) SetMemberRole(ctx context.Context, actorID, communityID, targetID uint64, role string) (*model.CommunityMember, error) {
	if !model.IsValidMemberRole(role) {
		return nil, pkg.ErrValidation("invalid member role")
	}
	if _, err := s.findByID(ctx, communityID); err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, communityID, actorID); err != nil {
		return nil, err
	}
	err := s.memberRepo.UpdateRole(ctx, communityID, targetID, role)
	switch {
	case err == nil:
	case errors.Is(err, mysql.ErrCreatorLocked):
		return nil, pkg.ErrForbidden("the creator role cannot be granted or changed")
	case errors.Is(err, mysql.ErrNotMember):
		return nil, pkg.ErrNotFound("member not found")
	default:
		return nil, err
	}
	return s.memberRepo.FindMember(ctx, communityID, targetID)
}
