package service

import (
	"context"
	"errors"
	"strings"

	"PedagoPass/internal/model"
	"PedagoPass/internal/pkg"
	"PedagoPass/internal/repository/mysql"
)

type DestinationService struct {
	repo *mysql.DestinationRepository
}

func NewDestinationService(repo *mysql.DestinationRepository) *DestinationService {
	return &DestinationService{repo: repo}
}

type ListDestinationsInput struct {
	Query    string
	Country  string
	Featured bool
	Page     int
	Size     int
}

type DestinationPage struct {
	Destinations []model.Destination `json:"destinations"`
	Total        int64               `json:"total"`
	Page         int                 `json:"page"`
	Size         int                 `json:"size"`
}

func (s *DestinationService) ListDestinations(ctx context.Context, in ListDestinationsInput) (*DestinationPage, error) {
	offset, page, size := pageOf(in.Page, in.Size)
	list, total, err := s.repo.List(ctx, mysql.DestinationFilter{
		Query:    strings.TrimSpace(in.Query),
		Country:  strings.TrimSpace(in.Country),
		Featured: in.Featured,
		Offset:   offset,
		Limit:    size,
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Destination{}
	}
	return &DestinationPage{Destinations: list, Total: total, Page: page, Size: size}, nil
}

func (s *DestinationService) GetDestination(ctx context.Context, id uint64) (*model.Destination, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return nil, pkg.ErrNotFound("destination not found")
		}
		return nil, err
	}
	return d, nil
}

type CreateDestinationInput struct {
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	City        string   `json:"city"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
}

// CreateDestination 权限由路由层的角色校验保证
func (s *DestinationService) CreateDestination(ctx context.Context, in CreateDestinationInput) (*model.Destination, error) {
	name := strings.TrimSpace(in.Name)
	country := strings.TrimSpace(in.Country)
	if name == "" || country == "" {
		return nil, pkg.ErrValidation("name and country are required")
	}
	slug := pkg.Slugify(name)
	if city := strings.TrimSpace(in.City); city != "" {
		slug = pkg.Slugify(name + " " + city)
	}
	if slug == "" {
		return nil, pkg.ErrValidation("invalid destination name")
	}
	d := &model.Destination{
		Slug:        slug,
		Name:        name,
		Country:     country,
		City:        strings.TrimSpace(in.City),
		Description: pkg.SanitizeText(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Tags:        pkg.NormalizeTags(in.Tags),
		Featured:    in.Featured,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		if errors.Is(err, mysql.ErrDuplicate) {
			return nil, pkg.ErrConflict("destination already exists")
		}
		return nil, err
	}
	return d, nil
}

type SuggestionService struct {
	repo *mysql.SuggestionRepository
}

func NewSuggestionService(repo *mysql.SuggestionRepository) *SuggestionService {
	return &SuggestionService{repo: repo}
}

func (s *SuggestionService) CreateSuggestion(ctx context.Context, userID uint64, title, description string) (*model.Suggestion, error) {
	title = pkg.SanitizeText(title)
	if title == "" {
		return nil, pkg.ErrValidation("title is required")
	}
	if len(title) > 200 {
		return nil, pkg.ErrValidation("title is too long")
	}
	sg := &model.Suggestion{
		UserID:      userID,
		Title:       title,
		Description: pkg.SanitizeText(description),
		Status:      model.SuggestionPending,
	}
	if err := s.repo.Create(ctx, sg); err != nil {
		return nil, err
	}
	return sg, nil
}

func (s *SuggestionService) ListSuggestions(ctx context.Context, status string, page, size int) ([]model.Suggestion, error) {
	if status != "" && status != model.SuggestionPending && status != model.SuggestionReviewed {
		return nil, pkg.ErrValidation("invalid status")
	}
	offset, _, size := pageOf(page, size)
	list, err := s.repo.List(ctx, status, offset, size)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Suggestion{}
	}
	return list, nil
}
