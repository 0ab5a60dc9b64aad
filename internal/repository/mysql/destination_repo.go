package mysql

import (
	"context"

	"gorm.io/gorm"

	"PedagoPass/internal/model"
)

type DestinationRepository struct {
	DB *gorm.DB
}

type DestinationFilter struct {
	Query    string
	Country  string
	Featured bool
	Offset   int
	Limit    int
}

func (r *DestinationRepository) Create(ctx context.Context, d *model.Destination) error {
	return translate(r.DB.WithContext(ctx).Create(d).Error)
}

func (r *DestinationRepository) FindByID(ctx context.Context, id uint64) (*model.Destination, error) {
	var d model.Destination
	if err := r.DB.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *DestinationRepository) List(ctx context.Context, f DestinationFilter) ([]model.Destination, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Destination{})
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("name LIKE ? OR city LIKE ? OR description LIKE ?", like, like, like)
	}
	if f.Country != "" {
		q = q.Where("country = ?", f.Country)
	}
	if f.Featured {
		q = q.Where("featured = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Destination
	err := q.Order("featured DESC, name ASC").Offset(f.Offset).Limit(f.Limit).Find(&list).Error
	return list, total, err
}

type SuggestionRepository struct {
	DB *gorm.DB
}

func (r *SuggestionRepository) Create(ctx context.Context, s *model.Suggestion) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *SuggestionRepository) List(ctx context.Context, status string, offset, limit int) ([]model.Suggestion, error) {
	q := r.DB.WithContext(ctx).Model(&model.Suggestion{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []model.Suggestion
	err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}
