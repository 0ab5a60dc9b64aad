package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"PedagoPass/internal/model"
	"PedagoPass/internal/pkg"
)

type PointsRepository struct {
	DB *gorm.DB
}

// ensure 账本行不存在时插入零值记录，并发插入由主键冲突兜底
func (r *PointsRepository) ensure(tx *gorm.DB, userID uint64) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserPoints{UserID: userID, Level: model.LevelBronze}).Error
}

// Get 首次查询惰性初始化
func (r *PointsRepository) Get(ctx context.Context, userID uint64) (*model.UserPoints, error) {
	var up model.UserPoints
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensure(tx, userID); err != nil {
			return err
		}
		return tx.First(&up, "user_id = ?", userID).Error
	})
	if err != nil {
		return nil, err
	}
	return &up, nil
}

func (r *PointsRepository) RecentActivities(ctx context.Context, userID uint64, limit int) ([]model.Activity, error) {
	var list []model.Activity
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// Award 累加积分、重算等级、追加流水并裁剪到最近 MaxActivities 条，outbox 事件同事务写入
func (r *PointsRepository) Award(ctx context.Context, act *model.Activity, event *model.ActivityOutbox) (*model.UserPoints, error) {
	var up model.UserPoints
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ensure(tx, act.UserID); err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&up, "user_id = ?", act.UserID).Error; err != nil {
			return err
		}
		up.TotalPoints += act.Points
		up.Level = pkg.LevelFor(up.TotalPoints)
		if err := tx.Model(&model.UserPoints{}).Where("user_id = ?", act.UserID).Updates(map[string]any{
			"total_points": up.TotalPoints,
			"level":        up.Level,
		}).Error; err != nil {
			return err
		}

		if err := tx.Create(act).Error; err != nil {
			return err
		}
		var stale []uint64
		if err := tx.Model(&model.Activity{}).
			Where("user_id = ?", act.UserID).
			Order("id DESC").
			Offset(model.MaxActivities).
			Limit(1000).
			Pluck("id", &stale).Error; err != nil {
			return err
		}
		if len(stale) > 0 {
			if err := tx.Where("id IN ?", stale).Delete(&model.Activity{}).Error; err != nil {
				return err
			}
		}

		if event != nil {
			return tx.Create(event).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &up, nil
}
