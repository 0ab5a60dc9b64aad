package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"PedagoPass/internal/model"
	"PedagoPass/internal/pkg"
	"PedagoPass/internal/repository/mysql"
)

type PointsService struct {
	repo *mysql.PointsRepository
	log  *slog.Logger
}

func NewPointsService(repo *mysql.PointsRepository, log *slog.Logger) *PointsService {
	return &PointsService{repo: repo, log: log}
}

// PointsSummary 用户积分概览
type PointsSummary struct {
	UserID            uint64           `json:"userId"`
	TotalPoints       int64            `json:"totalPoints"`
	Level             string           `json:"level"`
	PointsToNextLevel int64            `json:"pointsToNextLevel"`
	Activities        []model.Activity `json:"activities"`
}

// activityEvent outbox 中的事件体
type activityEvent struct {
	EventID     string    `json:"eventId"`
	ActivityID  string    `json:"activityId"`
	UserID      uint64    `json:"userId"`
	Type        string    `json:"type"`
	Points      int64     `json:"points"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// AwardPoints 分值必须为正，校验失败时不改动账本
func (s *PointsService) AwardPoints(ctx context.Context, userID uint64, activityType, description string, points int64) (*PointsSummary, error) {
	if userID == 0 {
		return nil, pkg.ErrValidation("invalid user id")
	}
	if points <= 0 {
		return nil, pkg.ErrValidation("points must be a positive integer")
	}
	activityType = strings.TrimSpace(activityType)
	if activityType == "" {
		return nil, pkg.ErrValidation("activity type is required")
	}

	now := time.Now()
	act := &model.Activity{
		ActivityID:  uuid.NewString(),
		UserID:      userID,
		Type:        activityType,
		Description: description,
		Points:      points,
		CreatedAt:   now,
	}
	ev := activityEvent{
		EventID:     uuid.NewString(),
		ActivityID:  act.ActivityID,
		UserID:      userID,
		Type:        activityType,
		Points:      points,
		Description: description,
		OccurredAt:  now,
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}

	up, err := s.repo.Award(ctx, act, &model.ActivityOutbox{
		EventID:   ev.EventID,
		EventType: activityType,
		UserID:    userID,
		Payload:   string(payload),
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("points awarded", "user_id", userID, "type", activityType, "points", points, "total", up.TotalPoints)
	return &PointsSummary{
		UserID:            userID,
		TotalPoints:       up.TotalPoints,
		Level:             up.Level,
		PointsToNextLevel: pkg.PointsToNextLevel(up.TotalPoints),
		Activities:        []model.Activity{*act},
	}, nil
}

// AwardActivity 按活动类型的固定分值发放
func (s *PointsService) AwardActivity(ctx context.Context, userID uint64, activityType, description string) error {
	points := pkg.PointsFor(activityType)
	if points == 0 {
		return pkg.ErrValidation("unknown activity type")
	}
	_, err := s.AwardPoints(ctx, userID, activityType, description, points)
	return err
}

// GetUserPoints 首次查询返回零值账本而不是报错
func (s *PointsService) GetUserPoints(ctx context.Context, userID uint64) (*PointsSummary, error) {
	if userID == 0 {
		return nil, pkg.ErrValidation("invalid user id")
	}
	up, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	acts, err := s.repo.RecentActivities(ctx, userID, model.MaxActivities)
	if err != nil {
		return nil, err
	}
	if acts == nil {
		acts = []model.Activity{}
	}
	return &PointsSummary{
		UserID:            userID,
		TotalPoints:       up.TotalPoints,
		Level:             pkg.LevelFor(up.TotalPoints),
		PointsToNextLevel: pkg.PointsToNextLevel(up.TotalPoints),
		Activities:        acts,
	}, nil
}

// awardQuietly 积分是附带效果，失败只记日志不影响主流程
func awardQuietly(ctx context.Context, log *slog.Logger, awarder PointsAwarder, userID uint64, activityType, description string) {
	if awarder == nil {
		return
	}
	if err := awarder.AwardActivity(ctx, userID, activityType, description); err != nil {
		log.Warn("award points failed", "user_id", userID, "type", activityType, "err", err)
	}
}
