package pkg

import "PedagoPass/internal/model"

const (
	SilverThreshold = 500
	GoldThreshold   = 1000
)

var activityPoints = map[string]int64{
	model.ActivityPostCreated:      10,
	model.ActivityCommentCreated:   5,
	model.ActivityLikeReceived:     2,
	model.ActivityCommunityCreated: 20,
	model.ActivityCommunityJoined:  5,
}

// PointsFor 返回活动类型对应的固定分值，未知类型返回 0
func PointsFor(activityType string) int64 {
	return activityPoints[activityType]
}

func LevelFor(total int64) string {
	switch {
	case total >= GoldThreshold:
		return model.LevelGold
	case total >= SilverThreshold:
		return model.LevelSilver
	default:
		return model.LevelBronze
	}
}

// PointsToNextLevel 已是最高等级时返回 0
func PointsToNextLevel(total int64) int64 {
	switch {
	case total >= GoldThreshold:
		return 0
	case total >= SilverThreshold:
		return GoldThreshold - total
	default:
		return SilverThreshold - total
	}
}
