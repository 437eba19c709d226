package service

import (
	"Perish/dao"
	"Perish/models"
	"context"
	"time"
)

// 服务层依赖的存储能力，dao 实现，测试用内存实现替换

type ImageStore interface {
	Ready() bool
	GetByID(ctx context.Context, id uint64) (*models.Image, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]*models.Image, error)
	FindImmortal(ctx context.Context, category string, limit int) ([]*models.Image, error)
	FindRecent(ctx context.Context, q dao.RecentQuery) ([]*models.Image, error)
	FindHallOfFame(ctx context.Context, category string, limit int) ([]*models.Image, error)
}

type LikeStore interface {
	Exists(ctx context.Context, userID, imageID uint64) (bool, error)
	Create(ctx context.Context, userID, imageID uint64) error
	Delete(ctx context.Context, userID, imageID uint64) (bool, error)
	LikedAmong(ctx context.Context, userID uint64, imageIDs []uint64) (map[uint64]bool, error)
}

type SuperlikeStore interface {
	Exists(ctx context.Context, userID, imageID uint64) (bool, error)
	Create(ctx context.Context, userID, imageID uint64) error
	CountBetween(ctx context.Context, userID uint64, from, to time.Time) (int64, error)
	SuperlikedAmong(ctx context.Context, userID uint64, imageIDs []uint64) (map[uint64]bool, error)
}

type RankingSource interface {
	CurrentCohort(ctx context.Context) ([]models.CohortRanking, error)
	HallOfFame(ctx context.Context, limit int) ([]models.HallOfFameRanking, error)
}

type SettingSource interface {
	LoadAll(ctx context.Context) ([]models.Setting, error)
}

// MilestoneGuard 同一张图同一个里程碑只通知一次
type MilestoneGuard interface {
	Claim(ctx context.Context, imageID uint64, threshold int64) (bool, error)
}

type NotificationPublisher interface {
	SendMsg(ctx context.Context, topic, key string, body []byte) error
}

type AnalyticsPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

var (
	_ ImageStore     = (*dao.ImageDAO)(nil)
	_ LikeStore      = (*dao.ImageLikeDAO)(nil)
	_ SuperlikeStore = (*dao.ImageSuperlikeDAO)(nil)
	_ RankingSource  = (*dao.RankingDAO)(nil)
	_ SettingSource  = (*dao.SettingDAO)(nil)
)
