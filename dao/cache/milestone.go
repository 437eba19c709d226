package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 里程碑去重保留时间，远大于图片存活窗口
const milestoneExpireAt = 30 * 24 * time.Hour

type MilestoneStorage struct {
	redis *redis.Client
}

func NewMilestoneStorage(rds *redis.Client) *MilestoneStorage {
	return &MilestoneStorage{rds}
}

// Claim 抢占某张图某个里程碑的通知权，只有第一次返回 true
// redis 不可用时放行，宁可重复通知也不丢
func (m *MilestoneStorage) Claim(ctx context.Context, imageID uint64, threshold int64) (bool, error) {
	if m.redis == nil {
		return true, nil
	}
	ok, err := m.redis.SetNX(ctx, m.name(imageID, threshold), 1, milestoneExpireAt).Result()
	if err != nil {
		return true, err
	}
	return ok, nil
}

func (m *MilestoneStorage) name(imageID uint64, threshold int64) string {
	return fmt.Sprintf("image:milestone:%d:%d", imageID, threshold)
}
