package models

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Lifetime 新图片的存活窗口
const Lifetime = 24 * time.Hour

// Image 用户提交的图片
// is_immortal=1 的图片永不过期，也不参与当日排名
type Image struct {
	ID             uint64         `gorm:"column:id;primaryKey" json:"id"`
	UserID         uint64         `gorm:"column:user_id;not null;index:idx_user_id" json:"user_id"`
	URL            string         `gorm:"column:url;type:varchar(1024);not null;default:''" json:"url"`
	Prompt         string         `gorm:"column:prompt;type:varchar(1000);not null;default:''" json:"prompt"`
	Category       string         `gorm:"column:category;type:varchar(64);not null;default:'';index:idx_category_created,priority:1" json:"category"`
	LikeCount      int64          `gorm:"column:like_count;not null;default:0" json:"like_count"`
	SuperlikeCount int64          `gorm:"column:superlike_count;not null;default:0" json:"superlike_count"`
	IsImmortal     bool           `gorm:"column:is_immortal;not null;default:0;index:idx_immortal_created,priority:1" json:"is_immortal"`
	IsHallOfFame   bool           `gorm:"column:is_hall_of_fame;not null;default:0" json:"is_hall_of_fame"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;index:idx_category_created,priority:2;index:idx_immortal_created,priority:2" json:"created_at"`
	ExpiresAt      time.Time      `gorm:"column:expires_at;not null" json:"expires_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Image) TableName() string {
	return "images"
}

// Expired 不朽图片永不过期
func (i *Image) Expired(now time.Time) bool {
	if i.IsImmortal {
		return false
	}
	return !now.Before(i.ExpiresAt)
}

// VisualKey 去重键：规范化后的 URL，URL 为空时退化为 ID
func (i *Image) VisualKey() string {
	key := strings.ToLower(strings.TrimSpace(i.URL))
	if key == "" {
		return "id:" + strconv.FormatUint(i.ID, 10)
	}
	return key
}
