package dao

import (
	"Perish/models"
	"context"
	"time"

	"gorm.io/gorm"
)

type ImageDAO struct {
	Repo[models.Image]
}

func NewImageDAO(db *gorm.DB) *ImageDAO {
	return &ImageDAO{Repo: NewRepo[models.Image](db)}
}

// RecentQuery 按创建时间倒序翻页的查询条件
type RecentQuery struct {
	ImmortalOnly bool
	// AliveAt 非零时只返回此刻仍存活的图片（不朽或未过期）
	AliveAt  time.Time
	Category string
	// Before/BeforeID 游标，非零时只取排在 (Before, BeforeID) 之后的记录
	Before   time.Time
	BeforeID uint64
	Limit    int
}

// GetByID 软删除或不存在时返回 nil
func (d *ImageDAO) GetByID(ctx context.Context, id uint64) (*models.Image, error) {
	db, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}
	var item models.Image
	if err := db.Where("id = ?", id).Limit(1).Find(&item).Error; err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

// FindByIDs 根据 ID 列表查询，已软删除的不返回
func (d *ImageDAO) FindByIDs(ctx context.Context, ids []uint64) ([]*models.Image, error) {
	if len(ids) == 0 {
		return []*models.Image{}, nil
	}
	db, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}
	var images []*models.Image
	err = db.Where("id IN ?", ids).Find(&images).Error
	return images, err
}

// FindImmortal 不朽图片，按时间倒序
func (d *ImageDAO) FindImmortal(ctx context.Context, category string, limit int) ([]*models.Image, error) {
	db, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}
	query := db.Where("is_immortal = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var images []*models.Image
	err = query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&images).Error
	return images, err
}

// FindRecent 时间倒序游标分页
func (d *ImageDAO) FindRecent(ctx context.Context, q RecentQuery) ([]*models.Image, error) {
	db, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}
	query := db.Model(&models.Image{})
	if q.ImmortalOnly {
		query = query.Where("is_immortal = ?", true)
	} else if !q.AliveAt.IsZero() {
		query = query.Where("(is_immortal = ? OR expires_at > ?)", true, q.AliveAt)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if !q.Before.IsZero() {
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", q.Before, q.Before, q.BeforeID)
	}
	var images []*models.Image
	err = query.Order("created_at DESC").Order("id DESC").Limit(q.Limit).Find(&images).Error
	return images, err
}

// FindHallOfFame 名人堂兜底排序：超级赞、点赞、时间
func (d *ImageDAO) FindHallOfFame(ctx context.Context, category string, limit int) ([]*models.Image, error) {
	db, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}
	query := db.Where("is_hall_of_fame = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var images []*models.Image
	err = query.
		Order("superlike_count DESC").
		Order("like_count DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&images).Error
	return images, err
}
