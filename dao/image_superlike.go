package dao

import (
	"Perish/models"
	"context"
	"time"

	"gorm.io/gorm"
)

type ImageSuperlikeDAO struct {
	Repo[models.ImageSuperlike]
}

func NewImageSuperlikeDAO(db *gorm.DB) *ImageSuperlikeDAO {
	return &ImageSuperlikeDAO{Repo: NewRepo[models.ImageSuperlike](db)}
}

func (d *ImageSuperlikeDAO) Exists(ctx context.Context, userID, imageID uint64) (bool, error) {
	return d.IsExist(ctx, "image_id = ? AND user_id = ?", imageID, userID)
}

// Create 写超级赞并累加计数
func (d *ImageSuperlikeDAO) Create(ctx context.Context, userID, imageID uint64) error {
	err := d.Transaction(ctx, func(tx *gorm.DB) error {
		item := &models.ImageSuperlike{
			ImageID:   imageID,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return tx.Model(&models.Image{}).
			Where("id = ?", imageID).
			UpdateColumn("superlike_count", gorm.Expr("superlike_count + 1")).
			Error
	})
	return translateVoteError(err)
}

// CountBetween 统计 [from, to) 内 userID 发出的超级赞
func (d *ImageSuperlikeDAO) CountBetween(ctx context.Context, userID uint64, from, to time.Time) (int64, error) {
	db, err := d.conn(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	err = db.Model(&models.ImageSuperlike{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Count(&count).Error
	return count, err
}

func (d *ImageSuperlikeDAO) SuperlikedAmong(ctx context.Context, userID uint64, imageIDs []uint64) (map[uint64]bool, error) {
	result := make(map[uint64]bool, len(imageIDs))
	if userID == 0 || len(imageIDs) == 0 {
		return result, nil
	}
	db, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	err = db.Model(&models.ImageSuperlike{}).
		Where("user_id = ? AND image_id IN ?", userID, imageIDs).
		Pluck("image_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
