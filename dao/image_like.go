package dao

import (
	"Perish/models"
	"context"
	"time"

	"gorm.io/gorm"
)

type ImageLikeDAO struct {
	Repo[models.ImageLike]
}

func NewImageLikeDAO(db *gorm.DB) *ImageLikeDAO {
	return &ImageLikeDAO{Repo: NewRepo[models.ImageLike](db)}
}

func (d *ImageLikeDAO) Exists(ctx context.Context, userID, imageID uint64) (bool, error) {
	return d.IsExist(ctx, "image_id = ? AND user_id = ?", imageID, userID)
}

// Create 写点赞记录并累加计数，同一事务
func (d *ImageLikeDAO) Create(ctx context.Context, userID, imageID uint64) error {
	err := d.Transaction(ctx, func(tx *gorm.DB) error {
		like := &models.ImageLike{
			ImageID:   imageID,
			UserID:    userID,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(like).Error; err != nil {
			return err
		}
		return tx.Model(&models.Image{}).
			Where("id = ?", imageID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).
			Error
	})
	return translateVoteError(err)
}

// Delete 删除点赞记录，记录不存在时返回 false 且不改计数
func (d *ImageLikeDAO) Delete(ctx context.Context, userID, imageID uint64) (bool, error) {
	removed := false
	err := d.Transaction(ctx, func(tx *gorm.DB) error {
		result := tx.Where("image_id = ? AND user_id = ?", imageID, userID).
			Delete(&models.ImageLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&models.Image{}).
			Where("id = ?", imageID).
			UpdateColumn("like_count", gorm.Expr("GREATEST(like_count - 1, 0)")).
			Error
	})
	return removed, err
}

// LikedAmong 一次查询返回 userID 在 imageIDs 中点过赞的集合
func (d *ImageLikeDAO) LikedAmong(ctx context.Context, userID uint64, imageIDs []uint64) (map[uint64]bool, error) {
	result := make(map[uint64]bool, len(imageIDs))
	if userID == 0 || len(imageIDs) == 0 {
		return result, nil
	}
	db, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	err = db.Model(&models.ImageLike{}).
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
