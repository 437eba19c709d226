package models

import "time"

// ImageSuperlike 超级赞，一经写入不可撤销
// idx_user_created 用于按 UTC 自然日统计配额
type ImageSuperlike struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ImageID   uint64    `gorm:"column:image_id;not null;uniqueIndex:uk_image_user,priority:1" json:"image_id"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:uk_image_user,priority:2;index:idx_user_created,priority:1" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_user_created,priority:2" json:"created_at"`
}

func (ImageSuperlike) TableName() string { return "image_superlikes" }
