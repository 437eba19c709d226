package models

import "time"

// ImageLike 点赞记录
// 唯一键: image_id + user_id，自赞由表上的触发器拦截
type ImageLike struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ImageID   uint64    `gorm:"column:image_id;not null;uniqueIndex:uk_image_user,priority:1" json:"image_id"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:uk_image_user,priority:2" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (ImageLike) TableName() string { return "image_likes" }
