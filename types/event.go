package types

import "time"

// 通知类型
const (
	NotificationLikeMilestone     = "like_milestone"
	NotificationSuperlikeReceived = "superlike_received"
)

// 埋点事件名
const (
	AnalyticsImageLiked      = "image_liked"
	AnalyticsImageUnliked    = "image_unliked"
	AnalyticsImageSuperliked = "image_superliked"
)

// NotificationEvent 投递到 rocketmq，由通知服务消费
type NotificationEvent struct {
	ID        int64     `json:"id,string"`
	Type      string    `json:"type"`
	UserID    uint64    `json:"user_id,string"` // 接收人，图片作者
	ActorID   uint64    `json:"actor_id,string"`
	ImageID   uint64    `json:"image_id,string"`
	Threshold int64     `json:"threshold,omitempty"`
	Count     int64     `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// AnalyticsEvent 投递到 kafka
type AnalyticsEvent struct {
	ID        int64          `json:"id,string"`
	Name      string         `json:"name"`
	UserID    uint64         `json:"user_id,string"`
	ImageID   uint64         `json:"image_id,string"`
	Props     map[string]any `json:"props,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
