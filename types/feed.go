package types

import "time"

type FeedType string

const (
	FeedRecent     FeedType = "recent"
	FeedImmortal   FeedType = "immortal"
	FeedHallOfFame FeedType = "hall-of-fame"
)

func (f FeedType) Valid() bool {
	switch f {
	case FeedRecent, FeedImmortal, FeedHallOfFame:
		return true
	}
	return false
}

type SortMode string

const (
	SortPosition SortMode = "position"
	SortNewest   SortMode = "newest"
)

// 降级原因，客户端据此区分占位内容和真实信息流
const (
	ReasonTimeout       = "supabase_timeout"
	ReasonError         = "supabase_error"
	ReasonEmptyFeed     = "supabase_empty_feed"
	ReasonNotConfigured = "supabase_not_configured"
)

// ListImagesRequest GET /images 查询参数
type ListImagesRequest struct {
	Feed     string `form:"feed"`
	Sort     string `form:"sort"`
	Category string `form:"category"`
	Cursor   string `form:"cursor"`
	Limit    int    `form:"limit"`
}

// Survival 当日排名信息，只有未不朽的图片有
type Survival struct {
	Rank        int  `json:"rank"`
	CohortRank  int  `json:"cohortRank"`
	CohortSize  int  `json:"cohortSize"`
	Cutoff      int  `json:"cutoff"`
	LikesNeeded int  `json:"likesNeeded"`
	WillSurvive bool `json:"willSurvive"`
}

type HallOfFameRank struct {
	RankPosition int     `json:"rankPosition"`
	Score        float64 `json:"score"`
}

type FeedItem struct {
	ID             uint64          `json:"id,string"`
	OwnerID        uint64          `json:"ownerId,string"`
	URL            string          `json:"url"`
	Prompt         string          `json:"prompt,omitempty"`
	Category       string          `json:"category"`
	LikeCount      int64           `json:"likeCount"`
	SuperlikeCount int64           `json:"superlikeCount"`
	IsImmortal     bool            `json:"isImmortal"`
	IsHallOfFame   bool            `json:"isHallOfFame"`
	CreatedAt      time.Time       `json:"createdAt"`
	ExpiresAt      *time.Time      `json:"expiresAt,omitempty"`
	Survival       *Survival       `json:"survival,omitempty"`
	HallOfFame     *HallOfFameRank `json:"hallOfFame,omitempty"`
	LikedByMe      bool            `json:"likedByMe"`
	SuperlikedByMe bool            `json:"superlikedByMe"`
}

type FeedResponse struct {
	Items      []*FeedItem `json:"items"`
	NextCursor string      `json:"nextCursor"`
	Limit      int         `json:"limit"`
	Feed       FeedType    `json:"feed"`
	Sort       SortMode    `json:"sort"`
	Degraded   bool        `json:"degraded,omitempty"`
	Reason     string      `json:"reason,omitempty"`
}
