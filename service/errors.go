package service

import (
	"Perish/pkg/response"
	"net/http"
	"time"
)

var (
	ErrImageNotFound      = response.NewError(http.StatusNotFound, "IMAGE_NOT_FOUND", "图片不存在或已删除")
	ErrImageExpired       = response.NewError(http.StatusGone, "IMAGE_EXPIRED", "图片已过期，无法投票")
	ErrSelfVote           = response.NewError(http.StatusForbidden, "SELF_VOTE", "不能给自己的图片投票")
	ErrDuplicateSuperlike = response.NewError(http.StatusConflict, "DUPLICATE_SUPERLIKE", "已经超级赞过这张图片")
	ErrDailyLimitReached  = response.NewError(http.StatusConflict, "DAILY_LIMIT_REACHED", "今日超级赞次数已用完")
	ErrVoteConflict       = response.NewError(http.StatusConflict, "VOTE_CONSTRAINT", "投票冲突，请刷新后重试")

	ErrInvalidFeed   = response.NewError(http.StatusBadRequest, "INVALID_FEED", "feed 参数必须是 recent、immortal 或 hall-of-fame")
	ErrInvalidSort   = response.NewError(http.StatusBadRequest, "INVALID_SORT", "sort 参数必须是 position 或 newest")
	ErrInvalidCursor = response.NewError(http.StatusBadRequest, "INVALID_CURSOR", "cursor 无效")
	ErrInvalidImage  = response.NewError(http.StatusBadRequest, "INVALID_IMAGE_ID", "图片 ID 无效")
	ErrUnauthorized  = response.NewError(http.StatusUnauthorized, "UNAUTHORIZED", "请先登录")
)

// DailyLimitReached 带上下一次重置时间
func DailyLimitReached(resetAt time.Time) *response.BizError {
	return ErrDailyLimitReached.With("resetAt", resetAt.UTC())
}
