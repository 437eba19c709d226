package service

import (
	"Perish/dao"
	"Perish/models"
	"Perish/pkg/snowflake"
	"Perish/pkg/taskqueue"
	"Perish/types"
	"context"
	"errors"
	"fmt"
	"time"
)

// LikeMilestones 点赞数恰好到这些值时通知作者
var LikeMilestones = []int64{5, 8, 13, 21, 34, 55, 89, 144, 233, 377, 610, 987}

func IsLikeMilestone(count int64) bool {
	for _, m := range LikeMilestones {
		if m == count {
			return true
		}
		if m > count {
			return false
		}
	}
	return false
}

// UTCDayWindow 当前 UTC 自然日 [00:00, 次日 00:00)
func UTCDayWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

var _ IVoteService = (*VoteService)(nil)

type IVoteService interface {
	SubmitLike(ctx context.Context, voterID, imageID uint64) (*types.LikeResponse, error)
	RemoveLike(ctx context.Context, voterID, imageID uint64) (*types.LikeResponse, error)
	SubmitSuperlike(ctx context.Context, voterID, imageID uint64) (*types.SuperlikeResponse, error)
}

// VoteService 不做应用层加锁，唯一性和禁止自投由存储约束保证
type VoteService struct {
	Images     ImageStore
	Likes      LikeStore
	Superlikes SuperlikeStore
	Settings   ISettingsService
	Tasks      taskqueue.Queue
	Now        func() time.Time
}

func NewVoteService(
	images ImageStore,
	likes LikeStore,
	superlikes SuperlikeStore,
	settings ISettingsService,
	tasks taskqueue.Queue,
) *VoteService {
	return &VoteService{
		Images:     images,
		Likes:      likes,
		Superlikes: superlikes,
		Settings:   settings,
		Tasks:      tasks,
		Now:        time.Now,
	}
}

// SubmitLike 点赞开关：已赞则取消，未赞则点赞
func (s *VoteService) SubmitLike(ctx context.Context, voterID, imageID uint64) (*types.LikeResponse, error) {
	img, err := s.loadVotable(ctx, imageID)
	if err != nil {
		return nil, err
	}

	liked, err := s.Likes.Exists(ctx, voterID, imageID)
	if err != nil {
		return nil, fmt.Errorf("check like: %w", err)
	}
	if liked {
		return s.removeLike(ctx, voterID, imageID)
	}
	if img.UserID == voterID {
		return nil, ErrSelfVote
	}

	created := true
	if err := s.Likes.Create(ctx, voterID, imageID); err != nil {
		switch {
		case errors.Is(err, dao.ErrSelfVote):
			return nil, ErrSelfVote
		case errors.Is(err, dao.ErrDuplicateVote):
			// 并发的重复点赞，结果已经是已赞
			created = false
		case errors.Is(err, dao.ErrVoteConstraint):
			return nil, ErrVoteConflict
		default:
			return nil, fmt.Errorf("create like: %w", err)
		}
	}

	count, err := s.likeCount(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if created {
		now := s.now().UTC()
		if IsLikeMilestone(count) {
			s.enqueue(&types.NotificationEvent{
				ID:        snowflake.GenID(),
				Type:      types.NotificationLikeMilestone,
				UserID:    img.UserID,
				ActorID:   voterID,
				ImageID:   imageID,
				Threshold: count,
				Count:     count,
				CreatedAt: now,
			})
		}
		s.track(types.AnalyticsImageLiked, voterID, imageID, map[string]any{"like_count": count}, now)
	}
	return &types.LikeResponse{Liked: true, LikeCount: count}, nil
}

// RemoveLike 幂等取消点赞，过期图片也允许取消
func (s *VoteService) RemoveLike(ctx context.Context, voterID, imageID uint64) (*types.LikeResponse, error) {
	img, err := s.Images.GetByID(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	if img == nil {
		return nil, ErrImageNotFound
	}
	return s.removeLike(ctx, voterID, imageID)
}

func (s *VoteService) removeLike(ctx context.Context, voterID, imageID uint64) (*types.LikeResponse, error) {
	removed, err := s.Likes.Delete(ctx, voterID, imageID)
	if err != nil {
		return nil, fmt.Errorf("delete like: %w", err)
	}
	count, err := s.likeCount(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if removed {
		s.track(types.AnalyticsImageUnliked, voterID, imageID, map[string]any{"like_count": count}, s.now().UTC())
	}
	return &types.LikeResponse{Liked: false, LikeCount: count}, nil
}

func (s *VoteService) SubmitSuperlike(ctx context.Context, voterID, imageID uint64) (*types.SuperlikeResponse, error) {
	img, err := s.loadVotable(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img.UserID == voterID {
		return nil, ErrSelfVote
	}

	exists, err := s.Superlikes.Exists(ctx, voterID, imageID)
	if err != nil {
		return nil, fmt.Errorf("check superlike: %w", err)
	}
	if exists {
		return nil, ErrDuplicateSuperlike
	}

	// 只实现了 UTC 零点重置
	settings := s.Settings.LoadSuperlikeSettings(ctx)
	now := s.now().UTC()
	from, resetAt := UTCDayWindow(now)
	used, err := s.Superlikes.CountBetween(ctx, voterID, from, resetAt)
	if err != nil {
		return nil, fmt.Errorf("count superlikes: %w", err)
	}
	if used >= int64(settings.DailyLimit) {
		return nil, DailyLimitReached(resetAt)
	}

	if err := s.Superlikes.Create(ctx, voterID, imageID); err != nil {
		switch {
		case errors.Is(err, dao.ErrSelfVote):
			return nil, ErrSelfVote
		case errors.Is(err, dao.ErrDuplicateVote):
			return nil, ErrDuplicateSuperlike
		case errors.Is(err, dao.ErrVoteConstraint):
			return nil, ErrVoteConflict
		default:
			return nil, fmt.Errorf("create superlike: %w", err)
		}
	}

	latest, err := s.Images.GetByID(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("reload image: %w", err)
	}
	if latest == nil {
		return nil, ErrImageNotFound
	}
	count := latest.SuperlikeCount

	s.enqueue(&types.NotificationEvent{
		ID:        snowflake.GenID(),
		Type:      types.NotificationSuperlikeReceived,
		UserID:    img.UserID,
		ActorID:   voterID,
		ImageID:   imageID,
		Count:     count,
		CreatedAt: now,
	})
	s.track(types.AnalyticsImageSuperliked, voterID, imageID, map[string]any{
		"superlike_count": count,
		"daily_used":      used + 1,
	}, now)

	return &types.SuperlikeResponse{Superliked: true, SuperlikeCount: count, ResetAt: resetAt}, nil
}

// loadVotable 图片存在且未过期
func (s *VoteService) loadVotable(ctx context.Context, imageID uint64) (*models.Image, error) {
	img, err := s.Images.GetByID(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	if img == nil {
		return nil, ErrImageNotFound
	}
	if img.Expired(s.now()) {
		return nil, ErrImageExpired
	}
	return img, nil
}

// likeCount 计数以库里为准，重新读一次
func (s *VoteService) likeCount(ctx context.Context, imageID uint64) (int64, error) {
	img, err := s.Images.GetByID(ctx, imageID)
	if err != nil {
		return 0, fmt.Errorf("reload image: %w", err)
	}
	if img == nil {
		return 0, ErrImageNotFound
	}
	return img.LikeCount, nil
}

func (s *VoteService) enqueue(ev *types.NotificationEvent) {
	if s.Tasks == nil {
		return
	}
	s.Tasks.Enqueue(taskqueue.Task{Kind: ev.Type, Payload: ev})
}

func (s *VoteService) track(name string, userID, imageID uint64, props map[string]any, now time.Time) {
	if s.Tasks == nil {
		return
	}
	s.Tasks.Enqueue(taskqueue.Task{Kind: name, Payload: &types.AnalyticsEvent{
		ID:        snowflake.GenID(),
		Name:      name,
		UserID:    userID,
		ImageID:   imageID,
		Props:     props,
		CreatedAt: now,
	}})
}

func (s *VoteService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
