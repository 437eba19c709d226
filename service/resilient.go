package service

import (
	"Perish/config"
	"Perish/pkg/cursor"
	"Perish/pkg/log"
	"Perish/types"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

const defaultFeedTimeout = 8 * time.Second

var feedDegradedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "perish_feed_degraded_total",
		Help: "Feed responses served from the fallback catalog",
	},
	[]string{"reason"},
)

func init() {
	prometheus.MustRegister(feedDegradedTotal)
}

var _ IImageFeedService = (*ResilientFeedService)(nil)

// IImageFeedService GET /images 的入口，读路径的后端故障不会变成错误返回
type IImageFeedService interface {
	GetFeed(ctx context.Context, req *types.ListImagesRequest, viewerID uint64) (*types.FeedResponse, error)
}

type ResilientFeedService struct {
	Feed     IFeedService
	Settings ISettingsService
	Catalog  *FallbackCatalog
	Codec    *cursor.Codec
	Timeout  time.Duration
}

func NewResilientFeedService(
	feed IFeedService,
	settings ISettingsService,
	catalog *FallbackCatalog,
	codec *cursor.Codec,
	conf *config.Feed,
) *ResilientFeedService {
	return &ResilientFeedService{
		Feed:     feed,
		Settings: settings,
		Catalog:  catalog,
		Codec:    codec,
		Timeout:  conf.Timeout,
	}
}

type composeResult struct {
	resp *types.FeedResponse
	err  error
}

func (s *ResilientFeedService) GetFeed(ctx context.Context, req *types.ListImagesRequest, viewerID uint64) (*types.FeedResponse, error) {
	q, err := s.parse(req, viewerID)
	if err != nil {
		return nil, err
	}

	// 兜底游标继续翻兜底内容，不在半路切回实时链路
	if q.Cursor != nil && q.Cursor.Fallback > 0 {
		return s.Catalog.Compose(q, s.feedSettings(), reasonFromCode(q.Cursor.Fallback))
	}
	if !s.Feed.Ready() {
		return s.degrade(q, types.ReasonNotConfigured, nil)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultFeedTimeout
	}

	// 超时只是放弃等待，组装本身不取消，跑完结果直接丢掉
	done := make(chan composeResult, 1)
	go func() {
		var res composeResult
		var pc panics.Catcher
		pc.Try(func() {
			res.resp, res.err = s.Feed.ComposeFeed(context.WithoutCancel(ctx), q)
		})
		if r := pc.Recovered(); r != nil {
			res.err = r.AsError()
		}
		done <- res
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			// 游标和排序方式不匹配属于请求错误
			if errors.Is(res.err, ErrInvalidCursor) {
				return nil, res.err
			}
			return s.degrade(q, types.ReasonError, res.err)
		}
		if q.Cursor == nil && len(res.resp.Items) == 0 {
			return s.degrade(q, types.ReasonEmptyFeed, nil)
		}
		return res.resp, nil
	case <-timer.C:
		return s.degrade(q, types.ReasonTimeout, nil)
	}
}

func (s *ResilientFeedService) degrade(q FeedQuery, reason string, cause error) (*types.FeedResponse, error) {
	feedDegradedTotal.WithLabelValues(reason).Inc()
	log.L.Warn("feed degraded",
		zap.String("reason", reason),
		zap.String("feed", string(q.Feed)),
		zap.String("category", q.Category),
		zap.Error(cause),
	)
	// 兜底内容的游标体系不同，实时游标不能带过去
	q.Cursor = nil
	return s.Catalog.Compose(q, s.feedSettings(), reason)
}

// feedSettings 降级时后端可能正卡着，只用已有的快照
func (s *ResilientFeedService) feedSettings() FeedSettings {
	if s.Settings == nil {
		return DefaultSettings().Feed
	}
	return s.Settings.Cached().Feed
}

// parse 校验 feed、sort 和 cursor
func (s *ResilientFeedService) parse(req *types.ListImagesRequest, viewerID uint64) (FeedQuery, error) {
	feed := types.FeedType(strings.TrimSpace(req.Feed))
	if !feed.Valid() {
		return FeedQuery{}, ErrInvalidFeed
	}
	mode := types.SortMode(strings.TrimSpace(req.Sort))
	if mode != "" && mode != types.SortPosition && mode != types.SortNewest {
		return FeedQuery{}, ErrInvalidSort
	}
	q := FeedQuery{
		Feed:     feed,
		Sort:     NormalizeSort(feed, mode),
		Category: strings.TrimSpace(req.Category),
		Limit:    req.Limit,
		ViewerID: viewerID,
	}
	if token := strings.TrimSpace(req.Cursor); token != "" {
		cur, err := s.Codec.Decode(token, cursorFeed(feed))
		if err != nil {
			return FeedQuery{}, ErrInvalidCursor
		}
		q.Cursor = &cur
	}
	return q, nil
}
