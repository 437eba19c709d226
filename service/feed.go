package service

import (
	"Perish/dao"
	"Perish/models"
	"Perish/pkg/cursor"
	"Perish/pkg/log"
	"Perish/types"
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// 排名合并时不朽图片的读取上限
	immortalCeiling = 1000
	// 时间序翻页的补拉：每轮多取一倍，最多几轮
	overFetchFactor = 2
	maxFetchRounds  = 4
)

// FeedQuery 已校验过的信息流请求
type FeedQuery struct {
	Feed     types.FeedType
	Sort     types.SortMode
	Category string
	Cursor   *cursor.Cursor
	Limit    int
	ViewerID uint64
}

var _ IFeedService = (*FeedService)(nil)

type IFeedService interface {
	Ready() bool
	ComposeFeed(ctx context.Context, q FeedQuery) (*types.FeedResponse, error)
}

type FeedService struct {
	Images     ImageStore
	Likes      LikeStore
	Superlikes SuperlikeStore
	Ranking    IRankingService
	Settings   ISettingsService
	Codec      *cursor.Codec
	Now        func() time.Time
}

func NewFeedService(
	images ImageStore,
	likes LikeStore,
	superlikes SuperlikeStore,
	ranking IRankingService,
	settings ISettingsService,
	codec *cursor.Codec,
) *FeedService {
	return &FeedService{
		Images:     images,
		Likes:      likes,
		Superlikes: superlikes,
		Ranking:    ranking,
		Settings:   settings,
		Codec:      codec,
		Now:        time.Now,
	}
}

// Ready 数据库没配置时直接走兜底
func (s *FeedService) Ready() bool {
	return s.Images != nil && s.Images.Ready()
}

func (s *FeedService) ComposeFeed(ctx context.Context, q FeedQuery) (*types.FeedResponse, error) {
	q.Category = normalizeCategory(q.Category)
	q.Sort = NormalizeSort(q.Feed, q.Sort)

	var (
		page *feedPage
		err  error
	)
	switch {
	case q.Feed == types.FeedRecent && q.Sort == types.SortPosition:
		page, err = s.composeByPosition(ctx, q)
	case q.Feed == types.FeedRecent || q.Feed == types.FeedImmortal:
		page, err = s.composeByRecency(ctx, q)
	case q.Feed == types.FeedHallOfFame:
		page, err = s.composeHallOfFame(ctx, q)
	default:
		return nil, ErrInvalidFeed
	}
	if err != nil {
		return nil, err
	}

	items := page.items
	s.annotate(ctx, q.ViewerID, items)

	resp := &types.FeedResponse{
		Items: items,
		Limit: page.limit,
		Feed:  q.Feed,
		Sort:  q.Sort,
	}
	if page.next != nil {
		resp.NextCursor = s.Codec.Encode(*page.next)
	}
	return resp, nil
}

// NormalizeSort immortal 只有时间序，名人堂只有名次序
func NormalizeSort(feed types.FeedType, mode types.SortMode) types.SortMode {
	switch feed {
	case types.FeedImmortal:
		return types.SortNewest
	case types.FeedHallOfFame:
		return types.SortPosition
	}
	if mode == "" {
		return types.SortPosition
	}
	return mode
}

// PageLimit 0 取默认值，超过上限截断
func PageLimit(requested int, fs FeedSettings) int {
	if requested <= 0 {
		return fs.PageSizeDefault
	}
	if requested > fs.PageSizeMax {
		return fs.PageSizeMax
	}
	return requested
}

type feedPage struct {
	items []*types.FeedItem
	next  *cursor.Cursor
	limit int
}

type entryKind int

const (
	entryRanked entryKind = iota
	entryImmortal
)

// feedEntry 排名图片和不朽图片合并排序用
type feedEntry struct {
	kind   entryKind
	image  *models.Image
	cohort *CohortEntry
}

// lessEntry 先排名图片按全局名次，再不朽图片按时间倒序
func lessEntry(a, b *feedEntry) bool {
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	if a.kind == entryRanked {
		return a.cohort.Rank < b.cohort.Rank
	}
	if !a.image.CreatedAt.Equal(b.image.CreatedAt) {
		return a.image.CreatedAt.After(b.image.CreatedAt)
	}
	return a.image.ID < b.image.ID
}

func (s *FeedService) composeByPosition(ctx context.Context, q FeedQuery) (*feedPage, error) {
	offset := 0
	if q.Cursor != nil {
		if q.Cursor.Kind != cursor.KindOffset {
			return nil, ErrInvalidCursor
		}
		offset = q.Cursor.Int()
	}

	var (
		settings  *Settings
		cohort    []*CohortEntry
		immortals []*models.Image
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		settings = s.Settings.Snapshot(gctx)
		return nil
	})
	g.Go(func() error {
		var err error
		cohort, err = s.Ranking.ResolveCohortRanking(gctx, q.Category)
		return err
	})
	g.Go(func() error {
		var err error
		immortals, err = s.Images.FindImmortal(gctx, q.Category, immortalCeiling)
		if err != nil {
			return fmt.Errorf("load immortal images: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	limit := PageLimit(q.Limit, settings.Feed)
	entries := make([]*feedEntry, 0, len(cohort)+len(immortals))
	for _, c := range cohort {
		if c.LikesNeeded < 0 {
			c.LikesNeeded = settings.Feed.SurvivalLikesNeededDefault
		}
		entries = append(entries, &feedEntry{kind: entryRanked, image: c.Image, cohort: c})
	}
	for _, img := range immortals {
		entries = append(entries, &feedEntry{kind: entryImmortal, image: img})
	}
	merged := MergeEntries(entries)

	page := &feedPage{limit: limit, items: make([]*types.FeedItem, 0, limit)}
	if offset >= len(merged) {
		return page, nil
	}
	end := offset + limit
	if end > len(merged) {
		end = len(merged)
	}
	for _, e := range merged[offset:end] {
		item := toFeedItem(e.image)
		if e.cohort != nil {
			item.Survival = toSurvival(e.cohort)
		}
		page.items = append(page.items, item)
	}
	if end < len(merged) {
		next := cursor.Offset(cursor.FeedRecent, end)
		page.next = &next
	}
	return page, nil
}

// MergeEntries 统一排序后按视觉键去重，保留第一次出现的
func MergeEntries(entries []*feedEntry) []*feedEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return lessEntry(entries[i], entries[j])
	})
	seen := make(map[string]struct{}, len(entries))
	merged := make([]*feedEntry, 0, len(entries))
	for _, e := range entries {
		key := e.image.VisualKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, e)
	}
	return merged
}

// composeByRecency 按创建时间倒序直接翻库，去重丢掉的条数靠多拉几轮补齐
func (s *FeedService) composeByRecency(ctx context.Context, q FeedQuery) (*feedPage, error) {
	feed := cursorFeed(q.Feed)
	var (
		before   time.Time
		beforeID uint64
	)
	if q.Cursor != nil {
		if q.Cursor.Kind != cursor.KindTimestamp {
			return nil, ErrInvalidCursor
		}
		before, beforeID = q.Cursor.Time(), q.Cursor.ID
	}

	settings := s.Settings.Snapshot(ctx)
	limit := PageLimit(q.Limit, settings.Feed)

	query := dao.RecentQuery{
		ImmortalOnly: q.Feed == types.FeedImmortal,
		Category:     q.Category,
	}
	if q.Feed == types.FeedRecent {
		query.AliveAt = s.now()
	}

	seen := make(map[string]struct{}, limit)
	images := make([]*models.Image, 0, limit)
	var last *models.Image
	exhausted := false
	for round := 0; round < maxFetchRounds && len(images) < limit; round++ {
		query.Before, query.BeforeID = before, beforeID
		query.Limit = (limit - len(images)) * overFetchFactor
		batch, err := s.Images.FindRecent(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("load recent images: %w", err)
		}
		for _, img := range batch {
			if len(images) == limit {
				break
			}
			// 游标停在最后一条看过的记录上，同一时刻的其余行留给下一页
			last = img
			before, beforeID = img.CreatedAt, img.ID
			key := img.VisualKey()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			images = append(images, img)
		}
		if len(batch) < query.Limit {
			exhausted = true
			break
		}
	}

	page := &feedPage{limit: limit, items: make([]*types.FeedItem, 0, len(images))}
	for _, img := range images {
		page.items = append(page.items, toFeedItem(img))
	}
	if last != nil && !(exhausted && len(images) < limit) {
		next := cursor.Timestamp(feed, last.CreatedAt, last.ID)
		page.next = &next
	}
	return page, nil
}

func (s *FeedService) composeHallOfFame(ctx context.Context, q FeedQuery) (*feedPage, error) {
	if q.Cursor != nil && q.Cursor.Kind == cursor.KindOffset {
		return nil, ErrInvalidCursor
	}

	var (
		settings *Settings
		result   *HallOfFameResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		settings = s.Settings.Snapshot(gctx)
		return nil
	})
	g.Go(func() error {
		var err error
		result, err = s.Ranking.ResolveHallOfFame(gctx, q.Category, HallOfFameCeiling)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	limit := PageLimit(q.Limit, settings.Feed)
	remaining := filterHallOfFame(result.Entries, q.Cursor)
	page := &feedPage{limit: limit, items: make([]*types.FeedItem, 0, limit)}
	taken := remaining
	if len(taken) > limit {
		taken = taken[:limit]
	}
	for _, e := range taken {
		item := toFeedItem(e.Image)
		item.HallOfFame = &types.HallOfFameRank{RankPosition: e.RankPosition, Score: e.Score}
		page.items = append(page.items, item)
	}
	if len(remaining) > limit {
		last := taken[len(taken)-1]
		var next cursor.Cursor
		if result.Fallback {
			// 兜底排序没有稳定的名次，退回时间游标
			next = cursor.Timestamp(cursor.FeedHallOfFame, last.Image.CreatedAt, last.Image.ID)
		} else {
			next = cursor.Rank(cursor.FeedHallOfFame, last.RankPosition)
		}
		page.next = &next
	}
	return page, nil
}

func filterHallOfFame(entries []*HallOfFameEntry, cur *cursor.Cursor) []*HallOfFameEntry {
	if cur == nil {
		return entries
	}
	out := make([]*HallOfFameEntry, 0, len(entries))
	for _, e := range entries {
		switch cur.Kind {
		case cursor.KindRank:
			if e.RankPosition <= cur.Int() {
				continue
			}
		case cursor.KindTimestamp:
			// 兜底签发的时间游标套在名次列表上，两条链路切换时可能重复或漏掉，可以接受
			if !cur.Passed(e.Image.CreatedAt, e.Image.ID) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// annotate 当前用户对本页图片的投票状态，每张表只查一次
func (s *FeedService) annotate(ctx context.Context, viewerID uint64, items []*types.FeedItem) {
	if viewerID == 0 || len(items) == 0 {
		return
	}
	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	var liked, superliked map[uint64]bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		liked, err = s.Likes.LikedAmong(gctx, viewerID, ids)
		return err
	})
	g.Go(func() error {
		var err error
		superliked, err = s.Superlikes.SuperlikedAmong(gctx, viewerID, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		log.L.Warn("load viewer vote state failed", zap.Uint64("viewer_id", viewerID), zap.Error(err))
		return
	}
	for _, item := range items {
		item.LikedByMe = liked[item.ID]
		item.SuperlikedByMe = superliked[item.ID]
	}
}

func (s *FeedService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func toFeedItem(img *models.Image) *types.FeedItem {
	item := &types.FeedItem{
		ID:             img.ID,
		OwnerID:        img.UserID,
		URL:            img.URL,
		Prompt:         img.Prompt,
		Category:       img.Category,
		LikeCount:      img.LikeCount,
		SuperlikeCount: img.SuperlikeCount,
		IsImmortal:     img.IsImmortal,
		IsHallOfFame:   img.IsHallOfFame,
		CreatedAt:      img.CreatedAt,
	}
	if !img.IsImmortal && !img.ExpiresAt.IsZero() {
		expiresAt := img.ExpiresAt
		item.ExpiresAt = &expiresAt
	}
	return item
}

func toSurvival(c *CohortEntry) *types.Survival {
	return &types.Survival{
		Rank:        c.Rank,
		CohortRank:  c.CohortRank,
		CohortSize:  c.CohortSize,
		Cutoff:      c.Cutoff,
		LikesNeeded: c.LikesNeeded,
		WillSurvive: c.WillSurvive,
	}
}
