package service

import (
	"Perish/models"
	"Perish/pkg/cursor"
	"Perish/types"
	_ "embed"
	"errors"
	"sort"
	"strconv"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/tidwall/gjson"
)

//go:embed fallback/catalog.json
var catalogJSON []byte

// 降级原因编号，写进兜底游标
var reasonCodes = map[string]int64{
	types.ReasonTimeout:       1,
	types.ReasonError:         2,
	types.ReasonEmptyFeed:     3,
	types.ReasonNotConfigured: 4,
}

func reasonCode(reason string) int64 {
	if code, ok := reasonCodes[reason]; ok {
		return code
	}
	return reasonCodes[types.ReasonError]
}

func reasonFromCode(code int64) string {
	for reason, c := range reasonCodes {
		if c == code {
			return reason
		}
	}
	return types.ReasonError
}

type catalogRecord struct {
	id         uint64
	ownerID    uint64
	url        string
	prompt     string
	category   string
	likes      int64
	superlikes int64
	immortal   bool
	hallOfFame bool
	age        time.Duration
}

// catalogEntry 已排好序的一项
type catalogEntry struct {
	image    *models.Image
	survival *types.Survival
	hof      *types.HallOfFameRank
}

type catalogView struct {
	anchor  time.Time
	entries []*catalogEntry
}

// FallbackCatalog 打包进二进制的静态兜底内容。
// 创建时间相对当前整点平移，所以内容看起来总是新鲜的；
// 分类过滤、游标和三种信息流的区别与实时链路一致。
type FallbackCatalog struct {
	records []catalogRecord
	codec   *cursor.Codec
	memo    cmap.ConcurrentMap[string, *catalogView]
	Now     func() time.Time
}

func NewFallbackCatalog(codec *cursor.Codec) (*FallbackCatalog, error) {
	records, err := parseCatalog(catalogJSON)
	if err != nil {
		return nil, err
	}
	return &FallbackCatalog{
		records: records,
		codec:   codec,
		memo:    cmap.New[*catalogView](),
		Now:     time.Now,
	}, nil
}

func parseCatalog(data []byte) ([]catalogRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("fallback catalog is not valid json")
	}
	var records []catalogRecord
	gjson.GetBytes(data, "images").ForEach(func(_, v gjson.Result) bool {
		id, _ := strconv.ParseUint(v.Get("id").String(), 10, 64)
		owner, _ := strconv.ParseUint(v.Get("ownerId").String(), 10, 64)
		records = append(records, catalogRecord{
			id:         id,
			ownerID:    owner,
			url:        v.Get("url").String(),
			prompt:     v.Get("prompt").String(),
			category:   v.Get("category").String(),
			likes:      v.Get("likes").Int(),
			superlikes: v.Get("superlikes").Int(),
			immortal:   v.Get("immortal").Bool(),
			hallOfFame: v.Get("hallOfFame").Bool(),
			age:        time.Duration(v.Get("ageMinutes").Int()) * time.Minute,
		})
		return true
	})
	if len(records) == 0 {
		return nil, errors.New("fallback catalog is empty")
	}
	return records, nil
}

// Compose 用兜底内容回答一次信息流请求，分页大小按 settings 的上下限收敛
func (c *FallbackCatalog) Compose(q FeedQuery, settings FeedSettings, reason string) (*types.FeedResponse, error) {
	q.Category = normalizeCategory(q.Category)
	q.Sort = NormalizeSort(q.Feed, q.Sort)
	limit := PageLimit(q.Limit, settings)
	feed := cursorFeed(q.Feed)

	view := c.view(q)
	remaining, err := c.after(view.entries, q)
	if err != nil {
		return nil, err
	}

	taken := remaining
	if len(taken) > limit {
		taken = taken[:limit]
	}
	resp := &types.FeedResponse{
		Items:    make([]*types.FeedItem, 0, len(taken)),
		Limit:    limit,
		Feed:     q.Feed,
		Sort:     q.Sort,
		Degraded: true,
		Reason:   reason,
	}
	for _, e := range taken {
		item := toFeedItem(e.image)
		if e.survival != nil {
			s := *e.survival
			item.Survival = &s
		}
		if e.hof != nil {
			h := *e.hof
			item.HallOfFame = &h
		}
		resp.Items = append(resp.Items, item)
	}

	if len(remaining) > limit {
		last := taken[len(taken)-1]
		var next cursor.Cursor
		switch {
		case q.Feed == types.FeedRecent && q.Sort == types.SortPosition:
			next = cursor.Offset(feed, c.offsetOf(q, len(taken)))
		case q.Feed == types.FeedHallOfFame:
			next = cursor.Rank(feed, last.hof.RankPosition)
		default:
			next = cursor.Timestamp(feed, last.image.CreatedAt, last.image.ID)
		}
		resp.NextCursor = c.codec.Encode(next.WithFallback(reasonCode(reason)))
	}
	return resp, nil
}

func (c *FallbackCatalog) offsetOf(q FeedQuery, taken int) int {
	if q.Cursor == nil {
		return taken
	}
	return q.Cursor.Int() + taken
}

// after 按游标截掉已经返回过的部分
func (c *FallbackCatalog) after(entries []*catalogEntry, q FeedQuery) ([]*catalogEntry, error) {
	if q.Cursor == nil {
		return entries, nil
	}
	cur := q.Cursor
	switch {
	case q.Feed == types.FeedRecent && q.Sort == types.SortPosition:
		if cur.Kind != cursor.KindOffset {
			return nil, ErrInvalidCursor
		}
		if cur.Int() >= len(entries) {
			return []*catalogEntry{}, nil
		}
		return entries[cur.Int():], nil
	case q.Feed == types.FeedHallOfFame && cur.Kind == cursor.KindRank:
		out := make([]*catalogEntry, 0, len(entries))
		for _, e := range entries {
			if e.hof.RankPosition > cur.Int() {
				out = append(out, e)
			}
		}
		return out, nil
	case cur.Kind == cursor.KindTimestamp:
		out := make([]*catalogEntry, 0, len(entries))
		for _, e := range entries {
			if cur.Passed(e.image.CreatedAt, e.image.ID) {
				out = append(out, e)
			}
		}
		return out, nil
	}
	return nil, ErrInvalidCursor
}

// view 同一个整点内排好序的结果复用
func (c *FallbackCatalog) view(q FeedQuery) *catalogView {
	anchor := c.now().UTC().Truncate(time.Hour)
	key := string(q.Feed) + "|" + string(q.Sort) + "|" + q.Category
	if v, ok := c.memo.Get(key); ok && v.anchor.Equal(anchor) {
		return v
	}
	v := &catalogView{anchor: anchor, entries: c.build(q, anchor)}
	c.memo.Set(key, v)
	return v
}

func (c *FallbackCatalog) build(q FeedQuery, anchor time.Time) []*catalogEntry {
	var mortals, immortals, famous []*models.Image
	for _, r := range c.records {
		if q.Category != "" && r.category != q.Category {
			continue
		}
		img := r.image(anchor)
		if r.immortal {
			immortals = append(immortals, img)
		} else {
			mortals = append(mortals, img)
		}
		if r.hallOfFame {
			famous = append(famous, img)
		}
	}

	switch {
	case q.Feed == types.FeedHallOfFame:
		SortHallOfFameFallback(famous)
		entries := make([]*catalogEntry, 0, len(famous))
		for i, img := range famous {
			entries = append(entries, &catalogEntry{
				image: img,
				hof:   &types.HallOfFameRank{RankPosition: i + 1, Score: float64(img.SuperlikeCount)},
			})
		}
		return entries
	case q.Feed == types.FeedRecent && q.Sort == types.SortPosition:
		return c.buildPosition(mortals, immortals)
	case q.Feed == types.FeedImmortal:
		return recencyEntries(immortals)
	default:
		return recencyEntries(append(mortals, immortals...))
	}
}

// buildPosition 按点赞数给兜底图片编一个当日名次，前一半算晋级
func (c *FallbackCatalog) buildPosition(mortals, immortals []*models.Image) []*catalogEntry {
	sort.SliceStable(mortals, func(i, j int) bool {
		if mortals[i].LikeCount != mortals[j].LikeCount {
			return mortals[i].LikeCount > mortals[j].LikeCount
		}
		return mortals[i].ID < mortals[j].ID
	})
	cohort := make([]*CohortEntry, 0, len(mortals))
	survivors := (len(mortals) + 1) / 2
	for i, img := range mortals {
		cohort = append(cohort, &CohortEntry{
			Image:             img,
			CohortRank:        i + 1,
			CohortSize:        len(mortals),
			SourceWillSurvive: i < survivors,
		})
	}
	AssignGlobalRanks(cohort)

	var threshold int64
	if len(cohort) > 0 {
		threshold = cohort[cohort[0].Cutoff-1].Image.LikeCount
	}
	entries := make([]*feedEntry, 0, len(cohort)+len(immortals))
	for _, e := range cohort {
		e.LikesNeeded = 0
		if !e.WillSurvive {
			e.LikesNeeded = int(threshold-e.Image.LikeCount) + 1
		}
		entries = append(entries, &feedEntry{kind: entryRanked, image: e.Image, cohort: e})
	}
	for _, img := range immortals {
		entries = append(entries, &feedEntry{kind: entryImmortal, image: img})
	}

	merged := MergeEntries(entries)
	out := make([]*catalogEntry, 0, len(merged))
	for _, e := range merged {
		ce := &catalogEntry{image: e.image}
		if e.cohort != nil {
			ce.survival = toSurvival(e.cohort)
		}
		out = append(out, ce)
	}
	return out
}

func recencyEntries(images []*models.Image) []*catalogEntry {
	sort.SliceStable(images, func(i, j int) bool {
		if !images[i].CreatedAt.Equal(images[j].CreatedAt) {
			return images[i].CreatedAt.After(images[j].CreatedAt)
		}
		return images[i].ID > images[j].ID
	})
	seen := make(map[string]struct{}, len(images))
	out := make([]*catalogEntry, 0, len(images))
	for _, img := range images {
		key := img.VisualKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, &catalogEntry{image: img})
	}
	return out
}

func (r catalogRecord) image(anchor time.Time) *models.Image {
	created := anchor.Add(-r.age)
	img := &models.Image{
		ID:             r.id,
		UserID:         r.ownerID,
		URL:            r.url,
		Prompt:         r.prompt,
		Category:       r.category,
		LikeCount:      r.likes,
		SuperlikeCount: r.superlikes,
		IsImmortal:     r.immortal,
		IsHallOfFame:   r.hallOfFame,
		CreatedAt:      created,
	}
	if !r.immortal {
		img.ExpiresAt = created.Add(models.Lifetime)
	}
	return img
}

func (c *FallbackCatalog) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func cursorFeed(feed types.FeedType) cursor.Feed {
	switch feed {
	case types.FeedImmortal:
		return cursor.FeedImmortal
	case types.FeedHallOfFame:
		return cursor.FeedHallOfFame
	}
	return cursor.FeedRecent
}
