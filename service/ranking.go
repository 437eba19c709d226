package service

import (
	"Perish/models"
	"Perish/pkg/log"
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// HallOfFameCeiling 名人堂一次取够，留出分类过滤的余量
const HallOfFameCeiling = 500

// CohortEntry 当日排名重排后的一项
type CohortEntry struct {
	Image *models.Image

	CohortRank int
	CohortSize int
	// LikesNeeded 小于 0 表示存储过程没给，由调用方用默认值补
	LikesNeeded       int
	SourceWillSurvive bool

	// 重排后的全局名次和晋级线
	Rank        int
	Cutoff      int
	WillSurvive bool
}

type HallOfFameEntry struct {
	Image        *models.Image
	RankPosition int
	Score        float64
}

type HallOfFameResult struct {
	Entries []*HallOfFameEntry
	// Fallback 存储过程不可用，按计数直接排序，名次是临时编号
	Fallback bool
}

var _ IRankingService = (*RankingService)(nil)

type IRankingService interface {
	ResolveCohortRanking(ctx context.Context, category string) ([]*CohortEntry, error)
	ResolveHallOfFame(ctx context.Context, category string, limit int) (*HallOfFameResult, error)
}

type RankingService struct {
	Ranking RankingSource
	Images  ImageStore
}

func NewRankingService(ranking RankingSource, images ImageStore) *RankingService {
	return &RankingService{Ranking: ranking, Images: images}
}

// ResolveCohortRanking 存储过程的名次和晋级线只当原始分数用，过滤之后本地重排重算
func (s *RankingService) ResolveCohortRanking(ctx context.Context, category string) ([]*CohortEntry, error) {
	rows, err := s.Ranking.CurrentCohort(ctx)
	if err != nil {
		return nil, fmt.Errorf("current cohort ranking: %w", err)
	}
	if len(rows) == 0 {
		return []*CohortEntry{}, nil
	}

	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ImageID)
	}
	images, err := s.Images.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cohort images: %w", err)
	}
	byID := make(map[uint64]*models.Image, len(images))
	for _, img := range images {
		byID[img.ID] = img
	}

	entries := make([]*CohortEntry, 0, len(rows))
	for _, row := range rows {
		img, ok := byID[row.ImageID]
		if !ok || img.IsImmortal || !matchCategory(img, category) {
			continue
		}
		likesNeeded := -1
		if row.LikesNeeded.Valid {
			likesNeeded = int(row.LikesNeeded.Int64)
		}
		entries = append(entries, &CohortEntry{
			Image:             img,
			CohortRank:        row.CohortRank,
			CohortSize:        row.CohortSize,
			LikesNeeded:       likesNeeded,
			SourceWillSurvive: row.WillSurvive,
		})
	}
	AssignGlobalRanks(entries)
	return entries, nil
}

// AssignGlobalRanks 排序并重新分配全局名次，晋级线 = 原始可晋级条数，至少为 1
func AssignGlobalRanks(entries []*CohortEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.CohortRank != b.CohortRank {
			return a.CohortRank < b.CohortRank
		}
		if a.Image.LikeCount != b.Image.LikeCount {
			return a.Image.LikeCount > b.Image.LikeCount
		}
		if a.Image.SuperlikeCount != b.Image.SuperlikeCount {
			return a.Image.SuperlikeCount > b.Image.SuperlikeCount
		}
		if !a.Image.CreatedAt.Equal(b.Image.CreatedAt) {
			return a.Image.CreatedAt.After(b.Image.CreatedAt)
		}
		return a.Image.ID < b.Image.ID
	})

	cutoff := 0
	for _, e := range entries {
		if e.SourceWillSurvive {
			cutoff++
		}
	}
	if cutoff < 1 {
		cutoff = 1
	}
	for i, e := range entries {
		e.Rank = i + 1
		e.Cutoff = cutoff
		e.WillSurvive = e.Rank <= cutoff
	}
}

// ResolveHallOfFame 存储过程报错或没有数据时走兜底排序
func (s *RankingService) ResolveHallOfFame(ctx context.Context, category string, limit int) (*HallOfFameResult, error) {
	if limit <= 0 || limit > HallOfFameCeiling {
		limit = HallOfFameCeiling
	}
	rows, err := s.Ranking.HallOfFame(ctx, HallOfFameCeiling)
	if err != nil {
		log.L.Warn("hall of fame procedure failed, using fallback ordering", zap.Error(err))
		return s.hallOfFameFallback(ctx, category, limit)
	}
	if len(rows) == 0 {
		return s.hallOfFameFallback(ctx, category, limit)
	}

	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ImageID)
	}
	images, err := s.Images.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load hall of fame images: %w", err)
	}
	byID := make(map[uint64]*models.Image, len(images))
	for _, img := range images {
		byID[img.ID] = img
	}

	entries := make([]*HallOfFameEntry, 0, len(rows))
	for _, row := range rows {
		img, ok := byID[row.ImageID]
		if !ok || !matchCategory(img, category) {
			continue
		}
		entries = append(entries, &HallOfFameEntry{Image: img, RankPosition: row.RankPosition, Score: row.Score})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].RankPosition != entries[j].RankPosition {
			return entries[i].RankPosition < entries[j].RankPosition
		}
		return entries[i].Image.ID < entries[j].Image.ID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return &HallOfFameResult{Entries: entries}, nil
}

func (s *RankingService) hallOfFameFallback(ctx context.Context, category string, limit int) (*HallOfFameResult, error) {
	images, err := s.Images.FindHallOfFame(ctx, category, limit)
	if err != nil {
		return nil, fmt.Errorf("hall of fame fallback: %w", err)
	}
	SortHallOfFameFallback(images)
	entries := make([]*HallOfFameEntry, 0, len(images))
	for i, img := range images {
		entries = append(entries, &HallOfFameEntry{
			Image:        img,
			RankPosition: i + 1,
			Score:        float64(img.SuperlikeCount),
		})
	}
	return &HallOfFameResult{Entries: entries, Fallback: true}, nil
}

// SortHallOfFameFallback 超级赞、点赞、创建时间都倒序，最后按 ID 保证稳定
func SortHallOfFameFallback(images []*models.Image) {
	sort.SliceStable(images, func(i, j int) bool {
		a, b := images[i], images[j]
		if a.SuperlikeCount != b.SuperlikeCount {
			return a.SuperlikeCount > b.SuperlikeCount
		}
		if a.LikeCount != b.LikeCount {
			return a.LikeCount > b.LikeCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// matchCategory 空分类或 all 表示不过滤
func matchCategory(img *models.Image, category string) bool {
	return category == "" || img.Category == category
}

func normalizeCategory(category string) string {
	if category == "all" {
		return ""
	}
	return category
}
