package service

import (
	"Perish/models"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"
)

func cohortRow(id uint64, rank int, survive bool) models.CohortRanking {
	return models.CohortRanking{ImageID: id, CohortRank: rank, CohortSize: 8, CutoffPosition: 4, WillSurvive: survive}
}

func TestResolveCohortRanking_CutoffProperty(t *testing.T) {
	now := base
	other := mortal(7, 1, "g.png", 1, now.Add(-time.Hour))
	other.Category = "food"
	db := newMemDB(func() time.Time { return now },
		mortal(1, 1, "a.png", 10, now.Add(-time.Hour)),
		mortal(2, 1, "b.png", 9, now.Add(-2*time.Hour)),
		mortal(3, 1, "c.png", 8, now.Add(-3*time.Hour)),
		mortal(4, 1, "d.png", 2, now.Add(-4*time.Hour)),
		mortal(5, 1, "e.png", 1, now.Add(-5*time.Hour)),
		immortal(6, 1, "f.png", now.Add(-50*time.Hour)),
		other,
	)
	src := &fakeRanking{cohort: []models.CohortRanking{
		cohortRow(1, 1, true),
		cohortRow(2, 2, true),
		cohortRow(3, 3, true),
		cohortRow(4, 4, false),
		cohortRow(5, 5, false),
		cohortRow(6, 6, true),  // 不朽图片不参与
		cohortRow(7, 7, true),  // 分类过滤
		cohortRow(99, 8, true), // 已删除
	}}
	svc := NewRankingService(src, memImages{db})

	entries, err := svc.ResolveCohortRanking(context.Background(), "art")
	if err != nil {
		t.Fatalf("ResolveCohortRanking: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("want 5 entries after filtering, got %d", len(entries))
	}
	survivors := 0
	for _, e := range entries {
		if e.SourceWillSurvive {
			survivors++
		}
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Fatalf("rank gap at %d: %d", i, e.Rank)
		}
		if e.Cutoff != survivors {
			t.Fatalf("cutoff want %d got %d", survivors, e.Cutoff)
		}
		if (e.Rank <= e.Cutoff) != e.WillSurvive {
			t.Fatalf("entry %d: rank %d cutoff %d willSurvive %v", e.Image.ID, e.Rank, e.Cutoff, e.WillSurvive)
		}
	}
}

func TestAssignGlobalRanks_TieBreaks(t *testing.T) {
	now := base
	a := mortal(1, 1, "a", 5, now.Add(-3*time.Hour))
	b := mortal(2, 1, "b", 9, now.Add(-2*time.Hour))
	c := mortal(3, 1, "c", 9, now.Add(-2*time.Hour))
	c.SuperlikeCount = 2
	d := mortal(4, 1, "d", 9, now.Add(-time.Hour))
	e := mortal(5, 1, "e", 9, now.Add(-time.Hour))
	entries := []*CohortEntry{
		{Image: a, CohortRank: 1},
		{Image: e, CohortRank: 2},
		{Image: b, CohortRank: 2},
		{Image: d, CohortRank: 2},
		{Image: c, CohortRank: 2},
	}
	AssignGlobalRanks(entries)

	want := []uint64{1, 3, 4, 5, 2}
	for i, id := range want {
		if entries[i].Image.ID != id {
			t.Fatalf("position %d: want %d got %d", i, id, entries[i].Image.ID)
		}
	}
	// 没有任何一条可晋级时晋级线至少为 1
	if entries[0].Cutoff != 1 || !entries[0].WillSurvive || entries[1].WillSurvive {
		t.Fatalf("minimum cutoff not applied: %+v", entries[0])
	}
}

func TestResolveCohortRanking_LikesNeeded(t *testing.T) {
	db := newMemDB(func() time.Time { return base },
		mortal(1, 1, "a", 3, base.Add(-time.Hour)),
		mortal(2, 1, "b", 1, base.Add(-time.Hour)),
	)
	withNeed := cohortRow(2, 2, false)
	withNeed.LikesNeeded = sql.NullInt64{Int64: 3, Valid: true}
	src := &fakeRanking{cohort: []models.CohortRanking{cohortRow(1, 1, true), withNeed}}

	entries, err := NewRankingService(src, memImages{db}).ResolveCohortRanking(context.Background(), "")
	if err != nil {
		t.Fatalf("ResolveCohortRanking: %v", err)
	}
	if entries[0].LikesNeeded != -1 || entries[1].LikesNeeded != 3 {
		t.Fatalf("likesNeeded not carried over: %d %d", entries[0].LikesNeeded, entries[1].LikesNeeded)
	}
}

func hofImage(id uint64, superlikes int64) *models.Image {
	img := immortal(id, 1, "", base.Add(-time.Duration(id)*time.Hour))
	img.IsHallOfFame = true
	img.SuperlikeCount = superlikes
	return img
}

func TestResolveHallOfFame_FallbackOrdering(t *testing.T) {
	for name, src := range map[string]*fakeRanking{
		"procedure error": {hofErr: errors.New("procedure missing")},
		"procedure empty": {},
	} {
		db := newMemDB(func() time.Time { return base }, hofImage(1, 10), hofImage(2, 30), hofImage(3, 20))
		res, err := NewRankingService(src, memImages{db}).ResolveHallOfFame(context.Background(), "", 50)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !res.Fallback {
			t.Fatalf("%s: want fallback", name)
		}
		got := []int64{}
		for i, e := range res.Entries {
			got = append(got, e.Image.SuperlikeCount)
			if e.RankPosition != i+1 {
				t.Fatalf("%s: synthetic rank want %d got %d", name, i+1, e.RankPosition)
			}
		}
		if len(got) != 3 || got[0] != 30 || got[1] != 20 || got[2] != 10 {
			t.Fatalf("%s: want [30 20 10], got %v", name, got)
		}
	}
}

func TestResolveHallOfFame_Primary(t *testing.T) {
	food := hofImage(3, 5)
	food.Category = "food"
	db := newMemDB(func() time.Time { return base }, hofImage(1, 1), hofImage(2, 2), food)
	src := &fakeRanking{hof: []models.HallOfFameRanking{
		{ImageID: 2, RankPosition: 1, Score: 9.5},
		{ImageID: 3, RankPosition: 2, Score: 8},
		{ImageID: 1, RankPosition: 3, Score: 7},
	}}
	res, err := NewRankingService(src, memImages{db}).ResolveHallOfFame(context.Background(), "art", 50)
	if err != nil {
		t.Fatalf("ResolveHallOfFame: %v", err)
	}
	if res.Fallback || len(res.Entries) != 2 {
		t.Fatalf("want 2 primary entries, got %+v", res)
	}
	if res.Entries[0].Image.ID != 2 || res.Entries[1].RankPosition != 3 || res.Entries[0].Score != 9.5 {
		t.Fatalf("procedure ranks must be kept: %+v %+v", res.Entries[0], res.Entries[1])
	}
}
