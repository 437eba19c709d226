package service

import (
	"Perish/models"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func setting(key, value string) models.Setting {
	return models.Setting{Key: key, Value: datatypes.JSON(value)}
}

func TestParseSettings_Defaults(t *testing.T) {
	s := ParseSettings(nil)
	if s.Feed.PageSizeDefault != 20 || s.Feed.PageSizeMax != 50 || s.Feed.SurvivalLikesNeededDefault != 3 {
		t.Fatalf("unexpected feed defaults %+v", s.Feed)
	}
	if s.Superlike.DailyLimit != 3 || s.Superlike.ResetTimezone != "UTC" {
		t.Fatalf("unexpected superlike defaults %+v", s.Superlike)
	}
}

func TestParseSettings_ClampAndMalformed(t *testing.T) {
	cases := []struct {
		name  string
		rows  []models.Setting
		check func(*Settings) bool
	}{
		{
			name:  "page max above ceiling",
			rows:  []models.Setting{setting(KeyPageSizeMax, "5000")},
			check: func(s *Settings) bool { return s.Feed.PageSizeMax == 100 },
		},
		{
			name: "default above max",
			rows: []models.Setting{
				setting(KeyPageSizeMax, "30"),
				setting(KeyPageSizeDefault, "40"),
			},
			check: func(s *Settings) bool { return s.Feed.PageSizeMax == 30 && s.Feed.PageSizeDefault == 30 },
		},
		{
			name:  "zero page size",
			rows:  []models.Setting{setting(KeyPageSizeDefault, "0")},
			check: func(s *Settings) bool { return s.Feed.PageSizeDefault == 1 },
		},
		{
			name:  "malformed string",
			rows:  []models.Setting{setting(KeyPageSizeDefault, `"abc"`)},
			check: func(s *Settings) bool { return s.Feed.PageSizeDefault == 20 },
		},
		{
			name:  "invalid json",
			rows:  []models.Setting{setting(KeySuperlikeDailyLimit, `{oops`)},
			check: func(s *Settings) bool { return s.Superlike.DailyLimit == 3 },
		},
		{
			name:  "numeric string",
			rows:  []models.Setting{setting(KeySuperlikeDailyLimit, `"7"`)},
			check: func(s *Settings) bool { return s.Superlike.DailyLimit == 7 },
		},
		{
			name:  "wrapped value",
			rows:  []models.Setting{setting(KeySurvivalLikesNeededDefault, `{"value": 12}`)},
			check: func(s *Settings) bool { return s.Feed.SurvivalLikesNeededDefault == 12 },
		},
		{
			name:  "boolean is malformed",
			rows:  []models.Setting{setting(KeySuperlikeDailyLimit, `true`)},
			check: func(s *Settings) bool { return s.Superlike.DailyLimit == 3 },
		},
		{
			name:  "daily limit ceiling",
			rows:  []models.Setting{setting(KeySuperlikeDailyLimit, `1000`)},
			check: func(s *Settings) bool { return s.Superlike.DailyLimit == 100 },
		},
		{
			name:  "non utc timezone",
			rows:  []models.Setting{setting(KeySuperlikeResetTimezone, `"America/New_York"`)},
			check: func(s *Settings) bool { return s.Superlike.ResetTimezone == "UTC" },
		},
		{
			name:  "etc utc kept",
			rows:  []models.Setting{setting(KeySuperlikeResetTimezone, `"Etc/UTC"`)},
			check: func(s *Settings) bool { return s.Superlike.ResetTimezone == "Etc/UTC" },
		},
	}
	for _, tc := range cases {
		if s := ParseSettings(tc.rows); !tc.check(s) {
			t.Fatalf("%s: unexpected settings %+v", tc.name, s)
		}
	}
}

type countingSource struct {
	mu    sync.Mutex
	calls int
	rows  []models.Setting
	err   error
}

func (c *countingSource) LoadAll(context.Context) ([]models.Setting, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.rows, c.err
}

func TestSettingsService_TTL(t *testing.T) {
	clock := &fixedClock{t: base}
	src := &countingSource{rows: []models.Setting{setting(KeyPageSizeDefault, "10")}}
	svc := &SettingsService{Source: src, TTL: time.Minute, Now: clock.Now}
	ctx := context.Background()

	if got := svc.LoadFeedSettings(ctx).PageSizeDefault; got != 10 {
		t.Fatalf("want 10, got %d", got)
	}
	svc.LoadSuperlikeSettings(ctx)
	if src.calls != 1 {
		t.Fatalf("cached snapshot should be reused, loads=%d", src.calls)
	}

	src.rows = []models.Setting{setting(KeyPageSizeDefault, "15")}
	clock.Set(base.Add(2 * time.Minute))
	if got := svc.LoadFeedSettings(ctx).PageSizeDefault; got != 15 {
		t.Fatalf("want refreshed 15, got %d", got)
	}
	if src.calls != 2 {
		t.Fatalf("want 2 loads, got %d", src.calls)
	}
}

func TestSettingsService_KeepsStaleOnError(t *testing.T) {
	clock := &fixedClock{t: base}
	src := &countingSource{rows: []models.Setting{setting(KeySuperlikeDailyLimit, "9")}}
	svc := &SettingsService{Source: src, TTL: time.Minute, Now: clock.Now}
	ctx := context.Background()

	first := svc.Snapshot(ctx)
	src.err = errors.New("db down")
	clock.Set(base.Add(5 * time.Minute))
	second := svc.Snapshot(ctx)
	if second != first || second.Superlike.DailyLimit != 9 {
		t.Fatalf("stale snapshot should survive a failed refresh, got %+v", second)
	}
}

func TestSettingsService_DefaultsWhenUnavailable(t *testing.T) {
	svc := &SettingsService{Source: &countingSource{err: errors.New("db down")}, TTL: time.Minute}
	if got := svc.LoadFeedSettings(context.Background()); got.PageSizeDefault != 20 || got.PageSizeMax != 50 {
		t.Fatalf("want defaults, got %+v", got)
	}
}

func TestSettingsService_CachedNeverLoads(t *testing.T) {
	clock := &fixedClock{t: base}
	src := &countingSource{rows: []models.Setting{setting(KeyPageSizeMax, "7")}}
	svc := &SettingsService{Source: src, TTL: time.Minute, Now: clock.Now}

	if got := svc.Cached().Feed.PageSizeMax; got != 50 || src.calls != 0 {
		t.Fatalf("before first load want defaults without reading, got max=%d loads=%d", got, src.calls)
	}
	svc.Snapshot(context.Background())

	// 过期了也不触发刷新
	clock.Set(base.Add(10 * time.Minute))
	if got := svc.Cached().Feed.PageSizeMax; got != 7 {
		t.Fatalf("want last snapshot max 7, got %d", got)
	}
	if src.calls != 1 {
		t.Fatalf("Cached must not hit the source, loads=%d", src.calls)
	}
}
