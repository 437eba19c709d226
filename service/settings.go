package service

import (
	"Perish/config"
	"Perish/models"
	"Perish/pkg/log"
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// app_settings 中的键
const (
	KeyPageSizeDefault            = "feed.page_size_default"
	KeyPageSizeMax                = "feed.page_size_max"
	KeySurvivalLikesNeededDefault = "feed.survival_likes_needed_default"
	KeySuperlikeDailyLimit        = "superlike.daily_limit"
	KeySuperlikeResetTimezone     = "superlike.reset_timezone"
)

const (
	defaultPageSize            = 20
	defaultPageSizeMax         = 50
	pageSizeCeiling            = 100
	defaultSurvivalLikesNeeded = 3
	survivalLikesNeededMax     = 10000
	defaultSuperlikeDailyLimit = 3
	superlikeDailyLimitMax     = 100

	timezoneUTC = "UTC"

	// 读库失败后多久再试
	settingsRetryAfter = 5 * time.Second
)

type FeedSettings struct {
	PageSizeDefault            int
	PageSizeMax                int
	SurvivalLikesNeededDefault int
}

type SuperlikeSettings struct {
	DailyLimit    int
	ResetTimezone string
}

// Settings 不可变快照，只能整体替换
type Settings struct {
	Feed      FeedSettings
	Superlike SuperlikeSettings
	LoadedAt  time.Time
}

func DefaultSettings() *Settings {
	return &Settings{
		Feed: FeedSettings{
			PageSizeDefault:            defaultPageSize,
			PageSizeMax:                defaultPageSizeMax,
			SurvivalLikesNeededDefault: defaultSurvivalLikesNeeded,
		},
		Superlike: SuperlikeSettings{
			DailyLimit:    defaultSuperlikeDailyLimit,
			ResetTimezone: timezoneUTC,
		},
	}
}

var errSettingsUnavailable = errors.New("settings source not configured")

var _ ISettingsService = (*SettingsService)(nil)

type ISettingsService interface {
	Snapshot(ctx context.Context) *Settings
	// Cached 不读库，返回最近一次的快照，没有就用默认值
	Cached() *Settings
	LoadFeedSettings(ctx context.Context) FeedSettings
	LoadSuperlikeSettings(ctx context.Context) SuperlikeSettings
}

type settingsEntry struct {
	settings  *Settings
	expiresAt time.Time
}

type SettingsService struct {
	Source SettingSource
	TTL    time.Duration
	Now    func() time.Time

	current atomic.Pointer[settingsEntry]
	group   singleflight.Group
}

func NewSettingsService(source SettingSource, conf *config.Feed) *SettingsService {
	return &SettingsService{
		Source: source,
		TTL:    conf.SettingsTTL,
		Now:    time.Now,
	}
}

func (s *SettingsService) LoadFeedSettings(ctx context.Context) FeedSettings {
	return s.Snapshot(ctx).Feed
}

func (s *SettingsService) LoadSuperlikeSettings(ctx context.Context) SuperlikeSettings {
	return s.Snapshot(ctx).Superlike
}

// Snapshot 过期才刷新，并发的刷新请求合并成一次读库
func (s *SettingsService) Snapshot(ctx context.Context) *Settings {
	now := s.now()
	if e := s.current.Load(); e != nil && now.Before(e.expiresAt) {
		return e.settings
	}
	v, _, _ := s.group.Do("settings", func() (any, error) {
		if e := s.current.Load(); e != nil && now.Before(e.expiresAt) {
			return e.settings, nil
		}
		return s.refresh(ctx, now), nil
	})
	return v.(*Settings)
}

func (s *SettingsService) Cached() *Settings {
	if e := s.current.Load(); e != nil {
		return e.settings
	}
	return DefaultSettings()
}

func (s *SettingsService) refresh(ctx context.Context, now time.Time) *Settings {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	var (
		rows []models.Setting
		err  error
	)
	if s.Source == nil {
		err = errSettingsUnavailable
	} else {
		rows, err = s.Source.LoadAll(ctx)
	}
	if err != nil {
		log.L.Warn("load app settings failed, using previous snapshot", zap.Error(err))
		snap := DefaultSettings()
		if prev := s.current.Load(); prev != nil {
			snap = prev.settings
		} else {
			snap.LoadedAt = now
		}
		s.current.Store(&settingsEntry{settings: snap, expiresAt: now.Add(settingsRetryAfter)})
		return snap
	}

	snap := ParseSettings(rows)
	snap.LoadedAt = now
	ttl := s.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	s.current.Store(&settingsEntry{settings: snap, expiresAt: now.Add(ttl)})
	return snap
}

func (s *SettingsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ParseSettings 缺失或格式错误的值回落默认值，数值统一夹到合法区间
func ParseSettings(rows []models.Setting) *Settings {
	values := make(map[string]gjson.Result, len(rows))
	for _, row := range rows {
		if !gjson.ValidBytes(row.Value) {
			log.L.Warn("malformed app setting", zap.String("key", row.Key))
			continue
		}
		r := gjson.ParseBytes(row.Value)
		// 兼容 {"value": x} 的写法
		if r.IsObject() && r.Get("value").Exists() {
			r = r.Get("value")
		}
		values[row.Key] = r
	}

	snap := DefaultSettings()
	snap.Feed.PageSizeMax = readInt(values, KeyPageSizeMax, defaultPageSizeMax, 1, pageSizeCeiling)
	snap.Feed.PageSizeDefault = readInt(values, KeyPageSizeDefault, defaultPageSize, 1, snap.Feed.PageSizeMax)
	snap.Feed.SurvivalLikesNeededDefault = readInt(values, KeySurvivalLikesNeededDefault, defaultSurvivalLikesNeeded, 0, survivalLikesNeededMax)
	snap.Superlike.DailyLimit = readInt(values, KeySuperlikeDailyLimit, defaultSuperlikeDailyLimit, 1, superlikeDailyLimitMax)

	tz := timezoneUTC
	if r, ok := values[KeySuperlikeResetTimezone]; ok && r.Type == gjson.String && strings.TrimSpace(r.Str) != "" {
		tz = strings.TrimSpace(r.Str)
	}
	if !isUTC(tz) {
		// 目前只支持 UTC 零点重置
		log.L.Warn("superlike reset timezone unsupported, treated as UTC", zap.String("timezone", tz))
		tz = timezoneUTC
	}
	snap.Superlike.ResetTimezone = tz
	return snap
}

func readInt(values map[string]gjson.Result, key string, def, lo, hi int) int {
	if def > hi {
		def = hi
	}
	r, ok := values[key]
	if !ok {
		return def
	}
	var n int64
	switch r.Type {
	case gjson.Number:
		n = int64(r.Num)
	case gjson.String:
		v, err := strconv.ParseInt(strings.TrimSpace(r.Str), 10, 64)
		if err != nil {
			log.L.Warn("malformed app setting", zap.String("key", key), zap.String("value", r.Raw))
			return def
		}
		n = v
	default:
		log.L.Warn("malformed app setting", zap.String("key", key), zap.String("value", r.Raw))
		return def
	}
	if n < int64(lo) {
		return lo
	}
	if n > int64(hi) {
		return hi
	}
	return int(n)
}

func isUTC(tz string) bool {
	switch strings.ToUpper(tz) {
	case "UTC", "ETC/UTC", "Z", "GMT", "ETC/GMT":
		return true
	}
	return false
}
