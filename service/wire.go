package service

import (
	"Perish/dao"
	"Perish/dao/cache"
	"Perish/pkg/kafka"
	"Perish/pkg/rocketmq"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewSettingsService,
	wire.Bind(new(ISettingsService), new(*SettingsService)),
	wire.Bind(new(SettingSource), new(*dao.SettingDAO)),

	NewRankingService,
	wire.Bind(new(IRankingService), new(*RankingService)),
	wire.Bind(new(RankingSource), new(*dao.RankingDAO)),
	wire.Bind(new(ImageStore), new(*dao.ImageDAO)),

	NewFeedService,
	wire.Bind(new(IFeedService), new(*FeedService)),
	wire.Bind(new(LikeStore), new(*dao.ImageLikeDAO)),
	wire.Bind(new(SuperlikeStore), new(*dao.ImageSuperlikeDAO)),

	NewFallbackCatalog,
	NewResilientFeedService,
	wire.Bind(new(IImageFeedService), new(*ResilientFeedService)),

	NewVoteService,
	wire.Bind(new(IVoteService), new(*VoteService)),

	NewEventDispatcher,
	wire.Bind(new(NotificationPublisher), new(*rocketmq.Rocketmq)),
	wire.Bind(new(AnalyticsPublisher), new(*kafka.Writer)),
	wire.Bind(new(MilestoneGuard), new(*cache.MilestoneStorage)),
)
