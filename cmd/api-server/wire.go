//go:build wireinject
// +build wireinject

package main

import (
	"Perish/config"
	"Perish/dao"
	"Perish/dao/cache"
	"Perish/handler"
	"Perish/pkg/client"
	"Perish/pkg/database"
	"Perish/pkg/kafka"
	"Perish/pkg/rocketmq"
	"Perish/pkg/server"
	"Perish/pkg/taskqueue"
	"Perish/service"

	"github.com/google/wire"
)

func InitServer(cfg *config.Config) (*server.AppProvider, error) {
	wire.Build(
		database.NewDB,
		client.NewRedisClient,
		config.ProvideFeedConfig,
		config.ProvideRocketMQConfig,
		config.ProvideKafkaConfig,
		rocketmq.InitProducer,
		kafka.NewWriter,
		server.NewCursorCodec,
		server.NewTaskPool,
		wire.Bind(new(taskqueue.Queue), new(*taskqueue.Pool)),
		server.NewGinEngine,

		dao.ProviderSet,
		cache.ProviderSet,
		service.ProviderSet,

		wire.Struct(new(handler.Health), "*"),
		wire.Struct(new(handler.Feed), "*"),
		wire.Struct(new(handler.Vote), "*"),

		wire.Struct(new(server.AppProvider), "*"),
		wire.Struct(new(server.Handlers), "*"),
	)
	return nil, nil
}
