package client

import (
	"Perish/config"
	"Perish/pkg/log"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient redis 只用于去重之类的尽力而为逻辑，连不上不影响启动
func NewRedisClient(conf *config.Config) *redis.Client {
	if conf.Redis == nil {
		log.L.Warn("redis not configured")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", conf.Redis.Address, conf.Redis.Port),
		Password:    conf.Redis.Password,
		Username:    conf.Redis.Username,
		DB:          conf.Redis.Database,
		ReadTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.L.Error("connect redis error", zap.Error(err))
	} else {
		log.L.Info("redis client success")
	}
	return client
}
