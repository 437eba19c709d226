package database

import (
	"Perish/config"
	"Perish/pkg/log"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// NewDB 初始化数据库连接
// 未配置或连接失败时返回 nil，读链路会走兜底目录，写链路返回 500
func NewDB(conf *config.Config) *gorm.DB {
	if conf.MySQL == nil || conf.MySQL.Host == "" {
		log.L.Warn("mysql not configured")
		return nil
	}
	level := logger.Warn
	if conf.Debug() {
		level = logger.Info
	}
	db, err := gorm.Open(mysql.Open(conf.MySQL.Dsn()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		log.L.Error("failed to connect database", zap.Error(err))
		return nil
	}
	if conf.Trace.Enabled {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			log.L.Warn("gorm tracing plugin", zap.Error(err))
		}
	}
	log.L.Info("connect database success")
	return db
}
