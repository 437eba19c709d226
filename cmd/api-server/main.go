package main

import (
	"Perish/config"
	"Perish/dao"
	"Perish/pkg/database"
	"Perish/pkg/log"
	"Perish/pkg/server"
	"Perish/pkg/trace"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	// 本地开发用 .env，线上直接走环境变量
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	path := fmt.Sprintf("configs/config.%s.yaml", env)
	cfg := config.New(path)

	cliApp := &cli.App{
		Name:  "api-server",
		Usage: "perishable image feed",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start http server",
				Action: func(ctx *cli.Context) error {
					shutdown := trace.Init(ctx.Context, cfg)
					defer func() {
						if err := shutdown(ctx.Context); err != nil {
							log.L.Warn("trace shutdown", zap.Error(err))
						}
					}()

					appProvider, err := InitServer(cfg)
					if err != nil {
						return err
					}
					return server.Run(ctx, appProvider)
				},
			},
			{
				Name:  "migrate",
				Usage: "create tables and vote triggers",
				Action: func(ctx *cli.Context) error {
					db := database.NewDB(cfg)
					if db == nil {
						return errors.New("mysql not configured")
					}
					if err := dao.Migrate(ctx.Context, db); err != nil {
						return err
					}
					log.L.Info("migrate done")
					return nil
				},
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.L.Fatal("failed to start server", zap.Error(err))
	}
}
