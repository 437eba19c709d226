package server

import (
	"Perish/config"
	"Perish/middleware"
	"Perish/pkg/kafka"
	"Perish/pkg/log"
	"Perish/pkg/response"
	"Perish/pkg/rocketmq"
	"Perish/pkg/taskqueue"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider struct {
	Config    *config.Config
	Engine    *gin.Engine
	Tasks     *taskqueue.Pool
	Producer  *rocketmq.Rocketmq
	Analytics *kafka.Writer
}

// serverID 本机内网 IP + 端口，只用于日志
func serverID(port int) string {
	ip, err := getLocalIP()
	if err != nil {
		ip, _ = os.Hostname()
	}
	return fmt.Sprintf("%s:%d", ip, port)
}

func getLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, address := range addrs {
		// 排除回环地址
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}
	return "", errors.New("no ip address found")
}

func NewGinEngine(h *Handlers, cfg *config.Config) *gin.Engine {
	if !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(CORSMiddleware())
	r.Use(middleware.GinZap(), middleware.PrometheusMiddleware(), response.ErrorMiddleware())
	h.Health.RegisterRouter(r)
	h.Feed.RegisterRouter(r)
	h.Vote.RegisterRouter(r)
	return r
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Content-Length, X-Requested-With, X-Request-Id")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

		// OPTIONS 预检直接返回 204
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func Run(ctx *cli.Context, app *AppProvider) error {
	eg, groupCtx := errgroup.WithContext(ctx.Context)
	c := make(chan os.Signal, 1)
	// 终止信号
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)

	sid := serverID(app.Config.Server.Http)
	log.L.Info("server starting", zap.String("serverId", sid),
		zap.Int("port", app.Config.Server.Http),
		zap.String("env", app.Config.App.Env),
	)

	app.Tasks.Start(groupCtx)
	defer func() {
		// 先排空队列，再关生产者
		app.Tasks.Close()
		if err := app.Producer.Shutdown(); err != nil {
			log.L.Warn("shutdown rocketmq producer", zap.Error(err))
		}
		if err := app.Analytics.Close(); err != nil {
			log.L.Warn("close kafka writer", zap.Error(err))
		}
	}()

	return run(c, eg, groupCtx, app, sid)
}

func run(c chan os.Signal, eg *errgroup.Group, ctx context.Context, app *AppProvider, sid string) error {
	var handler http.Handler = app.Engine
	if app.Config.Trace.Enabled {
		handler = otelhttp.NewHandler(app.Engine, "http.server")
	}
	serv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config.Server.Http),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 启动 http 服务
	eg.Go(func() error {
		err := serv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	eg.Go(func() error {
		defer func() {
			log.L.Info("server stopping", zap.String("serverId", sid))

			// 等待进行中的请求结束
			timeCtx, timeCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer timeCancel()

			if err := serv.Shutdown(timeCtx); err != nil {
				log.L.Info("server stopping", zap.String("serverId", sid), zap.Error(err))
			}
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c:
			return nil
		}
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.L.Info("server stopping", zap.Error(err))
	}

	log.L.Info("server stopped", zap.String("serverId", sid))

	return nil
}
