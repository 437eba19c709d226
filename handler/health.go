package handler

import (
	"Perish/pkg/response"
	"Perish/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Health struct {
	FeedService service.IFeedService
}

func (h *Health) RegisterRouter(r gin.IRouter) {
	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Healthz 存储没配置也算存活，只是信息流会走兜底
func (h *Health) Healthz(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "ok",
		"storage": h.FeedService.Ready(),
	})
}
