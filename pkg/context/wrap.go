package context

import (
	"Perish/pkg/log"
	"Perish/pkg/response"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CtxUserID = "user_id"
)

type HandlerFunc func(*gin.Context) error

func Wrap(h func(*gin.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h(c); err != nil {

			// 如果已经写过响应，直接返回
			if c.Writer.Written() {
				return
			}
			// 业务错误
			var be *response.BizError
			if errors.As(err, &be) {
				if be.Status < http.StatusInternalServerError {
					// 业务规则拒绝记审计日志，不算应用错误
					log.L.Info("audit",
						zap.String("code", be.Code),
						zap.String("path", c.FullPath()),
						zap.Uint64("user_id", ViewerID(c)),
					)
				} else {
					log.L.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
				}
				response.Fail(c, be)
				return
			}
			log.L.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "系统繁忙，请稍后重试",
			})
		}
	}
}

func GetUserID(c *gin.Context) (uint64, error) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, errors.New("user_id 不存在")
	}

	uid, ok := v.(uint64)
	if !ok {
		return 0, errors.New("user_id 类型错误")
	}

	return uid, nil
}

// ViewerID 当前访问者，未登录返回 0
func ViewerID(c *gin.Context) uint64 {
	uid, err := GetUserID(c)
	if err != nil {
		return 0
	}
	return uid
}
