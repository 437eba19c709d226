package handler

import (
	"Perish/config"
	"Perish/middleware"
	"Perish/pkg/context"
	"Perish/pkg/response"
	"Perish/service"
	"Perish/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

var errInvalidParams = response.NewError(http.StatusBadRequest, "INVALID_PARAMS", "参数错误")

type Feed struct {
	FeedService service.IImageFeedService
	Config      *config.Config
}

func (h *Feed) RegisterRouter(r gin.IRouter) {
	// 匿名也能看，登录了才带上自己的投票状态
	optional := middleware.OptionalAuth([]byte(h.Config.Jwt.Secret))
	r.GET("/images", optional, context.Wrap(h.ListImages))
}

func (h *Feed) ListImages(c *gin.Context) error {
	var req types.ListImagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return errInvalidParams.With("detail", err.Error())
	}
	resp, err := h.FeedService.GetFeed(c.Request.Context(), &req, context.ViewerID(c))
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}
