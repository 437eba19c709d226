package handler

import (
	"Perish/config"
	"Perish/middleware"
	"Perish/pkg/context"
	"Perish/pkg/response"
	"Perish/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Vote struct {
	VoteService service.IVoteService
	Config      *config.Config
}

func (h *Vote) RegisterRouter(r gin.IRouter) {
	authorize := middleware.Auth([]byte(h.Config.Jwt.Secret))
	g := r.Group("/images/:id", authorize)
	g.POST("/like", context.Wrap(h.Like))
	g.DELETE("/like", context.Wrap(h.Unlike))
	g.POST("/superlike", context.Wrap(h.Superlike))
}

// Like 点赞开关
func (h *Vote) Like(c *gin.Context) error {
	uid, imageID, err := voteTarget(c)
	if err != nil {
		return err
	}
	resp, err := h.VoteService.SubmitLike(c.Request.Context(), uid, imageID)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}

func (h *Vote) Unlike(c *gin.Context) error {
	uid, imageID, err := voteTarget(c)
	if err != nil {
		return err
	}
	resp, err := h.VoteService.RemoveLike(c.Request.Context(), uid, imageID)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}

func (h *Vote) Superlike(c *gin.Context) error {
	uid, imageID, err := voteTarget(c)
	if err != nil {
		return err
	}
	resp, err := h.VoteService.SubmitSuperlike(c.Request.Context(), uid, imageID)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}

func voteTarget(c *gin.Context) (uint64, uint64, error) {
	uid, err := context.GetUserID(c)
	if err != nil {
		return 0, 0, service.ErrUnauthorized
	}
	imageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || imageID == 0 {
		return 0, 0, service.ErrInvalidImage
	}
	return uid, imageID, nil
}
