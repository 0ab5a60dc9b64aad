package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"PedagoPass/internal/middleware"
	"PedagoPass/internal/service"
)

type PostLikeHandler struct {
	responder
	svc *service.PostLikeService
}

func NewPostLikeHandler(svc *service.PostLikeService, log *slog.Logger, production bool) *PostLikeHandler {
	return &PostLikeHandler{responder: responder{log: log, production: production}, svc: svc}
}

// Toggle 点赞/取消点赞
func (h *PostLikeHandler) Toggle(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	state, err := h.svc.Toggle(c.Request.Context(), postID, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Status 匿名用户 liked 恒为 false
func (h *PostLikeHandler) Status(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	count, err := h.svc.Count(ctx, postID)
	if err != nil {
		h.fail(c, err)
		return
	}
	state := service.LikeState{LikesCount: count}
	if userID, ok := middleware.UserID(c); ok {
		if state.Liked, err = h.svc.IsLiked(ctx, userID, postID); err != nil {
			h.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, state)
}
