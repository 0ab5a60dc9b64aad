package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"PedagoPass/internal/service"
)

type CommentHandler struct {
	responder
	svc *service.CommentService
}

func NewCommentHandler(svc *service.CommentService, log *slog.Logger, production bool) *CommentHandler {
	return &CommentHandler{responder: responder{log: log, production: production}, svc: svc}
}

type AddCommentReq struct {
	Content  string  `json:"content"`
	ParentID *uint64 `json:"parentId"`
}

func (h *CommentHandler) Add(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AddCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c)
		return
	}
	comment, err := h.svc.AddComment(c.Request.Context(), currentUser(c), postID, req.Content, req.ParentID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.ListComments(c.Request.Context(), postID, queryInt(c, "page"), queryInt(c, "size"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": list})
}

// Delete 连同回复一起删除
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	removed, err := h.svc.DeleteComment(c.Request.Context(), currentUser(c), commentID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
