package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"PedagoPass/internal/service"
)

// UserHandler 公开资料与积分
type UserHandler struct {
	responder
	users  *service.UserService
	points *service.PointsService
}

func NewUserHandler(users *service.UserService, points *service.PointsService, log *slog.Logger, production bool) *UserHandler {
	return &UserHandler{responder: responder{log: log, production: production}, users: users, points: points}
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) Points(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.users.GetUserByID(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.writePoints(c, id)
}

func (h *UserHandler) MyPoints(c *gin.Context) {
	h.writePoints(c, currentUser(c))
}

func (h *UserHandler) writePoints(c *gin.Context, userID uint64) {
	sum, err := h.points.GetUserPoints(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
