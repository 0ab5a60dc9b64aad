package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"PedagoPass/internal/service"
)

type CommunityHandler struct {
	responder
	svc *service.CommunityService
}

func NewCommunityHandler(svc *service.CommunityService, log *slog.Logger, production bool) *CommunityHandler {
	return &CommunityHandler{responder: responder{log: log, production: production}, svc: svc}
}

type SetRoleReq struct {
	Role string `json:"role"`
}

// Create 创建社区接口，创建者自动成为成员
func (h *CommunityHandler) Create(c *gin.Context) {
	var req service.CreateCommunityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c)
		return
	}
	community, err := h.svc.CreateCommunity(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"community": community})
}

func (h *CommunityHandler) List(c *gin.Context) {
	page, err := h.svc.ListCommunities(c.Request.Context(), c.Query("topic"), queryInt(c, "page"), queryInt(c, "size"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get :id 可以是数字 id 或 slug
func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.svc.GetCommunity(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateCommunityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c)
		return
	}
	community, err := h.svc.UpdateCommunity(c.Request.Context(), currentUser(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCommunity(c.Request.Context(), currentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

// Join 加入社区
func (h *CommunityHandler) Join(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	member, err := h.svc.JoinCommunity(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member})
}

// Leave 退出社区
func (h *CommunityHandler) Leave(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.LeaveCommunity(c.Request.Context(), currentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "left"})
}

func (h *CommunityHandler) Members(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.ListMembers(c.Request.Context(), id, queryInt(c, "page"), queryInt(c, "size"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": list})
}

func (h *CommunityHandler) SetRole(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	var req SetRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c)
		return
	}
	member, err := h.svc.SetMemberRole(c.Request.Context(), currentUser(c), id, targetID, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member})
}
