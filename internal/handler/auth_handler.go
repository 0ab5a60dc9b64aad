package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"PedagoPass/internal/middleware"
	"PedagoPass/internal/service"
)

type AuthHandler struct {
	responder
	svc *service.UserService
}

func NewAuthHandler(svc *service.UserService, log *slog.Logger, production bool) *AuthHandler {
	return &AuthHandler{responder: responder{log: log, production: production}, svc: svc}
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// setAuthCookie httpOnly + SameSite=Strict，生产环境只走 https
func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookieName, token, h.svc.TokenTTL(), "/", "", h.production, true)
}

func (h *AuthHandler) clearAuthCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", h.production, true)
}

// Register 注册接口
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c)
		return
	}
	res, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setAuthCookie(c, res.Token)
	c.JSON(http.StatusCreated, res)
}

// Login 登录接口
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c)
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setAuthCookie(c, res.Token)
	c.JSON(http.StatusOK, res)
}

// Logout 只清除 cookie，服务端不保存会话
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"msg": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.GetUserByID(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Validate 读取 cookie 判断 token 是否仍然有效
func (h *AuthHandler) Validate(c *gin.Context) {
	token, _ := c.Cookie(middleware.AuthCookieName)
	claims := h.svc.ValidateToken(token)
	if claims == nil {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user": gin.H{
			"userId": claims.UserID,
			"email":  claims.Email,
			"role":   claims.Role,
		},
		"expiresAt": claims.ExpiresAt,
	})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c)
		return
	}
	user, err := h.svc.UpdateProfile(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c)
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), currentUser(c), req.OldPassword, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "password changed"})
}
