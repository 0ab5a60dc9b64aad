package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"PedagoPass/internal/pkg"
)

const (
	AuthCookieName   = "auth_token"
	ContextUserIDKey = "user_id"
	ContextEmailKey  = "user_email"
	ContextRoleKey   = "user_role"
)

// TokenValidator 校验失败返回 nil
type TokenValidator interface {
	ValidateToken(token string) *pkg.Claims
}

// RequireAuth 未携带 cookie 或 token 无效时直接 401
func RequireAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(AuthCookieName)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "authentication required"})
			return
		}
		claims := v.ValidateToken(tokenStr)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth token 缺失或无效时按匿名用户继续
func OptionalAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, err := c.Cookie(AuthCookieName); err == nil && tokenStr != "" {
			if claims := v.ValidateToken(tokenStr); claims != nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRole 必须挂在 RequireAuth 之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRoleKey)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"msg": "insufficient permissions"})
	}
}

func setIdentity(c *gin.Context, claims *pkg.Claims) {
	c.Set(ContextUserIDKey, claims.UserID)
	c.Set(ContextEmailKey, claims.Email)
	c.Set(ContextRoleKey, claims.Role)
}

// UserID 匿名请求返回 0, false
func UserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok && id > 0
}
