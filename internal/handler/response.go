package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"PedagoPass/internal/middleware"
	"PedagoPass/internal/pkg"
)

// responder 统一错误输出，生产环境隐藏内部错误信息
type responder struct {
	log        *slog.Logger
	production bool
}

func (r responder) fail(c *gin.Context, err error) {
	var ae *pkg.AppError
	if errors.As(err, &ae) {
		c.JSON(ae.Status(), gin.H{"msg": ae.Msg})
		return
	}
	r.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
	msg := err.Error()
	if r.production {
		msg = "internal server error"
	}
	c.JSON(http.StatusInternalServerError, gin.H{"msg": msg})
}

func invalidParams(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
}

// pathID 解析路径中的数字 id，失败时已写入 400
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryUint(c *gin.Context, name string) uint64 {
	v, _ := strconv.ParseUint(c.Query(name), 10, 64)
	return v
}

func queryInt(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}

// currentUser 仅在 RequireAuth 之后调用
func currentUser(c *gin.Context) uint64 {
	id, _ := middleware.UserID(c)
	return id
}
