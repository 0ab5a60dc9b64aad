package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	MaxUploadFiles    = 5
	MaxUploadFileSize = 50 << 20
	// multipart 边界与普通字段的余量
	formOverhead = 1 << 20
	memoryBuffer = 32 << 20
)

// UploadLimit 限制 multipart 请求的文件数与单文件大小，超限时尽早拒绝
func UploadLimit(maxFiles int, maxFileSize int64) gin.HandlerFunc {
	maxBody := int64(maxFiles)*maxFileSize + formOverhead
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.ContentType(), "multipart/") {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBody {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"msg": "upload too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
		if err := c.Request.ParseMultipartForm(memoryBuffer); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"msg": "upload too large"})
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"msg": "invalid multipart form"})
			return
		}
		defer func() { _ = c.Request.MultipartForm.RemoveAll() }()

		count := 0
		for _, files := range c.Request.MultipartForm.File {
			for _, fh := range files {
				count++
				if fh.Size > maxFileSize {
					c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"msg": "file too large"})
					return
				}
			}
		}
		if count > maxFiles {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"msg": "too many files"})
			return
		}
		c.Next()
	}
}
