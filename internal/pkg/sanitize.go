package pkg

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var xssPolicy = bluemonday.UGCPolicy()

// SanitizeText 先解码一次实体再过滤，结果是安全的 HTML 片段，不再反转义
func SanitizeText(val string) string {
	return strings.TrimSpace(xssPolicy.Sanitize(html.UnescapeString(val)))
}
