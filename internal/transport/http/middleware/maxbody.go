package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "secondchance/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；声明长度超限直接 413，其余由读取方遇到 MaxBytesError
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(resp.CodeTooLarge, resp.Error(resp.CodeTooLarge, ""))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
