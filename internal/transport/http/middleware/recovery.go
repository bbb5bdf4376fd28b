package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "secondchance/internal/transport/http/response"
)

// SimpleRecovery panic 时记录堆栈并返回纯文本 500
func SimpleRecovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.String("rid", c.GetString(KeyRequestID)),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				c.String(http.StatusInternalServerError, resp.CodeMsgMap[resp.CodeServerError])
				c.Abort()
			}
		}()
		c.Next()
	}
}
