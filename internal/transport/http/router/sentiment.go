package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"secondchance/internal/core/server"
	"secondchance/internal/feature/sentiment"
	"secondchance/internal/transport/http/handler"
	mdw "secondchance/internal/transport/http/middleware"
)

// NewSentimentEngine 独立的情感分析进程，只有 POST /sentiment
func NewSentimentEngine(l *zap.Logger, a *sentiment.Analyzer) *gin.Engine {
	r := server.NewRouter(l)
	r.Use(mdw.RequestID(), mdw.MaxBodyBytes(1<<20), mdw.Metrics())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewSentimentHandler(a, l).Mount(&r.RouterGroup)
	return r
}
