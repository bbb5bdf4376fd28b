package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"secondchance/internal/feature/item"
	"secondchance/internal/feature/user"
	"secondchance/internal/storage"
	"secondchance/internal/transport/http/handler"
	mdw "secondchance/internal/transport/http/middleware"
)

// APIDeps 由 cmd/api 组装后注入
type APIDeps struct {
	Users              *user.Service
	Items              *item.Service
	Images             storage.ImageStore
	MaxMultipartMemory int64 // 0 使用 gin 默认 32MB
}

func NewAPIEngine(l *zap.Logger, d APIDeps) *gin.Engine {
	r := gin.New()
	if d.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = d.MaxMultipartMemory
	}

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.RateLimitPerIP(20, 40),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "Inside the server") })
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET(storage.PublicPrefix+"*file", handler.NewImageHandler(d.Images, l).Serve)

	api := r.Group("/api")

	handler.NewAuthHandler(d.Users, l).Mount(api.Group("/auth"))

	items := handler.NewItemHandler(d.Items, l)
	items.MountItems(api.Group("/secondchance/items"))
	items.MountSearch(api.Group("/secondchance/search"))

	return r
}
