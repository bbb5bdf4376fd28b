package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secondchance/internal/storage"
	resp "secondchance/internal/transport/http/response"
)

// ImageHandler 从图片存储读出上传的文件
type ImageHandler struct {
	store storage.ImageStore
	log   *zap.Logger
}

func NewImageHandler(store storage.ImageStore, log *zap.Logger) *ImageHandler {
	return &ImageHandler{store: store, log: log}
}

// Serve GET /images/*file
func (h *ImageHandler) Serve(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("file"), "/")
	rc, contentType, err := h.store.Open(c.Request.Context(), name)
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidName):
		c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, ""))
		return
	case err != nil:
		h.log.Error("open image", zap.String("name", name), zap.Error(err))
		c.String(http.StatusInternalServerError, resp.CodeMsgMap[resp.CodeServerError])
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Cache-Control": "public, max-age=3600",
	})
}
