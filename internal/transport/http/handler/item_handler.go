package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secondchance/internal/domain"
	"secondchance/internal/feature/item"
	"secondchance/internal/transport/http/ez"
)

const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
)

type ItemHandler struct {
	svc *item.Service
	log *zap.Logger
}

func NewItemHandler(svc *item.Service, log *zap.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, log: log}
}

type updatedOut struct {
	Updated string `json:"updated"`
}

type deletedOut struct {
	Deleted string `json:"deleted"`
}

type searchQ struct {
	Name      string `form:"name"`
	Category  string `form:"category"`
	Condition string `form:"condition"`
	AgeYears  string `form:"age_years"`
}

func outcome(ok bool) string {
	if ok {
		return outcomeSuccess
	}
	return outcomeFailed
}

func (h *ItemHandler) group(g *gin.RouterGroup) ez.EZ {
	return ez.New(g, h.log,
		ez.WithFault(ez.PlainFault("Internal Server Error")),
		ez.WithErrorMap(MapError),
	)
}

// MountItems 挂载 /api/secondchance/items 下的 CRUD
func (h *ItemHandler) MountItems(g *gin.RouterGroup) {
	e := h.group(g)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Item]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Item, error) {
			return h.svc.List(c.Request.Context(), domain.ItemFilter{})
		},
	})

	ez.RegisterAction(e, ez.Action[item.CreateInput, *domain.Item]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindForm,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *item.CreateInput) (*domain.Item, error) {
			fh, err := c.FormFile("image")
			switch {
			case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
				return h.svc.Create(c.Request.Context(), *in, nil)
			case err != nil:
				return nil, ez.BadRequest("invalid image upload")
			}
			f, err := fh.Open()
			if err != nil {
				return nil, ez.Internal("open upload", err)
			}
			defer f.Close()
			return h.svc.Create(c.Request.Context(), *in, &item.Image{
				Filename:    fh.Filename,
				Size:        fh.Size,
				ContentType: fh.Header.Get("Content-Type"),
				Body:        f,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Item]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Item, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, updatedOut]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (updatedOut, error) {
			body, err := c.GetRawData()
			if err != nil {
				return updatedOut{}, ez.BadRequest("invalid request body")
			}
			p, err := item.ParseItemPatch(body)
			if err != nil {
				return updatedOut{}, err
			}
			ok, err := h.svc.Update(c.Request.Context(), c.Param("id"), p)
			if err != nil {
				return updatedOut{}, err
			}
			return updatedOut{Updated: outcome(ok)}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, deletedOut]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (deletedOut, error) {
			ok, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
			if err != nil {
				return deletedOut{}, err
			}
			return deletedOut{Deleted: outcome(ok)}, nil
		},
	})
}

// MountSearch 挂载 /api/secondchance/search
func (h *ItemHandler) MountSearch(g *gin.RouterGroup) {
	ez.RegisterAction(h.group(g), ez.Action[searchQ, []domain.Item]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, q *searchQ) ([]domain.Item, error) {
			f, err := item.ParseFilter(q.Name, q.Category, q.Condition, q.AgeYears)
			if err != nil {
				return nil, err
			}
			return h.svc.List(c.Request.Context(), f)
		},
	})
}
