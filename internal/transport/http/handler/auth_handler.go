package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secondchance/internal/feature/user"
	"secondchance/internal/transport/http/ez"
)

// HeaderEmail 更新资料时标识用户的请求头
const HeaderEmail = "email"

type AuthHandler struct {
	svc *user.Service
	log *zap.Logger
}

func NewAuthHandler(svc *user.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateOut struct {
	AuthToken string `json:"authtoken"`
}

// Mount 挂载 /register /login /update
func (h *AuthHandler) Mount(g *gin.RouterGroup) {
	e := ez.New(g, h.log,
		ez.WithFault(ez.PlainFault("Internal server error")),
		ez.WithErrorMap(MapError),
	)

	ez.RegisterAction(e, ez.Action[user.RegisterInput, user.RegisterOutput]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *user.RegisterInput) (user.RegisterOutput, error) {
			return h.svc.Register(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[loginIn, user.LoginOutput]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (user.LoginOutput, error) {
			return h.svc.Login(c.Request.Context(), in.Email, in.Password)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, updateOut]{
		Method: http.MethodPut,
		Path:   "/update",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (updateOut, error) {
			body, err := c.GetRawData()
			if err != nil {
				return updateOut{}, ez.BadRequest("invalid request body")
			}
			p, err := user.ParseProfilePatch(body)
			if err != nil {
				return updateOut{}, err
			}
			tok, err := h.svc.UpdateProfile(c.Request.Context(), c.GetHeader(HeaderEmail), p)
			if err != nil {
				return updateOut{}, err
			}
			return updateOut{AuthToken: tok}, nil
		},
	})
}
