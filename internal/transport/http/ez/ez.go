package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secondchance/internal/domain"
	resp "secondchance/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindForm  Binder = "form"  // 按 Content-Type 选择 multipart / urlencoded / JSON
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.GetRawData 取
)

// 统一错误对象
type AErr struct {
	Code   int
	Msg    string
	Err    error
	Fields []domain.FieldError
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func NotFound(msg string) error   { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Invalid 把字段级校验错误带到响应体的 errors 数组
func Invalid(msg string, ve *domain.ValidationError) error {
	return &AErr{Code: resp.CodeBadRequest, Msg: msg, Err: ve, Fields: ve.Fields}
}

// EZ 一组路由共用的错误映射与 500 兜底输出
type EZ struct {
	g      *gin.RouterGroup
	log    *zap.Logger
	fault  gin.HandlerFunc
	mapErr func(error) error
}

type Option func(*EZ)

// WithFault 自定义 500 响应体
func WithFault(h gin.HandlerFunc) Option { return func(e *EZ) { e.fault = h } }

// WithErrorMap 把业务错误翻译成 *AErr；返回非 AErr 的一律按 500 处理
func WithErrorMap(m func(error) error) Option { return func(e *EZ) { e.mapErr = m } }

// PlainFault 500 时返回纯文本
func PlainFault(text string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusInternalServerError, text) }
}

func New(g *gin.RouterGroup, log *zap.Logger, opts ...Option) EZ {
	e := EZ{g: g, log: log, fault: PlainFault(resp.CodeMsgMap[resp.CodeServerError])}
	for _, o := range opts {
		o(&e)
	}
	return e
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method    string // "GET" | "POST" | "PUT" | "DELETE"
	Path      string // 例："/register"、"/:id"
	Binder    Binder
	Status    int    // 成功状态码，默认 200
	BindError string // 绑定失败时的提示，默认 "invalid request body"
	Handler   func(c *gin.Context, in *I) (O, error)
}

// 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	bindMsg := a.BindError
	if bindMsg == "" {
		bindMsg = "invalid request body"
	}

	h := func(c *gin.Context) {
		// 1) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindForm:
			bindErr = c.ShouldBind(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			e.writeBindError(c, bindErr, bindMsg)
			return
		}

		// 2) 执行
		out, err := a.Handler(c, &in)
		if err != nil {
			e.writeError(c, err)
			return
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

func (e EZ) writeBindError(c *gin.Context, err error, msg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(resp.CodeTooLarge, resp.Error(resp.CodeTooLarge, ""))
		return
	}
	e.log.Debug("bind failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.AbortWithStatusJSON(resp.CodeBadRequest, resp.Error(resp.CodeBadRequest, msg))
}

// 统一错误映射
func (e EZ) writeError(c *gin.Context, err error) {
	if e.mapErr != nil {
		err = e.mapErr(err)
	}
	var ae *AErr
	if errors.As(err, &ae) && ae.Code < http.StatusInternalServerError {
		if len(ae.Fields) > 0 {
			c.AbortWithStatusJSON(ae.Code, resp.Invalid(ae.Error(), ae.Fields))
			return
		}
		c.AbortWithStatusJSON(ae.Code, resp.Error(ae.Code, ae.Error()))
		return
	}
	e.log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	e.fault(c)
	c.Abort()
}
