package response

import "net/http"

// 直接使用 HTTP 状态码
const (
	CodeOK              = http.StatusOK
	CodeCreated         = http.StatusCreated
	CodeBadRequest      = http.StatusBadRequest
	CodeNotFound        = http.StatusNotFound
	CodeTooLarge        = http.StatusRequestEntityTooLarge
	CodeTooManyRequests = http.StatusTooManyRequests
	CodeServerError     = http.StatusInternalServerError
	CodeUnavailable     = http.StatusServiceUnavailable
	CodeTimeout         = http.StatusGatewayTimeout
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:              "OK",
	CodeCreated:         "Created",
	CodeBadRequest:      "Bad Request",
	CodeNotFound:        "Not Found",
	CodeTooLarge:        "request body too large",
	CodeTooManyRequests: "too many requests",
	CodeServerError:     "Internal Server Error",
	CodeUnavailable:     "server busy",
	CodeTimeout:         "timeout",
}
