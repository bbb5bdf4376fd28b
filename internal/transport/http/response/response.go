package response

import "secondchance/internal/domain"

// Resp 失败响应体；成功时直接返回业务数据
type Resp struct {
	Error  string              `json:"error"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

// Error 失败响应（customMsg 为空时用 CodeMsgMap 里的默认文案）
func Error(code int, customMsg string) Resp {
	msg := customMsg
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return Resp{Error: msg}
}

// Invalid 字段校验失败，附带每个字段的原因
func Invalid(msg string, fields []domain.FieldError) Resp {
	return Resp{Error: msg, Errors: fields}
}
