package handler

import (
	"errors"

	"secondchance/internal/domain"
	"secondchance/internal/transport/http/ez"
)

// MapError 业务错误 -> 对外文案与状态码；其余错误原样返回，由 ez 按 500 处理
func MapError(err error) error {
	if ve, ok := domain.IsValidation(err); ok {
		return ez.Invalid("Invalid input", ve)
	}
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return ez.BadRequest("Email id already exists")
	case errors.Is(err, domain.ErrUserNotFound):
		return ez.NotFound("User not found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return ez.NotFound("Wrong password")
	case errors.Is(err, domain.ErrMissingIdentity):
		return ez.BadRequest("Email not found in the request headers")
	case errors.Is(err, domain.ErrItemNotFound):
		return ez.NotFound("secondChanceItem not found")
	case errors.Is(err, domain.ErrMissingInput):
		return ez.BadRequest("No sentence provided")
	}
	return err
}
