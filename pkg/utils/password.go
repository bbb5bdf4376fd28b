package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost bcrypt 轮数，与旧库 genSalt(10) 保持一致以便复用已有哈希
const PasswordCost = 10

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword 仅在哈希本身损坏时返回 error；密码不匹配返回 (false, nil)
func CheckPassword(pw, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
