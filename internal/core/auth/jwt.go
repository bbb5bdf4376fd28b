package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type Subject struct {
	ID string `json:"id"`
}

// Claims payload 形如 {"user":{"id":"..."}}，兼容旧客户端
type Claims struct {
	User Subject `json:"user"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
	// TTL <= 0 表示签发的 token 不过期
	TTL time.Duration
	// Leeway 为校验 exp/iat 时容忍的时钟偏差，零值表示严格校验
	Leeway time.Duration
	Now    func() time.Time
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTer) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", errors.New("issue token: empty subject")
	}
	now := j.now()
	claims := Claims{
		User: Subject{ID: subjectID},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subjectID,
			Issuer:   j.Issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if j.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.TTL))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(j.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	}
	if j.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(j.Leeway))
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.User.ID == "" {
		return nil, ErrTokenInvalid
	}
	return c, nil
}

// Verify 校验签名与过期时间，返回 token 绑定的用户 id
func (j *JWTer) Verify(tokenStr string) (string, error) {
	c, err := j.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return c.User.ID, nil
}
