package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"secondchance/internal/domain"
	"secondchance/pkg/patch"
	"secondchance/pkg/utils"
)

// TokenIssuer 由 auth.JWTer 实现
type TokenIssuer interface {
	Issue(subjectID string) (string, error)
}

type Service struct {
	users  domain.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
	now    func() time.Time
}

func NewService(users domain.UserRepository, tokens TokenIssuer, log *zap.Logger) *Service {
	return &Service{users: users, tokens: tokens, log: log, now: time.Now}
}

type RegisterInput struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

type RegisterOutput struct {
	Email     string `json:"email"`
	AuthToken string `json:"authtoken"`
}

type LoginOutput struct {
	AuthToken string `json:"authtoken"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// ProfilePatch 未出现的字段保持不变，null 清空
type ProfilePatch struct {
	FirstName patch.Field[string]
	LastName  patch.Field[string]
}

// ParseProfilePatch 逐个字段校验，一次性返回全部错误
func ParseProfilePatch(body []byte) (ProfilePatch, error) {
	var p ProfilePatch
	var ve domain.ValidationError
	obj, err := patch.ParseObject(body)
	if err != nil {
		ve.Add("body", "must be a JSON object")
		return p, ve.Err()
	}
	if err := patch.Decode(obj, "firstName", &p.FirstName); err != nil {
		ve.Add("firstName", "must be a string")
	}
	if err := patch.Decode(obj, "lastName", &p.LastName); err != nil {
		ve.Add("lastName", "must be a string")
	}
	return p, ve.Err()
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterOutput, error) {
	var ve domain.ValidationError
	if strings.TrimSpace(in.Email) == "" {
		ve.Add("email", "is required")
	}
	if in.Password == "" {
		ve.Add("password", "is required")
	}
	if err := ve.Err(); err != nil {
		return RegisterOutput{}, err
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return RegisterOutput{}, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		s.log.Warn("email id already exists", zap.String("email", in.Email))
		return RegisterOutput{}, domain.ErrDuplicateEmail
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return RegisterOutput{}, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			// 并发注册同一邮箱，唯一索引兜底
			return RegisterOutput{}, err
		}
		return RegisterOutput{}, fmt.Errorf("create user: %w", err)
	}

	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return RegisterOutput{}, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("user registered successfully", zap.String("user_id", u.ID))
	return RegisterOutput{Email: in.Email, AuthToken: tok}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginOutput, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return LoginOutput{}, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		s.log.Warn("user not found", zap.String("email", email))
		return LoginOutput{}, domain.ErrUserNotFound
	}
	ok, err := utils.CheckPassword(password, u.PasswordHash)
	if err != nil {
		return LoginOutput{}, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		s.log.Warn("passwords do not match", zap.String("email", email))
		return LoginOutput{}, domain.ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return LoginOutput{}, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("user logged in successfully", zap.String("user_id", u.ID))
	return LoginOutput{AuthToken: tok, UserName: u.FullName(), UserEmail: u.Email}, nil
}

// UpdateProfile email 来自请求头而不是 body
func (s *Service) UpdateProfile(ctx context.Context, email string, p ProfilePatch) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", domain.ErrMissingIdentity
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		s.log.Warn("user not found for update", zap.String("email", email))
		return "", domain.ErrUserNotFound
	}

	if p.FirstName.Set {
		u.FirstName = p.FirstName.Value // null 时 Value 为 ""
	}
	if p.LastName.Set {
		u.LastName = p.LastName.Value
	}
	now := s.now()
	u.UpdatedAt = &now
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return "", fmt.Errorf("update user: %w", err)
	}

	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("user profile updated", zap.String("user_id", u.ID))
	return tok, nil
}
