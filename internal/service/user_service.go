package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"PedagoPass/internal/model"
	"PedagoPass/internal/pkg"
	"PedagoPass/internal/repository/mysql"
)

// UserStore 用户凭证存储
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint64, fields map[string]any) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

const msgInvalidCredentials = "invalid email or password"

type UserService struct {
	repo       UserStore
	tokens     *pkg.TokenIssuer
	notifier   Notifier
	bcryptCost int
	// dummyHash 用户不存在时也做一次比对，响应耗时与密码错误一致
	dummyHash []byte
	log       *slog.Logger
}

// NewUserService notifier 可以为 nil
func NewUserService(repo UserStore, tokens *pkg.TokenIssuer, notifier Notifier, bcryptCost int, log *slog.Logger) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	// cost 已校验，随机串不超过 72 字节，不会出错
	dummy, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
	return &UserService{
		repo:       repo,
		tokens:     tokens,
		notifier:   notifier,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
		log:        log,
	}
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Bio       string `json:"bio"`
	School    string `json:"school"`
	City      string `json:"city"`
	State     string `json:"state"`
	Role      string `json:"role"`
}

type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := pkg.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" {
		return nil, pkg.ErrValidation("email, password and name are required")
	}
	if !pkg.IsValidEmail(email) {
		return nil, pkg.ErrValidation("invalid email format")
	}
	if !pkg.IsValidPassword(in.Password) {
		return nil, pkg.ErrValidation("password must be at least 6 characters")
	}
	// ADMIN 不能自助注册
	role := in.Role
	if role == "" {
		role = model.DefaultRole
	}
	if !model.IsValidRole(role) || role == model.RoleAdmin {
		return nil, pkg.ErrValidation("invalid role")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkg.ErrConflict("email already registered")
	} else if !errors.Is(err, mysql.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:     email,
		Password:  string(hash),
		Name:      name,
		AvatarURL: strings.TrimSpace(in.AvatarURL),
		Bio:       pkg.SanitizeText(in.Bio),
		School:    strings.TrimSpace(in.School),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Role:      role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, mysql.ErrDuplicate) {
			return nil, pkg.ErrConflict("email already registered")
		}
		return nil, err
	}
	return s.issue(user)
}

// Login 用户不存在与密码错误返回同一错误
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = pkg.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, pkg.ErrValidation("email and password are required")
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, pkg.ErrUnauthorized(msgInvalidCredentials)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, pkg.ErrUnauthorized(msgInvalidCredentials)
	}
	return s.issue(user)
}

func (s *UserService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &AuthResult{User: user, Token: token}, nil
}

// ValidateToken 校验失败只记日志，返回 nil
func (s *UserService) ValidateToken(token string) *pkg.Claims {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.log.Warn("token verification failed", "err", err)
		return nil
	}
	return claims
}

func (s *UserService) TokenTTL() int {
	return int(s.tokens.TTL().Seconds())
}

func (s *UserService) GetUserByID(ctx context.Context, id uint64) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return nil, pkg.ErrNotFound("user not found")
		}
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, pkg.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return nil, pkg.ErrNotFound("user not found")
		}
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// ProfileInput 可修改的资料字段，nil 表示不修改
type ProfileInput struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
	Bio       *string `json:"bio"`
	School    *string `json:"school"`
	City      *string `json:"city"`
	State     *string `json:"state"`
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint64, in ProfileInput) (*model.User, error) {
	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, pkg.ErrValidation("name cannot be empty")
		}
		fields["name"] = name
	}
	if in.AvatarURL != nil {
		if len(*in.AvatarURL) > 512 {
			return nil, pkg.ErrValidation("avatar url too long")
		}
		fields["avatar_url"] = strings.TrimSpace(*in.AvatarURL)
	}
	if in.Bio != nil {
		fields["bio"] = pkg.SanitizeText(*in.Bio)
	}
	if in.School != nil {
		fields["school"] = strings.TrimSpace(*in.School)
	}
	if in.City != nil {
		fields["city"] = strings.TrimSpace(*in.City)
	}
	if in.State != nil {
		fields["state"] = strings.TrimSpace(*in.State)
	}

	if _, err := s.GetUserByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProfile(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

// ChangePassword 登录态修改密码，三类失败分别返回不同错误
func (s *UserService) ChangePassword(ctx context.Context, id uint64, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return pkg.ErrNotFound("user not found")
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return pkg.ErrUnauthorized("current password is incorrect")
	}
	if !pkg.IsValidPassword(newPassword) {
		return pkg.ErrValidation("new password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.PasswordChanged(ctx, user); err != nil {
			s.log.Warn("password change notice failed", "user_id", id, "err", err)
		}
	}
	return nil
}
