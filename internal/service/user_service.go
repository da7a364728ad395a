package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-info-go/internal/model"
	"campus-info-go/internal/repository"
	"campus-info-go/pkg/hash"
	"campus-info-go/pkg/log"
	"campus-info-go/pkg/token"
)

// RegisterInput 是注册或创建用户的输入。
type RegisterInput struct {
	RegNo      string
	Name       string
	Email      string
	Password   string
	Department string
}

// TokenPair 是登录与刷新返回的一对 token。
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserProfile 是对外返回的用户信息，不包含密码哈希。
type UserProfile struct {
	ID         int64           `json:"id"`
	RegNo      string          `json:"regNo"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       string          `json:"role"`
	Department string          `json:"department"`
	IsActive   bool            `json:"isActive"`
	CreatedAt  model.LocalTime `json:"createdAt"`
}

// ProfileOf 把用户模型转换为对外的资料。
func ProfileOf(u *model.User) UserProfile {
	return UserProfile{
		ID:         u.ID,
		RegNo:      u.RegNo,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		IsActive:   u.IsActive,
		CreatedAt:  model.LocalTime(u.CreatedAt),
	}
}

// UserService 接口定义了所有与用户和认证相关的业务操作。
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	CreateUser(ctx context.Context, in RegisterInput, role string) (*model.User, error)
	Login(ctx context.Context, regNo, password string) (*TokenPair, *model.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, tokens ...string) error
	Authenticate(ctx context.Context, accessToken string) (*model.User, *token.CustomClaims, error)
	GetProfile(ctx context.Context, userID int64) (*model.User, error)
}

type userService struct {
	userRepo   repository.UserRepository
	blacklist  repository.TokenBlacklist
	jwtManager *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, blacklist repository.TokenBlacklist, jwtManager *token.JWTManager) UserService {
	return &userService{userRepo: userRepo, blacklist: blacklist, jwtManager: jwtManager}
}

// Register 注册一个学生账号，角色由管理员后续调整。
func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.CreateUser(ctx, in, model.RoleStudent)
}

// CreateUser 以指定角色创建用户。
func (s *userService) CreateUser(ctx context.Context, in RegisterInput, role string) (*model.User, error) {
	in.RegNo = strings.TrimSpace(in.RegNo)
	in.Name = strings.TrimSpace(in.Name)
	if in.RegNo == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: reg_no and name are required", ErrValidation)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	// 1. 检查学号是否已存在
	_, err := s.userRepo.FindByRegNo(ctx, in.RegNo)
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	// 2. 对密码进行哈希处理
	hashed, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	// 3. 写入用户
	user := &model.User{
		RegNo:        in.RegNo,
		Name:         in.Name,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hashed,
		Role:         role,
		Department:   strings.TrimSpace(in.Department),
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		log.Errorf("[UserService] 创建用户失败, reg_no: %s, error: %v", in.RegNo, err)
		return nil, err
	}
	log.Infof("[UserService] 用户创建成功, reg_no: %s, role: %s", user.RegNo, user.Role)
	return user, nil
}

func (s *userService) issue(user *model.User) (*TokenPair, error) {
	access, err := s.jwtManager.GenerateToken(user.ID, user.RegNo, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(user.ID, user.RegNo, user.Role)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Login 校验学号与密码并签发 token。
func (s *userService) Login(ctx context.Context, regNo, password string) (*TokenPair, *model.User, error) {
	// 1. 查找用户
	user, err := s.userRepo.FindByRegNo(ctx, strings.TrimSpace(regNo))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	// 2. 验证密码
	if !hash.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	// 3. 生成 access token 和 refresh token
	pair, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// RefreshToken 用 refresh token 换取新的一对 token，旧的 refresh token 随即作废。
func (s *userService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtManager.VerifyTokenOfType(refreshToken, token.TypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := s.blacklist.Contains(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.revoke(ctx, refreshToken, claims)
	return pair, nil
}

// Logout 把传入的 token 加入黑名单，直到它们自然过期。
func (s *userService) Logout(ctx context.Context, tokens ...string) error {
	for _, t := range tokens {
		if t == "" {
			continue
		}
		claims, err := s.jwtManager.VerifyToken(t)
		if err != nil {
			// 已失效的 token 无需拉黑
			continue
		}
		if err := s.revoke(ctx, t, claims); err != nil {
			return err
		}
	}
	return nil
}

func (s *userService) revoke(ctx context.Context, t string, claims *token.CustomClaims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Add(ctx, t, ttl); err != nil {
		log.Errorf("[UserService] 加入 token 黑名单失败: %v", err)
		return err
	}
	return nil
}

// Authenticate 校验 access token，检查黑名单并加载当前用户。
func (s *userService) Authenticate(ctx context.Context, accessToken string) (*model.User, *token.CustomClaims, error) {
	claims, err := s.jwtManager.VerifyTokenOfType(accessToken, token.TypeAccess)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}
	revoked, err := s.blacklist.Contains(ctx, accessToken)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, ErrInvalidToken
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}
	return user, claims, nil
}

// GetProfile 根据用户 ID 获取用户详细信息。
func (s *userService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
