package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"classroom-timetable/internal/dto"
	"classroom-timetable/internal/model"
	"classroom-timetable/internal/policy"
	"classroom-timetable/internal/repository"
	apperr "classroom-timetable/pkg/errors"
	"classroom-timetable/pkg/jwt"
)

var (
	ErrInvalidCredentials  = apperr.New(apperr.KindUnauthorized, 11001, "Invalid credentials")
	ErrUserIDTaken         = apperr.New(apperr.KindConflict, 11002, "User with this user ID already exists")
	ErrEmailTaken          = apperr.New(apperr.KindConflict, 11003, "User with this email already exists")
	ErrInvalidRefreshToken = apperr.New(apperr.KindUnauthorized, 11006, "Invalid or expired refresh token")
	ErrUserNotFound        = apperr.New(apperr.KindNotFound, 11007, "User not found")
	ErrTokenRevoked        = apperr.New(apperr.KindUnauthorized, 11008, "Token has been revoked")
	ErrRegisterFields      = apperr.New(apperr.KindValidation, 11009, "Please provide all required fields")
	ErrPasswordTooShort    = apperr.New(apperr.KindValidation, 11010, "Password must be at least 6 characters long")
)

const minPasswordLength = 6

// TokenBlacklist Token 吊销存储（由 pkg/redis.Client 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout 吊销当前 Access Token（及可选的 Refresh Token）
	Logout(ctx context.Context, accessClaims *jwt.Claims, refreshToken string) error
	GetCurrentUser(ctx context.Context, id string) (*dto.UserResponse, error)
	// ResolveActor 认证中间件每次请求调用，从数据库加载当前用户
	ResolveActor(ctx context.Context, id string) (policy.Actor, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	user := &model.User{
		UserID: req.UserID,
		Name:   req.Name,
		Email:  req.Email,
		Role:   model.RolePending,
	}
	user.Normalize()
	if user.UserID == "" || user.Name == "" || user.Email == "" || req.Password == "" {
		return nil, ErrRegisterFields
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	// 1. 唯一性检查（邮箱优先，与数据库约束互为补充）
	if _, err := s.repo.User.GetByEmail(ctx, user.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !repository.IsNotFound(err) {
		return nil, internal(s.logger, "查询用户失败", err)
	}
	if _, err := s.repo.User.GetByUserID(ctx, user.UserID); err == nil {
		return nil, ErrUserIDTaken
	} else if !repository.IsNotFound(err) {
		return nil, internal(s.logger, "查询用户失败", err)
	}

	// 2. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internal(s.logger, "密码哈希失败", err)
	}
	user.PasswordHash = string(hash)
	user.IsApproved = false
	user.IsActive = true

	// 3. 写入；并发注册由唯一约束兜底
	if err := s.repo.User.Create(ctx, user); err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			if dup.Constraint == repository.ConstraintUserEmail {
				return nil, ErrEmailTaken
			}
			return nil, ErrUserIDTaken
		}
		return nil, internal(s.logger, "创建用户失败", err, zap.String("user_id", user.UserID))
	}

	s.logger.Info("新用户注册，等待审批", zap.String("user_id", user.UserID))
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByUserID(ctx, strings.TrimSpace(req.UserID))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, internal(s.logger, "查询用户失败", err)
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 启用 / 审批门槛
	if err := policy.CanLogin(policy.ActorFromUser(user)); err != nil {
		return nil, err
	}

	// 4. 生成 Token 对
	return s.issueTokens(user, req.RememberMe)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseTokenOfType(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return nil, internal(s.logger, "查询 Token 黑名单失败", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	// 刷新前重新校验用户状态
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, internal(s.logger, "查询用户失败", err)
	}
	if err := policy.CanLogin(policy.ActorFromUser(user)); err != nil {
		return nil, err
	}

	resp, err := s.issueTokens(user, claims.RememberMe)
	if err != nil {
		return nil, err
	}

	// 轮换：旧 Refresh Token 立即失效
	s.revoke(ctx, claims)
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, accessClaims *jwt.Claims, refreshToken string) error {
	if s.blacklist == nil {
		return nil
	}
	if accessClaims != nil {
		if err := s.blacklist.BlacklistToken(ctx, accessClaims.ID, remaining(accessClaims)); err != nil {
			return internal(s.logger, "吊销 AccessToken 失败", err)
		}
	}
	if refreshToken != "" {
		if claims, err := s.jwtMgr.ParseTokenOfType(refreshToken, jwt.TokenTypeRefresh); err == nil {
			s.revoke(ctx, claims)
		}
	}
	return nil
}

func (s *authService) GetCurrentUser(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, internal(s.logger, "查询用户失败", err)
	}
	resp := dto.NewUserResponseWithPermissions(user)
	return &resp, nil
}

func (s *authService) ResolveActor(ctx context.Context, id string) (policy.Actor, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return policy.Actor{}, ErrUserNotFound
		}
		return policy.Actor{}, internal(s.logger, "加载当前用户失败", err)
	}
	return policy.ActorFromUser(user), nil
}

// ── 辅助函数 ──

func (s *authService) issueTokens(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, internal(s.logger, "生成 AccessToken 失败", err)
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.ID, rememberMe)
	if err != nil {
		return nil, internal(s.logger, "生成 RefreshToken 失败", err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		RememberMe:   rememberMe,
		User:         dto.NewUserResponseWithPermissions(user),
	}, nil
}

// revoke 尽力吊销，失败只记日志
func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, remaining(claims)); err != nil {
		s.logger.Warn("吊销 Token 失败", zap.String("jti", claims.ID), zap.Error(err))
	}
}

func remaining(claims *jwt.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return time.Until(claims.ExpiresAt.Time)
}
