package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"classroom-timetable/config"
	"classroom-timetable/internal/dto"
	"classroom-timetable/internal/model"
	"classroom-timetable/internal/policy"
	"classroom-timetable/pkg/jwt"
)

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	})
}

func setupTestAuthService() (AuthService, *testRepos, *mockBlacklist) {
	repos := newTestRepos()
	bl := newMockBlacklist()
	svc := NewAuthService(repos.repo, newTestJWT(), bl, zap.NewNop())
	return svc, repos, bl
}

// createTestUser 直接写入一个用户
func createTestUser(repos *testRepos, userID, password string, role model.Role, approved, active bool) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &model.User{
		UserID:       userID,
		Name:         "User " + userID,
		Email:        userID + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		IsApproved:   approved,
		IsActive:     active,
	}
	_ = repos.users.Create(context.Background(), u)
	return u
}

func TestRegister_Success(t *testing.T) {
	svc, repos, _ := setupTestAuthService()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		UserID:   " U1 ",
		Name:     "Alice",
		Email:    "A@X.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register 应成功，但返回错误: %v", err)
	}
	if resp.Role != model.RolePending || resp.Department != model.DepartmentNone || resp.IsApproved || !resp.IsActive {
		t.Errorf("新用户状态不符: %+v", resp)
	}
	if resp.UserID != "U1" || resp.Email != "a@x.com" {
		t.Errorf("字段应规范化: user_id=%q email=%q", resp.UserID, resp.Email)
	}

	stored, err := repos.users.GetByUserID(context.Background(), "U1")
	if err != nil {
		t.Fatalf("用户应已写入: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")) != nil {
		t.Error("密码应以 bcrypt 哈希存储")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc, repos, _ := setupTestAuthService()
	createTestUser(repos, "U1", "secret1", model.RolePending, false, true)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		UserID: "U1", Name: "Bob", Email: "other@example.com", Password: "secret1",
	})
	if !errors.Is(err, ErrUserIDTaken) {
		t.Errorf("期望 ErrUserIDTaken，实际: %v", err)
	}

	_, err = svc.Register(context.Background(), &dto.RegisterRequest{
		UserID: "U2", Name: "Bob", Email: "U1@example.com", Password: "secret1",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{UserID: "U1", Name: "  ", Email: "a@x.com", Password: "secret1"})
	if !errors.Is(err, ErrRegisterFields) {
		t.Errorf("期望 ErrRegisterFields，实际: %v", err)
	}
	_, err = svc.Register(context.Background(), &dto.RegisterRequest{UserID: "U1", Name: "A", Email: "a@x.com", Password: "12345"})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("期望 ErrPasswordTooShort，实际: %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	svc, repos, _ := setupTestAuthService()
	createTestUser(repos, "A1", "password123", model.AdminRole(model.DepartmentCS), true, true)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{UserID: "A1", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("Token 不应为空")
	}
	if result.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际=%d", result.ExpiresIn)
	}
	if result.User.Permissions == nil || !result.User.Permissions.CanEditCell || result.User.Permissions.IsSuperAdmin {
		t.Errorf("权限摘要不符: %+v", result.User.Permissions)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, repos, _ := setupTestAuthService()
	createTestUser(repos, "A1", "password123", model.RoleUser, true, true)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{UserID: "A1", Password: "wrong_password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{UserID: "nobody", Password: "password123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_AwaitingApproval(t *testing.T) {
	svc, repos, _ := setupTestAuthService()
	createTestUser(repos, "U1", "secret1", model.RolePending, false, true)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{UserID: "U1", Password: "secret1"})
	if !errors.Is(err, policy.ErrAwaitingApproval) {
		t.Errorf("期望 ErrAwaitingApproval，实际: %v", err)
	}
}

func TestLogin_Disabled(t *testing.T) {
	svc, repos, _ := setupTestAuthService()
	createTestUser(repos, "U1", "secret1", model.RoleUser, true, false)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{UserID: "U1", Password: "secret1"})
	if !errors.Is(err, policy.ErrAccountDisabled) {
		t.Errorf("期望 ErrAccountDisabled，实际: %v", err)
	}
}

func TestLogin_SuperAdminSkipsApproval(t *testing.T) {
	svc, repos, _ := setupTestAuthService()
	createTestUser(repos, "SA", "secret1", model.RoleSuperAdmin, false, true)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{UserID: "SA", Password: "secret1"})
	if err != nil {
		t.Fatalf("超管登录应成功: %v", err)
	}
	if !result.User.Permissions.IsSuperAdmin || result.User.Permissions.CanEditCell {
		t.Errorf("超管权限摘要不符: %+v", result.User.Permissions)
	}
}

func TestRefreshToken_Success(t *testing.T) {
	svc, repos, bl := setupTestAuthService()
	createTestUser(repos, "U1", "secret1", model.RoleUser, true, true)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{UserID: "U1", Password: "secret1", RememberMe: true})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == login.RefreshToken {
		t.Error("应签发新的 Token 对")
	}

	claims, _ := newTestJWT().ParseToken(refreshed.RefreshToken)
	if !claims.RememberMe {
		t.Error("刷新后应保留 RememberMe")
	}
	if len(bl.revoked) != 1 {
		t.Errorf("旧 RefreshToken 应被吊销，黑名单条数=%d", len(bl.revoked))
	}

	// 旧 RefreshToken 不可再用
	if _, err := svc.RefreshToken(context.Background(), login.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("期望 ErrTokenRevoked，实际: %v", err)
	}
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	svc, repos, _ := setupTestAuthService()
	createTestUser(repos, "U1", "secret1", model.RoleUser, true, true)
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{UserID: "U1", Password: "secret1"})

	if _, err := svc.RefreshToken(context.Background(), login.AccessToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("期望 ErrInvalidRefreshToken，实际: %v", err)
	}
}

func TestRefreshToken_DisabledUser(t *testing.T) {
	svc, repos, _ := setupTestAuthService()
	u := createTestUser(repos, "U1", "secret1", model.RoleUser, true, true)
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{UserID: "U1", Password: "secret1"})

	u.IsActive = false
	_ = repos.users.Update(context.Background(), u)

	if _, err := svc.RefreshToken(context.Background(), login.RefreshToken); !errors.Is(err, policy.ErrAccountDisabled) {
		t.Errorf("期望 ErrAccountDisabled，实际: %v", err)
	}
}

func TestLogout_BlacklistsTokens(t *testing.T) {
	svc, repos, bl := setupTestAuthService()
	createTestUser(repos, "U1", "secret1", model.RoleUser, true, true)
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{UserID: "U1", Password: "secret1"})

	claims, _ := newTestJWT().ParseToken(login.AccessToken)
	if err := svc.Logout(context.Background(), claims, login.RefreshToken); err != nil {
		t.Fatalf("Logout 失败: %v", err)
	}
	if ttl, ok := bl.revoked[claims.ID]; !ok || ttl <= 0 || ttl > 15*time.Minute {
		t.Errorf("AccessToken 应按剩余有效期加入黑名单，ttl=%v ok=%v", ttl, ok)
	}
	if len(bl.revoked) != 2 {
		t.Errorf("期望 2 条黑名单记录，实际 %d", len(bl.revoked))
	}
}

func TestLogout_BlacklistFailure(t *testing.T) {
	svc, repos, bl := setupTestAuthService()
	createTestUser(repos, "U1", "secret1", model.RoleUser, true, true)
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{UserID: "U1", Password: "secret1"})
	claims, _ := newTestJWT().ParseToken(login.AccessToken)

	bl.err = errDBDown
	if err := svc.Logout(context.Background(), claims, ""); !errors.Is(err, ErrInternal) {
		t.Errorf("期望 ErrInternal，实际: %v", err)
	}
}

func TestGetCurrentUser(t *testing.T) {
	svc, repos, _ := setupTestAuthService()
	u := createTestUser(repos, "U1", "secret1", model.RoleUser, true, true)

	resp, err := svc.GetCurrentUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser 失败: %v", err)
	}
	if resp.Permissions == nil || !resp.Permissions.CanViewTimetable || resp.Permissions.CanEditCell {
		t.Errorf("USER 权限摘要不符: %+v", resp.Permissions)
	}

	if _, err := svc.GetCurrentUser(context.Background(), newID()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestResolveActor_SoftDeletedUserNotFound(t *testing.T) {
	svc, repos, _ := setupTestAuthService()
	u := createTestUser(repos, "U1", "secret1", model.RoleUser, true, true)

	actor, err := svc.ResolveActor(context.Background(), u.ID)
	if err != nil || actor.ID != u.ID || actor.Role != model.RoleUser {
		t.Fatalf("ResolveActor 结果不符: %+v %v", actor, err)
	}

	now := time.Now()
	u.DeletedAt = &now
	_ = repos.users.Update(context.Background(), u)
	if _, err := svc.ResolveActor(context.Background(), u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("软删除用户应不可见，实际: %v", err)
	}
}
