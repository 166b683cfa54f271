package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"classroom-timetable/config"
	"classroom-timetable/internal/dto"
	"classroom-timetable/internal/service"
	"classroom-timetable/pkg/response"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	cookie  config.CookieConfig
	// remember me 时 Cookie 的 Max-Age（秒）；0 表示会话 Cookie
	rememberMaxAge int
	defaultMaxAge  int
}

// NewAuthHandler 创建 AuthHandler
// cfg 为 nil 时使用不带 Secure 的会话 Cookie（测试场景）
func NewAuthHandler(authSvc service.AuthService, cfg *config.AuthConfig) *AuthHandler {
	h := &AuthHandler{authSvc: authSvc}
	if cfg != nil {
		h.cookie = cfg.Cookie
		h.rememberMaxAge = int(cfg.RefreshTokenTTLRemember.Seconds())
		h.defaultMaxAge = int(cfg.RefreshTokenTTLDefault.Seconds())
	}
	return h
}

// Register 自助注册，账号进入待审批状态
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, "Registration successful. Awaiting admin approval.", user)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RememberMe)
	response.OKWithMessage(c, "Login successful", result)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
// 优先读取 Cookie，其次读取请求体中的 refresh_token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(refreshCookieName)
	if token == "" {
		var req dto.RefreshTokenRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				handleBindError(c, err)
				return
			}
		}
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		response.BadRequest(c, 10001, "Refresh token is required")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), token)
	if err != nil {
		h.clearRefreshCookie(c)
		handleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RememberMe)
	response.OK(c, result)
}

// Logout 用户登出：吊销当前 Access Token 与 Refresh Token，并清除 Cookie
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	refresh, _ := c.Cookie(refreshCookieName)
	if err := h.authSvc.Logout(c.Request.Context(), GetClaims(c), refresh); err != nil {
		handleError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	response.OKWithMessage(c, "Logged out successfully", nil)
}

// GetCurrentUser 当前用户信息（含权限摘要）
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), actor.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, user)
}

// ── Cookie ──

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, rememberMe bool) {
	if token == "" {
		return
	}
	maxAge := h.defaultMaxAge
	if rememberMe {
		maxAge = h.rememberMaxAge
	}
	c.SetSameSite(sameSiteMode(h.cookie.SameSite))
	c.SetCookie(refreshCookieName, token, maxAge, refreshCookiePath, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(sameSiteMode(h.cookie.SameSite))
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, h.cookie.Domain, h.cookie.Secure, true)
}

func sameSiteMode(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
