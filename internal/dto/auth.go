package dto

// ── 认证模块 DTO ──

// RegisterRequest 自助注册请求（注册后为 PENDING，等待审批）
type RegisterRequest struct {
	UserID   string `json:"user_id"  binding:"required,max=50"`
	Name     string `json:"name"     binding:"required,max=100"`
	Email    string `json:"email"    binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	UserID     string `json:"user_id"  binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"` // 非 Cookie 模式时使用
}
