package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"` // Cookie 模式下可不返回
	ExpiresIn    int          `json:"expires_in"`              // Access Token 有效期（秒）
	RememberMe   bool         `json:"remember_me"`
	User         UserResponse `json:"user"`
}

// ── 分页请求 ──

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Resolve 填充默认值并返回 (page, pageSize, offset)
func (p PaginationRequest) Resolve() (page, pageSize, offset int) {
	page, pageSize = p.Page, p.PageSize
	if page <= 0 {
		page = defaultPage
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

// PageResult 分页查询结果
type PageResult[T any] struct {
	List     []T
	Total    int64
	Page     int
	PageSize int
}
