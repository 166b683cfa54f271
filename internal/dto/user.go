package dto

import (
	"time"

	"classroom-timetable/internal/model"
	"classroom-timetable/internal/policy"
)

// ── 用户 / 审批模块 DTO ──

// ApproveUserRequest 审批请求
// role 为 USER 或 ADMIN_*；ADMIN_X 时 department 必须为 X
type ApproveUserRequest struct {
	Role       string `json:"role"       binding:"required"`
	Department string `json:"department" binding:"omitempty,department"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Role        model.Role          `json:"role"`
	Department  model.Department    `json:"department"`
	IsApproved  bool                `json:"is_approved"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   time.Time           `json:"created_at"`
	Permissions *policy.Permissions `json:"permissions,omitempty"`
}

// NewUserResponse 由用户记录构造响应
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		UserID:     u.UserID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		IsApproved: u.IsApproved,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

// NewUserResponseWithPermissions 附带权限摘要（登录与 /auth/me）
func NewUserResponseWithPermissions(u *model.User) UserResponse {
	resp := NewUserResponse(u)
	perms := policy.PermissionsOf(policy.ActorFromUser(u))
	resp.Permissions = &perms
	return resp
}

// StatsResponse 超管面板统计
type StatsResponse struct {
	PendingRequests int64 `json:"pending_requests"`
	ActiveUsers     int64 `json:"active_users"`
	DisabledUsers   int64 `json:"disabled_users"`
	TotalTimetables int64 `json:"total_timetables"`
}
