package policy

import (
	"classroom-timetable/internal/model"
)

// Actor 发起请求的用户快照
// 由认证中间件从数据库加载后显式传入每个决策函数
type Actor struct {
	ID         string
	Name       string
	Role       model.Role
	Department model.Department
	IsApproved bool
	IsActive   bool
}

// ActorFromUser 由用户记录构造 Actor
func ActorFromUser(u *model.User) Actor {
	return Actor{
		ID:         u.ID,
		Name:       u.Name,
		Role:       u.Role,
		Department: u.Department,
		IsApproved: u.IsApproved,
		IsActive:   u.IsActive,
	}
}

// Permissions 登录与 /auth/me 返回的权限摘要
type Permissions struct {
	CanViewTimetable bool `json:"can_view_timetable"`
	CanEditCell      bool `json:"can_edit_cell"`
	IsSuperAdmin     bool `json:"is_super_admin"`
}

// PermissionsOf 计算权限摘要
func PermissionsOf(a Actor) Permissions {
	return Permissions{
		CanViewTimetable: CanView(a) == nil,
		CanEditCell:      CanEditCells(a) == nil,
		IsSuperAdmin:     a.Role.IsSuperAdmin(),
	}
}

// CanLogin 登录门槛：先校验启用状态，再校验审批（SUPER_ADMIN 免审批）
func CanLogin(a Actor) error {
	if !a.IsActive {
		return ErrAccountDisabled
	}
	if !a.IsApproved && !a.Role.IsSuperAdmin() {
		return ErrAwaitingApproval
	}
	return nil
}

// CanView 查看课表：USER / ADMIN_* / SUPER_ADMIN
func CanView(a Actor) error {
	if a.Role.IsPending() {
		return ErrViewDenied
	}
	return nil
}

// CanEditCells 编辑单元格：仅已审批且启用的院系管理员
func CanEditCells(a Actor) error {
	switch a.Role.Kind() {
	case model.KindSuperAdmin:
		return ErrSuperAdminReadOnly
	case model.KindUser:
		return ErrReadOnlyUser
	case model.KindAdmin:
		return adminGate(a)
	default:
		return ErrEditDenied
	}
}

// CanCreateTimetable 创建课表：仅已审批且启用的院系管理员
func CanCreateTimetable(a Actor) error {
	if !a.Role.IsAdmin() {
		return ErrCreateDenied
	}
	return adminGate(a)
}

// CanDeleteTimetable 删除课表：创建者本人或 SUPER_ADMIN
func CanDeleteTimetable(a Actor, t *model.Timetable) error {
	if a.Role.IsSuperAdmin() {
		return nil
	}
	if a.Role.IsAdmin() && t.CreatedBy == a.ID {
		return adminGate(a)
	}
	return ErrDeleteDenied
}

// CanManageUsers 用户审批与管理：仅 SUPER_ADMIN
func CanManageUsers(a Actor) error {
	if !a.Role.IsSuperAdmin() || !a.IsActive {
		return ErrManageDenied
	}
	return nil
}

func adminGate(a Actor) error {
	if !a.IsApproved {
		return ErrAwaitingApproval
	}
	if !a.IsActive {
		return ErrAccountDisabled
	}
	return nil
}
