package policy

import (
	"fmt"
	"strings"
	"time"

	"classroom-timetable/internal/model"
)

// ResolveApprovalRole 校验审批请求中的角色与院系
//
// 角色只能是 USER 或 ADMIN_*；ADMIN_X 要求院系恰好为 X（不自动修正），
// USER 忽略传入院系，一律为 NONE。
func ResolveApprovalRole(role, department string) (model.Role, error) {
	r, err := model.ParseRole(role)
	if err != nil || !(r.IsUser() || r.IsAdmin()) {
		return model.Role{}, ErrInvalidApprovalRole
	}
	if want, ok := r.AdminDepartment(); ok && model.Department(strings.TrimSpace(department)) != want {
		return model.Role{}, ErrDepartmentMismatch.WithMessage(
			fmt.Sprintf("Department must be %s for role %s", want, r))
	}
	return r, nil
}

// Approve 审批待定用户：赋予角色并启用
func Approve(a Actor, target *model.User, role model.Role) error {
	if err := CanManageUsers(a); err != nil {
		return err
	}
	if !(role.IsUser() || role.IsAdmin()) {
		return ErrInvalidApprovalRole
	}
	if target.Role.IsSuperAdmin() {
		return ErrCannotModifySuper
	}
	if target.IsApproved {
		return ErrAlreadyApproved
	}

	target.Role = role
	target.IsApproved = true
	target.IsActive = true
	target.Normalize()
	return nil
}

// Reject 校验拒绝申请（硬删除由调用方执行）
func Reject(a Actor, target *model.User) error {
	if err := CanManageUsers(a); err != nil {
		return err
	}
	if target.Role.IsSuperAdmin() {
		return ErrCannotRejectSuper
	}
	if target.IsApproved {
		return ErrRejectApproved
	}
	return nil
}

// ToggleActive 切换已审批用户的启用状态
func ToggleActive(a Actor, target *model.User) error {
	if err := CanManageUsers(a); err != nil {
		return err
	}
	if target.Role.IsSuperAdmin() {
		return ErrCannotToggleSuper
	}
	if !target.IsApproved {
		return ErrToggleUnapproved
	}
	target.IsActive = !target.IsActive
	return nil
}

// SoftDelete 软删除用户；之后所有默认查询都看不到该用户
func SoftDelete(a Actor, target *model.User, now time.Time) error {
	if err := CanManageUsers(a); err != nil {
		return err
	}
	if target.Role.IsSuperAdmin() {
		return ErrCannotModifySuper
	}
	target.DeletedAt = &now
	target.IsActive = false
	return nil
}
