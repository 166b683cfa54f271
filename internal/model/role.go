package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Department 院系标识
// 既是用户属性，也是单元格的归属标记；NONE 表示未归属（单元格未被认领）
type Department string

const (
	DepartmentNone Department = "NONE"
	DepartmentCS   Department = "CS"
	DepartmentECE  Department = "ECE"
	DepartmentIT   Department = "IT"
	DepartmentMNC  Department = "MNC"
	DepartmentML   Department = "ML"
)

// Departments 可认领单元格的院系（不含 NONE），顺序即展示顺序
var Departments = []Department{
	DepartmentCS,
	DepartmentECE,
	DepartmentIT,
	DepartmentMNC,
	DepartmentML,
}

// Valid 是否为合法院系值（含 NONE）
func (d Department) Valid() bool {
	return d == DepartmentNone || d.Claimable()
}

// Claimable 是否为具体院系（可拥有单元格、可作为管理员角色后缀）
func (d Department) Claimable() bool {
	for _, dept := range Departments {
		if d == dept {
			return true
		}
	}
	return false
}

// IsNone 是否未归属
func (d Department) IsNone() bool { return d == DepartmentNone }

// ParseDepartment 解析外部输入的院系字符串
func ParseDepartment(s string) (Department, error) {
	d := Department(strings.TrimSpace(s))
	if !d.Valid() {
		return "", fmt.Errorf("%q is not a valid department", s)
	}
	return d, nil
}

// ── Role ──

// RoleKind 角色种类
type RoleKind uint8

const (
	KindPending RoleKind = iota
	KindUser
	KindAdmin
	KindSuperAdmin
)

func (k RoleKind) String() string {
	switch k {
	case KindUser:
		return "USER"
	case KindAdmin:
		return "ADMIN"
	case KindSuperAdmin:
		return "SUPER_ADMIN"
	default:
		return "PENDING"
	}
}

// Role 用户角色：Pending | User | Admin(Department) | SuperAdmin
//
// 院系管理员的院系是角色本身的一部分，业务代码通过 Kind / AdminDepartment
// 判断角色语义，字符串形式（"ADMIN_CS" 等）只在 JSON、数据库列和配置边界出现。
// 零值为 Pending。
type Role struct {
	kind RoleKind
	dept Department
}

var (
	RolePending    = Role{kind: KindPending}
	RoleUser       = Role{kind: KindUser}
	RoleSuperAdmin = Role{kind: KindSuperAdmin}
)

const adminPrefix = "ADMIN_"

// AdminRole 构造院系管理员角色；dept 必须是具体院系
func AdminRole(dept Department) Role {
	if !dept.Claimable() {
		panic(fmt.Sprintf("model: AdminRole requires a concrete department, got %q", dept))
	}
	return Role{kind: KindAdmin, dept: dept}
}

// AllRoles 全部角色（测试与枚举校验用）
func AllRoles() []Role {
	roles := []Role{RolePending, RoleUser, RoleSuperAdmin}
	for _, d := range Departments {
		roles = append(roles, AdminRole(d))
	}
	return roles
}

// ParseRole 解析角色字符串
func ParseRole(s string) (Role, error) {
	switch s = strings.TrimSpace(s); s {
	case "PENDING":
		return RolePending, nil
	case "USER":
		return RoleUser, nil
	case "SUPER_ADMIN":
		return RoleSuperAdmin, nil
	}
	if strings.HasPrefix(s, adminPrefix) {
		dept := Department(strings.TrimPrefix(s, adminPrefix))
		if dept.Claimable() {
			return Role{kind: KindAdmin, dept: dept}, nil
		}
	}
	return Role{}, fmt.Errorf("%q is not a valid role", s)
}

// Kind 角色种类
func (r Role) Kind() RoleKind { return r.kind }

func (r Role) IsPending() bool    { return r.kind == KindPending }
func (r Role) IsUser() bool       { return r.kind == KindUser }
func (r Role) IsAdmin() bool      { return r.kind == KindAdmin }
func (r Role) IsSuperAdmin() bool { return r.kind == KindSuperAdmin }

// AdminDepartment 管理员所属院系；非管理员返回 false
func (r Role) AdminDepartment() (Department, bool) {
	if r.kind != KindAdmin {
		return "", false
	}
	return r.dept, true
}

// ImpliedDepartment 角色决定的用户院系：ADMIN_X → X，其余 → NONE
func (r Role) ImpliedDepartment() Department {
	if r.kind == KindAdmin {
		return r.dept
	}
	return DepartmentNone
}

func (r Role) String() string {
	if r.kind == KindAdmin {
		return adminPrefix + string(r.dept)
	}
	return r.kind.String()
}

// MarshalText JSON 序列化为角色字符串
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText JSON 反序列化
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value 写入数据库 varchar 列
func (r Role) Value() (driver.Value, error) {
	return r.String(), nil
}

// Scan 从数据库 varchar 列读取
func (r *Role) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*r = RolePending
		return nil
	default:
		return fmt.Errorf("Role.Scan: unsupported type %T", src)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return fmt.Errorf("Role.Scan: %w", err)
	}
	*r = parsed
	return nil
}
