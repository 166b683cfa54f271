package model

import (
	"strings"
	"time"
)

// User 用户表 — 对应 users
type User struct {
	ID           string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       string     `gorm:"column:user_id;type:varchar(50);not null"       json:"user_id"` // 登录用的外部标识
	Name         string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string     `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"role"`
	Department   Department `gorm:"type:varchar(10);not null;default:'NONE'"      json:"department"`
	IsApproved   bool       `gorm:"not null;default:false"                         json:"is_approved"`
	IsActive     bool       `gorm:"not null;default:true"                          json:"is_active"`
	DeletedAt    *time.Time `gorm:"index"                                          json:"-"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// Normalize 写入前的规范化，所有写路径（Create / Update）都会调用
//
// 院系始终由角色决定：SUPER_ADMIN / USER / PENDING → NONE，ADMIN_X → X。
// 与审批接口不同，这里是自我修正而不是拒绝。
func (u *User) Normalize() {
	u.UserID = strings.TrimSpace(u.UserID)
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Department = u.Role.ImpliedDepartment()
}

// IsDeleted 是否已软删除
func (u *User) IsDeleted() bool { return u.DeletedAt != nil }
