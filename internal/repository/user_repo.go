package repository

import (
	"context"

	"gorm.io/gorm"

	"classroom-timetable/internal/model"
)

// UserListFilter 用户列表筛选条件；nil 字段不参与筛选
type UserListFilter struct {
	Role              *model.Role
	IsApproved        *bool
	IsActive          *bool
	ExcludeSuperAdmin bool
}

// UserRepository 用户数据访问接口
// 所有读取默认排除已软删除的用户
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUserID(ctx context.Context, userID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	HardDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserListFilter, offset, limit int) ([]model.User, int64, error)
	Count(ctx context.Context, filter UserListFilter) (int64, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

// live 排除软删除记录
func live(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

func (f UserListFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Role != nil {
		db = db.Where("role = ?", *f.Role)
	}
	if f.IsApproved != nil {
		db = db.Where("is_approved = ?", *f.IsApproved)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.ExcludeSuperAdmin {
		db = db.Where("role <> ?", model.RoleSuperAdmin)
	}
	return db
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	user.Normalize()
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepo) GetByUserID(ctx context.Context, userID string) (*model.User, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepo) first(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Scopes(live).
		Where(query, arg).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	user.Normalize()
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepo) HardDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.User{}).Error
}

func (r *userRepo) List(ctx context.Context, filter UserListFilter, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := filter.apply(r.db.WithContext(ctx).Model(&model.User{}).Scopes(live))

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepo) Count(ctx context.Context, filter UserListFilter) (int64, error) {
	var total int64
	err := filter.apply(r.db.WithContext(ctx).Model(&model.User{}).Scopes(live)).
		Count(&total).Error
	return total, err
}
