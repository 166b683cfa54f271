package repository

import (
	"context"

	"gorm.io/gorm"

	"classroom-timetable/internal/model"
)

// TimetableRepository 课表数据访问接口
type TimetableRepository interface {
	Create(ctx context.Context, timetable *model.Timetable) error
	GetByID(ctx context.Context, id string) (*model.Timetable, error)
	GetByRoomAndClass(ctx context.Context, roomName, className string) (*model.Timetable, error)
	List(ctx context.Context, offset, limit int) ([]model.Timetable, int64, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
}

type timetableRepo struct {
	db *gorm.DB
}

func NewTimetableRepo(db *gorm.DB) TimetableRepository {
	return &timetableRepo{db: db}
}

// withCreator 预加载创建者（不存在时保持 nil）
func withCreator(db *gorm.DB) *gorm.DB {
	return db.Preload("Creator", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "user_id", "name", "role", "department")
	})
}

func (r *timetableRepo) Create(ctx context.Context, timetable *model.Timetable) error {
	return translate(r.db.WithContext(ctx).Omit("Creator").Create(timetable).Error)
}

func (r *timetableRepo) GetByID(ctx context.Context, id string) (*model.Timetable, error) {
	var timetable model.Timetable
	err := r.db.WithContext(ctx).
		Scopes(withCreator).
		Where("id = ?", id).
		First(&timetable).Error
	if err != nil {
		return nil, err
	}
	return &timetable, nil
}

func (r *timetableRepo) GetByRoomAndClass(ctx context.Context, roomName, className string) (*model.Timetable, error) {
	var timetable model.Timetable
	err := r.db.WithContext(ctx).
		Where("room_name = ? AND class_name = ?", roomName, className).
		First(&timetable).Error
	if err != nil {
		return nil, err
	}
	return &timetable, nil
}

func (r *timetableRepo) List(ctx context.Context, offset, limit int) ([]model.Timetable, int64, error) {
	var timetables []model.Timetable
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Timetable{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Scopes(withCreator).
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&timetables).Error; err != nil {
		return nil, 0, err
	}

	return timetables, total, nil
}

func (r *timetableRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Timetable{}).Count(&total).Error
	return total, err
}

func (r *timetableRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Timetable{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
