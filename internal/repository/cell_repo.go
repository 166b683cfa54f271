package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"classroom-timetable/internal/model"
)

// cellBatchSize 批量插入单元格的分批大小（7 天 × 20 节 = 140 为上限）
const cellBatchSize = 100

// CellRepository 课表单元格数据访问接口
type CellRepository interface {
	BatchCreate(ctx context.Context, cells []model.Cell) error
	GetByID(ctx context.Context, id string) (*model.Cell, error)
	// GetByIDForUpdate 读取并锁定单元格（SELECT ... FOR UPDATE），须在事务中调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.Cell, error)
	ListByTimetable(ctx context.Context, timetableID string) ([]model.Cell, error)
	Update(ctx context.Context, cell *model.Cell) error
	DeleteByTimetable(ctx context.Context, timetableID string) error
}

type cellRepo struct {
	db *gorm.DB
}

func NewCellRepo(db *gorm.DB) CellRepository {
	return &cellRepo{db: db}
}

func (r *cellRepo) BatchCreate(ctx context.Context, cells []model.Cell) error {
	if len(cells) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(&cells, cellBatchSize).Error)
}

func (r *cellRepo) GetByID(ctx context.Context, id string) (*model.Cell, error) {
	var cell model.Cell
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cell).Error; err != nil {
		return nil, err
	}
	return &cell, nil
}

func (r *cellRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Cell, error) {
	var cell model.Cell
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&cell).Error
	if err != nil {
		return nil, err
	}
	return &cell, nil
}

// ListByTimetable 按节次排序返回；星期顺序由调用方按课表 Days 排列
func (r *cellRepo) ListByTimetable(ctx context.Context, timetableID string) ([]model.Cell, error) {
	var cells []model.Cell
	err := r.db.WithContext(ctx).
		Where("timetable_id = ?", timetableID).
		Order("period ASC").
		Find(&cells).Error
	return cells, err
}

func (r *cellRepo) Update(ctx context.Context, cell *model.Cell) error {
	return r.db.WithContext(ctx).
		Model(cell).
		Select("subject", "department", "editable_by_role", "history", "updated_at").
		Updates(cell).Error
}

func (r *cellRepo) DeleteByTimetable(ctx context.Context, timetableID string) error {
	return r.db.WithContext(ctx).
		Where("timetable_id = ?", timetableID).
		Delete(&model.Cell{}).Error
}
