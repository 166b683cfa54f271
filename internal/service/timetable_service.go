package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"classroom-timetable/internal/dto"
	"classroom-timetable/internal/model"
	"classroom-timetable/internal/policy"
	"classroom-timetable/internal/repository"
	apperr "classroom-timetable/pkg/errors"
)

// ── 课表模块业务错误 ──

var (
	ErrTimetableNotFound     = apperr.New(apperr.KindNotFound, 14012, "Timetable not found")
	ErrCellNotFound          = apperr.New(apperr.KindNotFound, 14013, "Cell not found")
	ErrTimetableExists       = apperr.New(apperr.KindConflict, 14014, "Timetable already exists for this room and class")
	ErrInvalidDays           = apperr.New(apperr.KindValidation, 14015, "Days must be 1 to 7 distinct weekday names")
	ErrInvalidPeriods        = apperr.New(apperr.KindValidation, 14016, "Periods per day must be between 1 and 20")
	ErrTimetableFields       = apperr.New(apperr.KindValidation, 14017, "Please provide all required fields")
	ErrTimetableDeleteFailed = apperr.New(apperr.KindIntegrity, 14018, "Failed to delete timetable")
	ErrExportFailed          = apperr.New(apperr.KindInternal, 14019, "Failed to generate export")
	ErrInvalidTimetableID    = apperr.New(apperr.KindValidation, 14020, "Invalid timetable ID")
	ErrInvalidCellID         = apperr.New(apperr.KindValidation, 14021, "Invalid cell ID")
)

// ── TimetableService 接口 ──────────────────────────────────
//
// 设计说明：
//   - 创建课表时在同一事务中写入课表与 |days| × periods 个空单元格。
//   - 修改单元格在事务内 SELECT ... FOR UPDATE，同一单元格的并发修改串行执行，
//     语义仍为后写覆盖。
//   - 删除课表在同一事务中先删单元格再删课表，失败时整体回滚。
// ─────────────────────────────────────────────────────────────

// TimetableService 课表模块业务接口
type TimetableService interface {
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateTimetableRequest) (*dto.TimetableResponse, error)
	List(ctx context.Context, actor policy.Actor, page dto.PaginationRequest) (*dto.PageResult[dto.TimetableResponse], error)
	Get(ctx context.Context, actor policy.Actor, id string) (*dto.TimetableDetailResponse, error)
	EditCell(ctx context.Context, actor policy.Actor, cellID string, req *dto.UpdateCellRequest) (*dto.CellResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id string) error
	// Export 导出为 xlsx 工作簿
	Export(ctx context.Context, actor policy.Actor, id string) (*dto.ExportFile, error)
}

type timetableService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(repo *repository.Repository, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, logger: logger, now: time.Now}
}

// ════════════════════════════════════════════════════════════
// Create — 创建课表
// ════════════════════════════════════════════════════════════

func (s *timetableService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateTimetableRequest) (*dto.TimetableResponse, error) {
	if err := policy.CanCreateTimetable(actor); err != nil {
		return nil, err
	}

	roomName := strings.TrimSpace(req.RoomName)
	className := strings.TrimSpace(req.ClassName)
	if roomName == "" || className == "" {
		return nil, ErrTimetableFields
	}
	if err := validateDays(req.Days); err != nil {
		return nil, err
	}
	if req.PeriodsPerDay < model.MinPeriodsPerDay || req.PeriodsPerDay > model.MaxPeriodsPerDay {
		return nil, ErrInvalidPeriods
	}

	if _, err := s.repo.Timetable.GetByRoomAndClass(ctx, roomName, className); err == nil {
		return nil, ErrTimetableExists
	} else if !repository.IsNotFound(err) {
		return nil, internal(s.logger, "查询课表失败", err)
	}

	timetable := &model.Timetable{
		ID:            uuid.New().String(),
		RoomName:      roomName,
		ClassName:     className,
		Days:          append([]string(nil), req.Days...),
		PeriodsPerDay: req.PeriodsPerDay,
		CreatedBy:     actor.ID,
	}
	cells := timetable.NewGrid()
	for i := range cells {
		cells[i].ID = uuid.New().String()
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Timetable.Create(ctx, timetable); err != nil {
			return err
		}
		return tx.Cell.BatchCreate(ctx, cells)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTimetableExists
		}
		return nil, internal(s.logger, "创建课表失败", err,
			zap.String("room_name", roomName),
			zap.String("class_name", className),
		)
	}

	s.logger.Info("课表已创建",
		zap.String("timetable_id", timetable.ID),
		zap.Int("cells", len(cells)),
		zap.String("by", actor.ID),
	)

	timetable.Creator = &model.User{ID: actor.ID, Name: actor.Name, Role: actor.Role, Department: actor.Department}
	resp := dto.NewTimetableResponse(timetable)
	return &resp, nil
}

// validateDays 1–7 个不重复的合法星期名称
func validateDays(days []string) error {
	if len(days) == 0 || len(days) > model.MaxDays {
		return ErrInvalidDays
	}
	seen := make(map[string]struct{}, len(days))
	for _, d := range days {
		if !model.IsWeekday(d) {
			return ErrInvalidDays
		}
		if _, dup := seen[d]; dup {
			return ErrInvalidDays
		}
		seen[d] = struct{}{}
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// List / Get — 查询
// ════════════════════════════════════════════════════════════

func (s *timetableService) List(ctx context.Context, actor policy.Actor, page dto.PaginationRequest) (*dto.PageResult[dto.TimetableResponse], error) {
	if err := policy.CanView(actor); err != nil {
		return nil, err
	}

	p, size, offset := page.Resolve()
	timetables, total, err := s.repo.Timetable.List(ctx, offset, size)
	if err != nil {
		return nil, internal(s.logger, "查询课表列表失败", err)
	}

	list := make([]dto.TimetableResponse, 0, len(timetables))
	for i := range timetables {
		list = append(list, dto.NewTimetableResponse(&timetables[i]))
	}
	return &dto.PageResult[dto.TimetableResponse]{List: list, Total: total, Page: p, PageSize: size}, nil
}

func (s *timetableService) Get(ctx context.Context, actor policy.Actor, id string) (*dto.TimetableDetailResponse, error) {
	if err := policy.CanView(actor); err != nil {
		return nil, err
	}

	timetable, cells, err := s.loadWithCells(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.TimetableDetailResponse{
		Timetable: dto.NewTimetableResponse(timetable),
		Cells:     make([]dto.CellResponse, 0, len(cells)),
	}
	for i := range cells {
		resp.Cells = append(resp.Cells, dto.NewCellResponse(&cells[i]))
	}
	return resp, nil
}

// loadWithCells 加载课表及单元格，单元格按课表星期顺序、节次升序排列
func (s *timetableService) loadWithCells(ctx context.Context, id string) (*model.Timetable, []model.Cell, error) {
	timetable, err := s.loadTimetable(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	cells, err := s.repo.Cell.ListByTimetable(ctx, timetable.ID)
	if err != nil {
		return nil, nil, internal(s.logger, "查询单元格失败", err, zap.String("timetable_id", id))
	}
	sort.SliceStable(cells, func(i, j int) bool {
		di, dj := timetable.DayIndex(cells[i].Day), timetable.DayIndex(cells[j].Day)
		if di != dj {
			return di < dj
		}
		return cells[i].Period < cells[j].Period
	})
	return timetable, cells, nil
}

func (s *timetableService) loadTimetable(ctx context.Context, id string) (*model.Timetable, error) {
	if !validID(id) {
		return nil, ErrInvalidTimetableID
	}
	timetable, err := s.repo.Timetable.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTimetableNotFound
		}
		return nil, internal(s.logger, "查询课表失败", err, zap.String("timetable_id", id))
	}
	return timetable, nil
}

// ════════════════════════════════════════════════════════════
// EditCell — 修改单元格
// ════════════════════════════════════════════════════════════

func (s *timetableService) EditCell(ctx context.Context, actor policy.Actor, cellID string, req *dto.UpdateCellRequest) (*dto.CellResponse, error) {
	if err := policy.CanEditCells(actor); err != nil {
		return nil, err
	}
	if !validID(cellID) {
		return nil, ErrInvalidCellID
	}

	edit := policy.EditRequest{Subject: req.Subject, Department: req.Department}
	var updated *model.Cell

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		cell, err := tx.Cell.GetByIDForUpdate(ctx, cellID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrCellNotFound
			}
			return err
		}
		if err := policy.Edit(actor, cell, edit, s.now().UTC()); err != nil {
			return err
		}
		if err := tx.Cell.Update(ctx, cell); err != nil {
			return err
		}
		updated = cell
		return nil
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, internal(s.logger, "修改单元格失败", err, zap.String("cell_id", cellID))
	}

	resp := dto.NewCellResponse(updated)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// Delete — 删除课表
// ════════════════════════════════════════════════════════════

func (s *timetableService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	timetable, err := s.loadTimetable(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanDeleteTimetable(actor, timetable); err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Cell.DeleteByTimetable(ctx, timetable.ID); err != nil {
			return err
		}
		return tx.Timetable.Delete(ctx, timetable.ID)
	})
	if err != nil {
		s.logger.Error("删除课表失败，已回滚",
			zap.String("timetable_id", timetable.ID),
			zap.Error(err),
		)
		return ErrTimetableDeleteFailed.Wrap(err)
	}

	s.logger.Info("课表已删除", zap.String("timetable_id", timetable.ID), zap.String("by", actor.ID))
	return nil
}
