package dto

import (
	"time"

	"classroom-timetable/internal/model"
)

// ── 课表模块 DTO ──

// CreateTimetableRequest 创建课表请求
type CreateTimetableRequest struct {
	RoomName      string   `json:"room_name"       binding:"required,max=100"`
	ClassName     string   `json:"class_name"      binding:"required,max=100"`
	Days          []string `json:"days"            binding:"required,min=1,max=7,unique,dive,weekday"`
	PeriodsPerDay int      `json:"periods_per_day" binding:"required,min=1,max=20"`
}

// UpdateCellRequest 修改单元格请求；未提供的字段保持不变
type UpdateCellRequest struct {
	Subject    *string           `json:"subject"    binding:"omitempty,max=200"`
	Department *model.Department `json:"department" binding:"omitempty,department"`
}

// CreatorSummary 课表创建者摘要
type CreatorSummary struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Role       model.Role       `json:"role"`
	Department model.Department `json:"department"`
}

// TimetableResponse 课表信息
type TimetableResponse struct {
	ID            string          `json:"id"`
	RoomName      string          `json:"room_name"`
	ClassName     string          `json:"class_name"`
	Days          []string        `json:"days"`
	PeriodsPerDay int             `json:"periods_per_day"`
	CreatedBy     string          `json:"created_by"`
	Creator       *CreatorSummary `json:"creator,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewTimetableResponse 由课表记录构造响应
func NewTimetableResponse(t *model.Timetable) TimetableResponse {
	resp := TimetableResponse{
		ID:            t.ID,
		RoomName:      t.RoomName,
		ClassName:     t.ClassName,
		Days:          append([]string(nil), t.Days...),
		PeriodsPerDay: t.PeriodsPerDay,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.Creator != nil {
		resp.Creator = &CreatorSummary{
			ID:         t.Creator.ID,
			Name:       t.Creator.Name,
			Role:       t.Creator.Role,
			Department: t.Creator.Department,
		}
	}
	return resp
}

// CellResponse 单元格信息
type CellResponse struct {
	ID             string                   `json:"id"`
	TimetableID    string                   `json:"timetable_id"`
	Day            string                   `json:"day"`
	Period         int                      `json:"period"`
	Subject        string                   `json:"subject"`
	Department     model.Department         `json:"department"`
	EditableByRole string                   `json:"editable_by_role"`
	History        []model.CellHistoryEntry `json:"history"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// NewCellResponse 由单元格记录构造响应
func NewCellResponse(c *model.Cell) CellResponse {
	history := make([]model.CellHistoryEntry, 0, len(c.History))
	history = append(history, c.History...)
	return CellResponse{
		ID:             c.ID,
		TimetableID:    c.TimetableID,
		Day:            c.Day,
		Period:         c.Period,
		Subject:        c.Subject,
		Department:     c.Department,
		EditableByRole: c.EditableByRole,
		History:        history,
		UpdatedAt:      c.UpdatedAt,
	}
}

// TimetableDetailResponse 课表及其全部单元格
type TimetableDetailResponse struct {
	Timetable TimetableResponse `json:"timetable"`
	Cells     []CellResponse    `json:"cells"`
}

// ExportFile 导出文件
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
