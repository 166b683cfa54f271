package model

import (
	"time"

	"gorm.io/datatypes"
)

// MaxCellHistory 单元格保留的历史条数上限
const MaxCellHistory = 2

// EditableByAll 未认领单元格的 editable_by_role 取值
const EditableByAll = "ALL"

// CellHistoryEntry 单元格科目的一次历史值
type CellHistoryEntry struct {
	PreviousValue string    `json:"previous_value"`
	EditedBy      string    `json:"edited_by"`
	EditedByName  string    `json:"edited_by_name"`
	Timestamp     time.Time `json:"timestamp"`
}

// Cell 课表单元格 — 对应 timetable_cells
// (timetable_id, day, period) 唯一；History 最新在前，最多 MaxCellHistory 条
type Cell struct {
	ID             string                                 `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TimetableID    string                                 `gorm:"type:uuid;not null"                             json:"timetable_id"`
	Day            string                                 `gorm:"type:varchar(10);not null"                      json:"day"`
	Period         int                                    `gorm:"not null"                                       json:"period"`
	Subject        string                                 `gorm:"type:varchar(200);not null;default:''"          json:"subject"`
	Department     Department                             `gorm:"type:varchar(10);not null;default:'NONE'"       json:"department"`
	EditableByRole string                                 `gorm:"type:varchar(20);not null;default:'ALL'"        json:"editable_by_role"`
	History        datatypes.JSONSlice[CellHistoryEntry] `gorm:"type:jsonb;not null;default:'[]'"               json:"history"`
	BaseModel
}

// TableName 指定表名
func (Cell) TableName() string { return "timetable_cells" }

// NewCell 创建空的未认领单元格
func NewCell(timetableID, day string, period int) Cell {
	return Cell{
		TimetableID:    timetableID,
		Day:            day,
		Period:         period,
		Department:     DepartmentNone,
		EditableByRole: EditableByRole(DepartmentNone),
		History:        datatypes.JSONSlice[CellHistoryEntry]{},
	}
}

// EditableByRole 由归属院系推导：NONE → "ALL"，X → "ADMIN_X"
func EditableByRole(d Department) string {
	if !d.Claimable() {
		return EditableByAll
	}
	return AdminRole(d).String()
}

// SetDepartment 设置归属院系并同步 EditableByRole
func (c *Cell) SetDepartment(d Department) {
	c.Department = d
	c.EditableByRole = EditableByRole(d)
}

// RecordHistory 将一条历史插入最前并截断到 MaxCellHistory
func (c *Cell) RecordHistory(entry CellHistoryEntry) {
	history := make(datatypes.JSONSlice[CellHistoryEntry], 0, MaxCellHistory)
	history = append(history, entry)
	for _, h := range c.History {
		if len(history) == MaxCellHistory {
			break
		}
		history = append(history, h)
	}
	c.History = history
}
