package policy

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"classroom-timetable/internal/model"
)

// MaxSubjectLength 科目名称最大字符数
const MaxSubjectLength = 200

// EditRequest 单元格修改请求；nil 字段表示未提供
type EditRequest struct {
	Subject    *string
	Department *model.Department
}

// Authorize 判断 actor 能否按 req 修改 cell，不修改 cell
//
// 对 ADMIN_X：
//  1. 单元格归属其他院系 → 拒绝
//  2. 单元格未认领，且请求把它分配给 NONE / X 以外的院系 → 拒绝
//  3. 单元格归属 X，且请求改为 X 以外（含 NONE）→ 拒绝，已认领单元格不能释放或转让
func Authorize(a Actor, cell *model.Cell, req EditRequest) error {
	if err := CanEditCells(a); err != nil {
		return err
	}
	if req.Department != nil && !req.Department.Valid() {
		return ErrInvalidDepartment
	}
	if req.Subject != nil && utf8.RuneCountInString(strings.TrimSpace(*req.Subject)) > MaxSubjectLength {
		return ErrSubjectTooLong
	}

	own, _ := a.Role.AdminDepartment()
	switch {
	case !cell.Department.IsNone() && cell.Department != own:
		return ErrCellOwnedByOther.WithMessage(fmt.Sprintf("Only %s admin can edit this cell", cell.Department))
	case cell.Department.IsNone() && req.Department != nil && !req.Department.IsNone() && *req.Department != own:
		return ErrAssignOtherDept
	case cell.Department == own && req.Department != nil && *req.Department != own:
		return ErrReleaseClaimed
	}
	return nil
}

// Apply 将已授权的修改写入 cell
// 科目去除首尾空白；仅当科目实际变化且旧值非空时记录历史
func Apply(a Actor, cell *model.Cell, req EditRequest, now time.Time) {
	if req.Subject != nil {
		next := strings.TrimSpace(*req.Subject)
		if next != cell.Subject {
			if cell.Subject != "" {
				cell.RecordHistory(model.CellHistoryEntry{
					PreviousValue: cell.Subject,
					EditedBy:      a.ID,
					EditedByName:  a.Name,
					Timestamp:     now,
				})
			}
			cell.Subject = next
		}
	}
	if req.Department != nil {
		cell.SetDepartment(*req.Department)
	}
}

// Edit Authorize + Apply
func Edit(a Actor, cell *model.Cell, req EditRequest, now time.Time) error {
	if err := Authorize(a, cell, req); err != nil {
		return err
	}
	Apply(a, cell, req, now)
	return nil
}
