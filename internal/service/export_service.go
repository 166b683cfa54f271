package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"classroom-timetable/internal/dto"
	"classroom-timetable/internal/model"
	"classroom-timetable/internal/policy"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export 将课表渲染为 xlsx：列为星期，行为节次，单元格为 "科目 [院系]"
func (s *timetableService) Export(ctx context.Context, actor policy.Actor, id string) (*dto.ExportFile, error) {
	if err := policy.CanView(actor); err != nil {
		return nil, err
	}

	timetable, cells, err := s.loadWithCells(ctx, id)
	if err != nil {
		return nil, err
	}

	buf, err := renderWorkbook(timetable, cells)
	if err != nil {
		s.logger.Error("生成课表 Excel 失败", zap.String("timetable_id", id), zap.Error(err))
		return nil, ErrExportFailed.Wrap(err)
	}

	return &dto.ExportFile{
		Filename:    exportFilename(timetable),
		ContentType: xlsxContentType,
		Content:     buf.Bytes(),
	}, nil
}

func renderWorkbook(timetable *model.Timetable, cells []model.Cell) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Timetable"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	lastCol := colName(len(timetable.Days))
	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", lastCol, 22)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	bodyStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s / %s", timetable.RoomName, timetable.ClassName))
	f.MergeCell(sheetName, "A1", cellRef(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", cellRef(lastCol, 1), headerStyle)

	// 表头
	f.SetCellValue(sheetName, "A2", "Period")
	for i, day := range timetable.Days {
		f.SetCellValue(sheetName, cellRef(colName(i+1), 2), day)
	}
	f.SetCellStyle(sheetName, "A2", cellRef(lastCol, 2), headerStyle)

	// 数据行：第 period 节位于第 period+2 行
	for period := 1; period <= timetable.PeriodsPerDay; period++ {
		f.SetCellValue(sheetName, cellRef("A", period+2), period)
	}
	for _, c := range cells {
		col := timetable.DayIndex(c.Day)
		if col < 0 || c.Period < 1 || c.Period > timetable.PeriodsPerDay {
			continue
		}
		f.SetCellValue(sheetName, cellRef(colName(col+1), c.Period+2), cellText(&c))
	}
	f.SetCellStyle(sheetName, "A3", cellRef(lastCol, timetable.PeriodsPerDay+2), bodyStyle)

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// cellText 空单元格输出空串；已认领单元格附带院系
func cellText(c *model.Cell) string {
	if c.Department.IsNone() {
		return c.Subject
	}
	if c.Subject == "" {
		return fmt.Sprintf("[%s]", c.Department)
	}
	return fmt.Sprintf("%s [%s]", c.Subject, c.Department)
}

func exportFilename(t *model.Timetable) string {
	name := strings.NewReplacer(" ", "_", "/", "-", "\\", "-").Replace(t.RoomName + "_" + t.ClassName)
	return fmt.Sprintf("timetable_%s.xlsx", name)
}

// ── 辅助函数 ──

// colName 0 起始列号转列名（0 → A）
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cellRef(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
