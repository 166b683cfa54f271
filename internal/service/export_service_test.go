package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"classroom-timetable/internal/model"
	"classroom-timetable/internal/policy"
)

func TestCellText(t *testing.T) {
	tests := []struct {
		name string
		cell model.Cell
		want string
	}{
		{"空单元格", model.Cell{Department: model.DepartmentNone}, ""},
		{"未认领有科目", model.Cell{Subject: "Math", Department: model.DepartmentNone}, "Math"},
		{"已认领有科目", model.Cell{Subject: "Math", Department: model.DepartmentCS}, "Math [CS]"},
		{"已认领无科目", model.Cell{Department: model.DepartmentML}, "[ML]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cellText(&tt.cell); got != tt.want {
				t.Errorf("期望 %q，实际 %q", tt.want, got)
			}
		})
	}
}

func TestExportFilename_Sanitized(t *testing.T) {
	got := exportFilename(&model.Timetable{RoomName: "Lab 2/B", ClassName: "CS\\A"})
	if got != "timetable_Lab_2-B_CS-A.xlsx" {
		t.Errorf("文件名不符: %s", got)
	}
}

func TestRenderWorkbook_Layout(t *testing.T) {
	tt := &model.Timetable{
		RoomName:      "R1",
		ClassName:     "C1",
		Days:          []string{"Wednesday", "Monday"},
		PeriodsPerDay: 2,
	}
	cells := []model.Cell{
		{Day: "Monday", Period: 2, Subject: "Physics", Department: model.DepartmentECE},
		{Day: "Wednesday", Period: 1, Subject: "Math", Department: model.DepartmentNone},
		// 不属于该课表星期的单元格被忽略
		{Day: "Sunday", Period: 1, Subject: "Ghost", Department: model.DepartmentCS},
	}

	buf, err := renderWorkbook(tt, cells)
	if err != nil {
		t.Fatalf("renderWorkbook 失败: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("无法解析 xlsx: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "Timetable" {
		t.Errorf("应只有 Timetable 工作表，实际 %v", sheets)
	}

	want := map[string]string{
		"A1": "R1 / C1",
		"A2": "Period",
		"B2": "Wednesday",
		"C2": "Monday",
		"A3": "1",
		"A4": "2",
		"B3": "Math",
		"C4": "Physics [ECE]",
		"C3": "",
		"D3": "",
	}
	for ref, v := range want {
		if got, _ := f.GetCellValue("Timetable", ref); got != v {
			t.Errorf("%s 期望 %q，实际 %q", ref, v, got)
		}
	}
}

func TestExport_ThroughService(t *testing.T) {
	svc, repos := setupTestTimetableService()
	cs := adminActor(repos, "A1", model.DepartmentCS)
	tt := createR1C1(t, svc, cs)
	ctx := context.Background()

	if _, err := svc.Export(ctx, policy.Actor{Role: model.RolePending, IsActive: true}, tt.ID); !errors.Is(err, policy.ErrViewDenied) {
		t.Errorf("PENDING 用户不应能导出，实际 %v", err)
	}
	if _, err := svc.Export(ctx, cs, "not-a-uuid"); !errors.Is(err, ErrInvalidTimetableID) {
		t.Errorf("非法 ID 应返回 ErrInvalidTimetableID，实际 %v", err)
	}

	file, err := svc.Export(ctx, cs, tt.ID)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if file.Filename != "timetable_R1_C1.xlsx" {
		t.Errorf("文件名不符: %s", file.Filename)
	}
	if file.ContentType != xlsxContentType {
		t.Errorf("Content-Type 不符: %s", file.ContentType)
	}
	f, err := excelize.OpenReader(bytes.NewReader(file.Content))
	if err != nil {
		t.Fatalf("无法解析 xlsx: %v", err)
	}
	defer f.Close()
	if got, _ := f.GetCellValue("Timetable", "C2"); got != "Tuesday" {
		t.Errorf("C2 期望 Tuesday，实际 %q", got)
	}
}
