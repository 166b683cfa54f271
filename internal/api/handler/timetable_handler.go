package handler

import (
	"github.com/gin-gonic/gin"

	"classroom-timetable/internal/dto"
	"classroom-timetable/internal/service"
	"classroom-timetable/pkg/response"
)

// TimetableHandler 课表模块 Handler
type TimetableHandler struct {
	svc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler 实例
func NewTimetableHandler(svc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{svc: svc}
}

// CreateTimetable 创建课表并生成全部空单元格
// POST /api/v1/timetables
func (h *TimetableHandler) CreateTimetable(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, "Room timetable created successfully", resp)
}

// ListTimetables 课表列表
// GET /api/v1/timetables
func (h *TimetableHandler) ListTimetables(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.svc.List(c.Request.Context(), actor, page)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// GetTimetable 课表详情（含单元格）
// GET /api/v1/timetables/:id
func (h *TimetableHandler) GetTimetable(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, resp)
}

// UpdateCell 修改单元格科目 / 院系
// PUT /api/v1/timetables/cell/:cellId
func (h *TimetableHandler) UpdateCell(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UpdateCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	cell, err := h.svc.EditCell(c.Request.Context(), actor, c.Param("cellId"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "Cell updated successfully", cell)
}

// DeleteTimetable 删除课表及其单元格
// DELETE /api/v1/timetables/:id
func (h *TimetableHandler) DeleteTimetable(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "Timetable deleted successfully", nil)
}
