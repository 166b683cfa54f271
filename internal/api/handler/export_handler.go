package handler

import (
	"bytes"

	"github.com/gin-gonic/gin"

	"classroom-timetable/internal/service"
	"classroom-timetable/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	timetableSvc service.TimetableService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(timetableSvc service.TimetableService) *ExportHandler {
	return &ExportHandler{timetableSvc: timetableSvc}
}

// ExportTimetable 导出课表为 xlsx
// GET /api/v1/timetables/:id/export
func (h *ExportHandler) ExportTimetable(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	file, err := h.timetableSvc.Export(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	response.Attachment(c, bytes.NewBuffer(file.Content), file.Filename, file.ContentType)
}
