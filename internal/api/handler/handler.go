package handler

import (
	"classroom-timetable/config"
	"classroom-timetable/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	Admin     *AdminHandler
	Timetable *TimetableHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth, &cfg.Auth),
		Admin:     NewAdminHandler(svc.Approval, svc.Timetable),
		Timetable: NewTimetableHandler(svc.Timetable),
		Export:    NewExportHandler(svc.Timetable),
	}
}
