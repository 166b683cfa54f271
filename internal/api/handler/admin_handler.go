package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"classroom-timetable/internal/dto"
	"classroom-timetable/internal/policy"
	"classroom-timetable/internal/service"
	"classroom-timetable/pkg/response"
)

// AdminHandler 超级管理员模块 HTTP 处理器（审批与账号管理）
type AdminHandler struct {
	approvalSvc  service.ApprovalService
	timetableSvc service.TimetableService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(approvalSvc service.ApprovalService, timetableSvc service.TimetableService) *AdminHandler {
	return &AdminHandler{approvalSvc: approvalSvc, timetableSvc: timetableSvc}
}

// ── 列表 ──

// ListPending 待审批用户
// GET /api/v1/super-admin/pending-requests
func (h *AdminHandler) ListPending(c *gin.Context) {
	h.listUsers(c, h.approvalSvc.ListPending)
}

// ListActive 已启用用户
// GET /api/v1/super-admin/active-users
func (h *AdminHandler) ListActive(c *gin.Context) {
	h.listUsers(c, h.approvalSvc.ListActive)
}

// ListDisabled 已禁用用户
// GET /api/v1/super-admin/disabled-users
func (h *AdminHandler) ListDisabled(c *gin.Context) {
	h.listUsers(c, h.approvalSvc.ListDisabled)
}

type userLister func(ctx context.Context, actor policy.Actor, page dto.PaginationRequest) (*dto.PageResult[dto.UserResponse], error)

func (h *AdminHandler) listUsers(c *gin.Context, list userLister) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := list(c.Request.Context(), actor, page)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// Stats 仪表盘统计
// GET /api/v1/super-admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	stats, err := h.approvalSvc.Stats(c.Request.Context(), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, stats)
}

// ListTimetables 全部课表（含创建者）
// GET /api/v1/super-admin/timetables
func (h *AdminHandler) ListTimetables(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.timetableSvc.List(c.Request.Context(), actor, page)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// ── 审批与账号管理 ──

// Approve 审批用户并分配角色
// PUT /api/v1/super-admin/approve/:id
func (h *AdminHandler) Approve(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ApproveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	user, err := h.approvalSvc.Approve(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "User approved successfully", user)
}

// Reject 拒绝并删除待审批用户
// DELETE /api/v1/super-admin/reject/:id
func (h *AdminHandler) Reject(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.approvalSvc.Reject(c.Request.Context(), actor, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "User rejected and deleted", nil)
}

// ToggleStatus 启用 / 禁用已审批用户
// PUT /api/v1/super-admin/toggle-status/:id
func (h *AdminHandler) ToggleStatus(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	user, err := h.approvalSvc.ToggleActive(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	msg := "User disabled successfully"
	if user.IsActive {
		msg = "User activated successfully"
	}
	response.OKWithMessage(c, msg, user)
}

// DeleteUser 软删除用户
// DELETE /api/v1/super-admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.approvalSvc.SoftDelete(c.Request.Context(), actor, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "User deleted successfully", nil)
}
