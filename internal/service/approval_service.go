package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"classroom-timetable/internal/dto"
	"classroom-timetable/internal/model"
	"classroom-timetable/internal/policy"
	"classroom-timetable/internal/repository"
	apperr "classroom-timetable/pkg/errors"
)

var (
	ErrTargetNotFound = apperr.New(apperr.KindNotFound, 12009, "User not found")
	ErrInvalidUserID  = apperr.New(apperr.KindValidation, 12011, "Invalid user ID")
)

// ── ApprovalService ──────────────────────────────────────────
//
// 超管对用户的审批与管理。每个操作先过 CanManageUsers，再加载目标用户，
// 最后由 policy 包中的纯函数完成状态迁移，本层只负责持久化。
// ─────────────────────────────────────────────────────────────

// ApprovalService 用户审批业务接口
type ApprovalService interface {
	ListPending(ctx context.Context, actor policy.Actor, page dto.PaginationRequest) (*dto.PageResult[dto.UserResponse], error)
	ListActive(ctx context.Context, actor policy.Actor, page dto.PaginationRequest) (*dto.PageResult[dto.UserResponse], error)
	ListDisabled(ctx context.Context, actor policy.Actor, page dto.PaginationRequest) (*dto.PageResult[dto.UserResponse], error)
	Stats(ctx context.Context, actor policy.Actor) (*dto.StatsResponse, error)

	Approve(ctx context.Context, actor policy.Actor, targetID string, req *dto.ApproveUserRequest) (*dto.UserResponse, error)
	Reject(ctx context.Context, actor policy.Actor, targetID string) error
	ToggleActive(ctx context.Context, actor policy.Actor, targetID string) (*dto.UserResponse, error)
	SoftDelete(ctx context.Context, actor policy.Actor, targetID string) error
}

type approvalService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewApprovalService 创建 ApprovalService 实例
func NewApprovalService(repo *repository.Repository, logger *zap.Logger) ApprovalService {
	return &approvalService{repo: repo, logger: logger, now: time.Now}
}

// ── 列表筛选条件 ──

func boolPtr(b bool) *bool { return &b }

func pendingFilter() repository.UserListFilter {
	role := model.RolePending
	return repository.UserListFilter{Role: &role, IsApproved: boolPtr(false)}
}

func activeFilter() repository.UserListFilter {
	return repository.UserListFilter{IsApproved: boolPtr(true), IsActive: boolPtr(true), ExcludeSuperAdmin: true}
}

func disabledFilter() repository.UserListFilter {
	return repository.UserListFilter{IsActive: boolPtr(false), ExcludeSuperAdmin: true}
}

func (s *approvalService) ListPending(ctx context.Context, actor policy.Actor, page dto.PaginationRequest) (*dto.PageResult[dto.UserResponse], error) {
	return s.list(ctx, actor, pendingFilter(), page)
}

func (s *approvalService) ListActive(ctx context.Context, actor policy.Actor, page dto.PaginationRequest) (*dto.PageResult[dto.UserResponse], error) {
	return s.list(ctx, actor, activeFilter(), page)
}

func (s *approvalService) ListDisabled(ctx context.Context, actor policy.Actor, page dto.PaginationRequest) (*dto.PageResult[dto.UserResponse], error) {
	return s.list(ctx, actor, disabledFilter(), page)
}

func (s *approvalService) list(ctx context.Context, actor policy.Actor, filter repository.UserListFilter, page dto.PaginationRequest) (*dto.PageResult[dto.UserResponse], error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}

	p, size, offset := page.Resolve()
	users, total, err := s.repo.User.List(ctx, filter, offset, size)
	if err != nil {
		return nil, internal(s.logger, "查询用户列表失败", err)
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, dto.NewUserResponse(&users[i]))
	}
	return &dto.PageResult[dto.UserResponse]{List: list, Total: total, Page: p, PageSize: size}, nil
}

func (s *approvalService) Stats(ctx context.Context, actor policy.Actor) (*dto.StatsResponse, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}

	var stats dto.StatsResponse
	var err error
	if stats.PendingRequests, err = s.repo.User.Count(ctx, pendingFilter()); err != nil {
		return nil, internal(s.logger, "统计待审批用户失败", err)
	}
	if stats.ActiveUsers, err = s.repo.User.Count(ctx, activeFilter()); err != nil {
		return nil, internal(s.logger, "统计活跃用户失败", err)
	}
	if stats.DisabledUsers, err = s.repo.User.Count(ctx, disabledFilter()); err != nil {
		return nil, internal(s.logger, "统计禁用用户失败", err)
	}
	if stats.TotalTimetables, err = s.repo.Timetable.Count(ctx); err != nil {
		return nil, internal(s.logger, "统计课表失败", err)
	}
	return &stats, nil
}

// Approve 校验顺序：权限 → 角色/院系 → 目标用户存在 → 目标状态
func (s *approvalService) Approve(ctx context.Context, actor policy.Actor, targetID string, req *dto.ApproveUserRequest) (*dto.UserResponse, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}
	role, err := policy.ResolveApprovalRole(req.Role, req.Department)
	if err != nil {
		return nil, err
	}

	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := policy.Approve(actor, target, role); err != nil {
		return nil, err
	}
	if err := s.repo.User.Update(ctx, target); err != nil {
		return nil, internal(s.logger, "保存审批结果失败", err, zap.String("target", targetID))
	}

	s.logger.Info("用户已审批",
		zap.String("target", target.UserID),
		zap.String("role", target.Role.String()),
		zap.String("by", actor.ID),
	)
	resp := dto.NewUserResponse(target)
	return &resp, nil
}

func (s *approvalService) Reject(ctx context.Context, actor policy.Actor, targetID string) error {
	if err := policy.CanManageUsers(actor); err != nil {
		return err
	}
	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if err := policy.Reject(actor, target); err != nil {
		return err
	}
	if err := s.repo.User.HardDelete(ctx, target.ID); err != nil {
		return internal(s.logger, "删除用户失败", err, zap.String("target", targetID))
	}

	s.logger.Info("注册申请已拒绝", zap.String("target", target.UserID), zap.String("by", actor.ID))
	return nil
}

func (s *approvalService) ToggleActive(ctx context.Context, actor policy.Actor, targetID string) (*dto.UserResponse, error) {
	if err := policy.CanManageUsers(actor); err != nil {
		return nil, err
	}
	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := policy.ToggleActive(actor, target); err != nil {
		return nil, err
	}
	if err := s.repo.User.Update(ctx, target); err != nil {
		return nil, internal(s.logger, "保存用户状态失败", err, zap.String("target", targetID))
	}

	s.logger.Info("用户状态已切换",
		zap.String("target", target.UserID),
		zap.Bool("is_active", target.IsActive),
		zap.String("by", actor.ID),
	)
	resp := dto.NewUserResponse(target)
	return &resp, nil
}

func (s *approvalService) SoftDelete(ctx context.Context, actor policy.Actor, targetID string) error {
	if err := policy.CanManageUsers(actor); err != nil {
		return err
	}
	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if err := policy.SoftDelete(actor, target, s.now().UTC()); err != nil {
		return err
	}
	if err := s.repo.User.Update(ctx, target); err != nil {
		return internal(s.logger, "软删除用户失败", err, zap.String("target", targetID))
	}

	s.logger.Info("用户已删除", zap.String("target", target.UserID), zap.String("by", actor.ID))
	return nil
}

func (s *approvalService) loadTarget(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, ErrInvalidUserID
	}
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTargetNotFound
		}
		return nil, internal(s.logger, "查询用户失败", err, zap.String("target", id))
	}
	return user, nil
}
