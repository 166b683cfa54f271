package service

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"classroom-timetable/internal/repository"
	apperr "classroom-timetable/pkg/errors"
	"classroom-timetable/pkg/jwt"
)

// ErrInternal 基础设施故障；对外只返回通用提示，细节写日志
var ErrInternal = apperr.New(apperr.KindInternal, 50000, "Internal server error")

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	Approval  ApprovalService
	Timetable TimetableService
}

// NewService 创建 Service 聚合
// blacklist 可为 nil（Redis 不可用时不做 Token 吊销）
func NewService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:      NewAuthService(repo, jwtMgr, blacklist, logger),
		Approval:  NewApprovalService(repo, logger),
		Timetable: NewTimetableService(repo, logger),
	}
}

// internal 记录基础设施错误并包装为 ErrInternal
func internal(logger *zap.Logger, msg string, err error, fields ...zap.Field) error {
	logger.Error(msg, append(fields, zap.Error(err))...)
	return ErrInternal.Wrap(err)
}

// validID 路径参数中的 ID 必须是 UUID
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
