package policy

import (
	apperr "classroom-timetable/pkg/errors"
)

// ── 登录 / 身份 ──

var (
	ErrAccountDisabled  = apperr.New(apperr.KindForbidden, 11004, "Your account has been disabled. Contact administrator.")
	ErrAwaitingApproval = apperr.New(apperr.KindForbidden, 11005, "Your account is awaiting approval")
)

// ── 用户管理 / 审批 ──

var (
	ErrManageDenied        = apperr.New(apperr.KindForbidden, 12001, "You are not authorized to perform this action")
	ErrInvalidApprovalRole = apperr.New(apperr.KindValidation, 12002, "Invalid role. Must be one of: USER, ADMIN_CS, ADMIN_ECE, ADMIN_IT, ADMIN_MNC, ADMIN_ML")
	ErrDepartmentMismatch  = apperr.New(apperr.KindValidation, 12003, "Department does not match role")
	ErrCannotModifySuper   = apperr.New(apperr.KindForbidden, 12004, "Cannot modify super admin")
	ErrAlreadyApproved     = apperr.New(apperr.KindValidation, 12005, "User is already approved")
	ErrCannotRejectSuper   = apperr.New(apperr.KindForbidden, 12006, "Cannot reject super admin")
	ErrRejectApproved      = apperr.New(apperr.KindValidation, 12007, "Cannot reject approved users. Use toggle status instead")
	ErrToggleUnapproved    = apperr.New(apperr.KindValidation, 12008, "Cannot toggle status of unapproved user")
	ErrCannotToggleSuper   = apperr.New(apperr.KindForbidden, 12010, "Cannot modify super admin status")
)

// ── 课表 / 单元格 ──

var (
	ErrViewDenied         = apperr.New(apperr.KindForbidden, 14001, "Not authorized to view this resource")
	ErrSuperAdminReadOnly = apperr.New(apperr.KindForbidden, 14002, "Super admin has read-only access")
	ErrReadOnlyUser       = apperr.New(apperr.KindForbidden, 14003, "Read-only users cannot edit timetable cells")
	ErrEditDenied         = apperr.New(apperr.KindForbidden, 14004, "Only department admins can edit timetable cells")
	ErrCreateDenied       = apperr.New(apperr.KindForbidden, 14005, "Only department admins can create timetables")
	ErrDeleteDenied       = apperr.New(apperr.KindForbidden, 14006, "Not authorized to delete this timetable")
	ErrCellOwnedByOther   = apperr.New(apperr.KindForbidden, 14007, "This cell belongs to another department")
	ErrAssignOtherDept    = apperr.New(apperr.KindForbidden, 14008, "You can only assign cells to your own department")
	ErrReleaseClaimed     = apperr.New(apperr.KindForbidden, 14009, "Claimed cells cannot be released or transferred")
	ErrInvalidDepartment  = apperr.New(apperr.KindValidation, 14010, "Invalid department")
	ErrSubjectTooLong     = apperr.New(apperr.KindValidation, 14011, "Subject must be at most 200 characters")
)
