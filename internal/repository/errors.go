package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// 唯一约束名（与 migrations 保持一致）
const (
	ConstraintUserID        = "uq_users_user_id"
	ConstraintUserEmail     = "uq_users_email"
	ConstraintTimetableSlot = "uq_timetables_room_class"
	ConstraintCellSlot      = "uq_timetable_cells_slot"
)

// ErrDuplicate 违反唯一约束
var ErrDuplicate = errors.New("duplicate key")

// DuplicateError 携带触发冲突的约束名，errors.Is(err, ErrDuplicate) 为真
type DuplicateError struct {
	Constraint string
	Err        error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate key violates %s", e.Constraint)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

func (e *DuplicateError) Unwrap() error { return e.Err }

const pgUniqueViolation = "23505"

// translate 将驱动层错误转换为仓储层错误
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &DuplicateError{Constraint: pgErr.ConstraintName, Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateError{Err: err}
	}
	return err
}

// IsNotFound 记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
