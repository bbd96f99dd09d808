package coordinator

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

var (
	// ErrValidationFailed 表示至少一条约束被违反，可以由用户修改后重新提交
	ErrValidationFailed = errors.New("排班校验未通过")

	// ErrConflict 表示有并发的提交抢先一步，需要基于最新数据重新校验后再提交
	ErrConflict = errors.New("排班发生并发冲突，请刷新后重试")

	// ErrNotFound 表示引用的员工、服务窗口、班次或排班不存在
	ErrNotFound = errors.New("引用的记录不存在")

	// ErrPersistence 表示存储层故障
	ErrPersistence = errors.New("存储失败")

	// ErrNoEligibleStaff 表示候选员工都无法通过校验
	ErrNoEligibleStaff = errors.New("没有可以安排该班次的员工")
)

// ValidationError 携带完整且有序的违规列表
type ValidationError struct {
	Result domain.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("排班校验未通过，共 %d 条违规", len(e.Result.Violations))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

type NotFoundError struct {
	Kind string // staff, counter, work_shift, assignment
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s 不存在", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// IsClientError 表示错误是由调用方的输入或过期的数据导致的
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNoEligibleStaff)
}

// IsRetryable 表示基于最新数据重新校验后可能成功。引擎本身从不自动重试
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// Violations 从错误中取出违规列表，不是校验错误时返回 nil
func Violations(err error) []domain.Violation {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Result.Violations
	}
	return nil
}
