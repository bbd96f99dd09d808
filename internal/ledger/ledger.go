package ledger

import (
	"context"

	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

// Reader 读取排班记录。ListAssignments 只返回未删除的排班
type Reader interface {
	ListAssignments(ctx context.Context, staffID string) ([]domain.ShiftAssignment, error)
	ListAssignmentsByStaff(ctx context.Context, staffIDs []string) (map[string][]domain.ShiftAssignment, error)
	GetAssignment(ctx context.Context, id string) (*domain.ShiftAssignment, error)
}

// Writer 写入排班记录。
// 同一员工同一天同一班次重复插入时返回 domain.ErrConflict，
// 对已删除的排班再次删除时返回 domain.ErrAlreadyDeleted
type Writer interface {
	InsertAssignment(ctx context.Context, a *domain.ShiftAssignment) (string, error)
	SoftDeleteAssignment(ctx context.Context, id string) error
}

// Directory 用于确认引用的员工、服务窗口和班次是否存在，不存在时返回 domain.ErrNotFound
type Directory interface {
	GetStaff(ctx context.Context, id string) (*domain.Staff, error)
	GetCounter(ctx context.Context, id string) (*domain.Counter, error)
	GetWorkShift(ctx context.Context, id string) (*domain.WorkShiftTemplate, error)
}

type Tx interface {
	Reader
	Writer
	Directory
}

// Store 在事务之外也可以直接读取，写入必须放在 WithTx 中。
// WithTx 以可串行化的隔离级别执行 fn，fn 返回错误时回滚；
// 提交时的序列化失败返回 domain.ErrConflict
type Store interface {
	Reader
	Directory
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
