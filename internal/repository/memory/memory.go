// Package memory 提供一个内存中的排班账本，用于测试和本地开发
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/ledger"
)

type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	staff       map[string]domain.Staff
	counters    map[string]domain.Counter
	workShifts  map[string]domain.WorkShiftTemplate
	assignments map[string]domain.ShiftAssignment
	order       []string // 插入顺序
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		state: &state{
			staff:       make(map[string]domain.Staff),
			counters:    make(map[string]domain.Counter),
			workShifts:  make(map[string]domain.WorkShiftTemplate),
			assignments: make(map[string]domain.ShiftAssignment),
		},
	}
}

func (s *Store) PutStaff(staff domain.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.staff[staff.ID] = staff
}

func (s *Store) PutCounter(counter domain.Counter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.counters[counter.ID] = counter
}

func (s *Store) PutWorkShift(ws domain.WorkShiftTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.workShifts[ws.ID] = ws
}

// WithTx 在整个 fn 执行期间持有锁，事务之间完全串行。
// fn 操作的是状态的副本，只有成功返回时才会替换原状态
func (s *Store) WithTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(working); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state = working
	return nil
}

func (s *Store) ListAssignments(ctx context.Context, staffID string) ([]domain.ShiftAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ListAssignments(ctx, staffID)
}

func (s *Store) ListAssignmentsByStaff(ctx context.Context, staffIDs []string) (map[string][]domain.ShiftAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ListAssignmentsByStaff(ctx, staffIDs)
}

func (s *Store) GetAssignment(ctx context.Context, id string) (*domain.ShiftAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetAssignment(ctx, id)
}

func (s *Store) GetStaff(ctx context.Context, id string) (*domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetStaff(ctx, id)
}

func (s *Store) GetCounter(ctx context.Context, id string) (*domain.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetCounter(ctx, id)
}

func (s *Store) GetWorkShift(ctx context.Context, id string) (*domain.WorkShiftTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetWorkShift(ctx, id)
}

func (st *state) clone() *state {
	c := &state{
		staff:       make(map[string]domain.Staff, len(st.staff)),
		counters:    make(map[string]domain.Counter, len(st.counters)),
		workShifts:  make(map[string]domain.WorkShiftTemplate, len(st.workShifts)),
		assignments: make(map[string]domain.ShiftAssignment, len(st.assignments)),
		order:       append([]string(nil), st.order...),
	}
	for k, v := range st.staff {
		c.staff[k] = v
	}
	for k, v := range st.counters {
		c.counters[k] = v
	}
	for k, v := range st.workShifts {
		c.workShifts[k] = v
	}
	for k, v := range st.assignments {
		c.assignments[k] = v
	}
	return c
}

func (st *state) ListAssignments(_ context.Context, staffID string) ([]domain.ShiftAssignment, error) {
	result := make([]domain.ShiftAssignment, 0)
	for _, id := range st.order {
		a := st.assignments[id]
		if a.StaffID == staffID && !a.IsDeleted() {
			result = append(result, a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].WorkDate.Before(result[j].WorkDate)
	})
	return result, nil
}

func (st *state) ListAssignmentsByStaff(ctx context.Context, staffIDs []string) (map[string][]domain.ShiftAssignment, error) {
	result := make(map[string][]domain.ShiftAssignment, len(staffIDs))
	for _, staffID := range staffIDs {
		list, err := st.ListAssignments(ctx, staffID)
		if err != nil {
			return nil, err
		}
		result[staffID] = list
	}
	return result, nil
}

func (st *state) GetAssignment(_ context.Context, id string) (*domain.ShiftAssignment, error) {
	a, ok := st.assignments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// InsertAssignment 模拟数据库中 (staff_id, work_date, work_shift_id) 上的部分唯一索引
func (st *state) InsertAssignment(_ context.Context, a *domain.ShiftAssignment) (string, error) {
	if _, exists := st.assignments[a.ID]; exists {
		return "", domain.ErrConflict
	}
	for _, existing := range st.assignments {
		if existing.IsDeleted() {
			continue
		}
		if existing.StaffID == a.StaffID && existing.WorkDate.Equal(a.WorkDate) && existing.WorkShiftID == a.WorkShiftID {
			return "", domain.ErrConflict
		}
	}

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	st.assignments[a.ID] = *a
	st.order = append(st.order, a.ID)
	return a.ID, nil
}

func (st *state) SoftDeleteAssignment(_ context.Context, id string) error {
	a, ok := st.assignments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if a.IsDeleted() {
		return domain.ErrAlreadyDeleted
	}

	now := time.Now()
	a.Status = domain.StatusDeleted
	a.DeletedAt = &now
	st.assignments[id] = a
	return nil
}

func (st *state) GetStaff(_ context.Context, id string) (*domain.Staff, error) {
	s, ok := st.staff[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (st *state) GetCounter(_ context.Context, id string) (*domain.Counter, error) {
	c, ok := st.counters[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (st *state) GetWorkShift(_ context.Context, id string) (*domain.WorkShiftTemplate, error) {
	ws, ok := st.workShifts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ws, nil
}
