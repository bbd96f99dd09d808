package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/advisor"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/events"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/ledger"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/lock"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/validator"
)

type AssignRequest struct {
	StaffID     string
	CounterID   string
	WorkShiftID string
	WorkDate    domain.Date
	ShiftType   domain.ShiftType // 为空时使用班次模板中的类型
}

type Recommendation struct {
	Ranking advisor.Ranking         `json:"ranking"`
	Result  domain.ValidationResult `json:"result"`
}

// Coordinator 是外部调用方唯一的入口，也是唯一有副作用的组件
type Coordinator struct {
	store     ledger.Store
	validator *validator.Validator
	advisor   *advisor.Advisor
	locker    lock.Locker
	publisher events.Publisher
	metrics   metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Coordinator)

func WithLocker(l lock.Locker) Option {
	return func(c *Coordinator) { c.locker = l }
}

func WithPublisher(p events.Publisher) Option {
	return func(c *Coordinator) { c.publisher = p }
}

func WithMetrics(m metrics.Recorder) Option {
	return func(c *Coordinator) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Coordinator) { c.newID = newID }
}

func New(store ledger.Store, policy domain.Policy, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:     store,
		validator: validator.New(policy),
		advisor:   advisor.New(policy),
		publisher: events.Nop{},
		metrics:   metrics.Nop{},
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check 基于当前快照做预校验，结果只作参考，提交时会重新校验
func (c *Coordinator) Check(ctx context.Context, staffID string, candidate domain.Candidate) (domain.ValidationResult, error) {
	if _, err := c.store.GetStaff(ctx, staffID); err != nil {
		return domain.ValidationResult{}, c.translate("查询员工", err, "staff", staffID)
	}

	existing, err := c.store.ListAssignments(ctx, staffID)
	if err != nil {
		return domain.ValidationResult{}, c.translate("查询排班", err, "", "")
	}

	return c.validator.Validate(existing, candidate), nil
}

// Assign 在一个可串行化事务中重新读取员工的排班、重新校验并插入。
// 冲突时直接返回 ErrConflict，不会自动重试
func (c *Coordinator) Assign(ctx context.Context, req AssignRequest) (*domain.ShiftAssignment, error) {
	start := c.now()

	created, err := c.assign(ctx, req)
	c.observe(metrics.OpAssign, err, start)

	if err != nil {
		c.logger.Info("排班未创建",
			"staffID", req.StaffID,
			"workDate", req.WorkDate.String(),
			"workShiftID", req.WorkShiftID,
			"error", err,
		)
		return nil, err
	}

	c.logger.Info("排班已创建",
		"id", created.ID,
		"staffID", created.StaffID,
		"workDate", created.WorkDate.String(),
		"workShiftID", created.WorkShiftID,
	)
	c.publish(ctx, events.TypeAssignmentCreated, *created)

	return created, nil
}

func (c *Coordinator) assign(ctx context.Context, req AssignRequest) (*domain.ShiftAssignment, error) {
	if c.locker != nil {
		release, err := c.locker.Acquire(ctx, "staff:"+req.StaffID)
		if err != nil {
			if errors.Is(err, lock.ErrLocked) {
				return nil, ErrConflict
			}
			return nil, &PersistenceError{Op: "获取排班锁", Err: err}
		}
		defer release()
	}

	var created domain.ShiftAssignment

	err := c.store.WithTx(ctx, func(tx ledger.Tx) error {
		candidate, err := c.resolveCandidate(ctx, tx, req)
		if err != nil {
			return err
		}

		// 必须在事务内重新读取，不能使用调用方手里的快照
		existing, err := tx.ListAssignments(ctx, req.StaffID)
		if err != nil {
			return err
		}

		result := c.validator.Validate(existing, candidate)
		if !result.IsValid {
			return &ValidationError{Result: result}
		}

		created = domain.ShiftAssignment{
			ID:          c.newID(),
			StaffID:     req.StaffID,
			WorkShiftID: candidate.WorkShiftID,
			CounterID:   req.CounterID,
			WorkDate:    candidate.WorkDate,
			ShiftType:   candidate.ShiftType,
			Status:      domain.StatusScheduled,
			CreatedAt:   c.now(),
		}

		id, err := tx.InsertAssignment(ctx, &created)
		if err != nil {
			return err
		}
		created.ID = id

		return nil
	})
	if err != nil {
		return nil, c.translate("创建排班", err, "", "")
	}

	return &created, nil
}

// resolveCandidate 确认引用的记录都存在，并且请求与班次模板一致
func (c *Coordinator) resolveCandidate(ctx context.Context, tx ledger.Tx, req AssignRequest) (domain.Candidate, error) {
	staff, err := tx.GetStaff(ctx, req.StaffID)
	if err != nil {
		return domain.Candidate{}, c.translate("查询员工", err, "staff", req.StaffID)
	}
	if !staff.IsActive {
		return domain.Candidate{}, &NotFoundError{Kind: "staff", ID: req.StaffID}
	}

	counter, err := tx.GetCounter(ctx, req.CounterID)
	if err != nil {
		return domain.Candidate{}, c.translate("查询服务窗口", err, "counter", req.CounterID)
	}
	if !counter.IsActive {
		return domain.Candidate{}, &NotFoundError{Kind: "counter", ID: req.CounterID}
	}

	ws, err := tx.GetWorkShift(ctx, req.WorkShiftID)
	if err != nil {
		return domain.Candidate{}, c.translate("查询班次", err, "work_shift", req.WorkShiftID)
	}

	candidate := domain.Candidate{
		WorkDate:    req.WorkDate,
		WorkShiftID: req.WorkShiftID,
		ShiftType:   req.ShiftType,
	}
	if candidate.ShiftType == "" {
		candidate.ShiftType = ws.ShiftType
	}

	var violations []domain.Violation
	if !ws.CalendarDate.IsZero() && !ws.CalendarDate.Equal(req.WorkDate) {
		violations = append(violations, domain.Violation{
			Rule:    domain.RuleTemplateMismatch,
			Message: fmt.Sprintf("班次 %s 的日期是 %s，与排班日期 %s 不一致", ws.ID, ws.CalendarDate, req.WorkDate),
		})
	}
	if candidate.ShiftType != ws.ShiftType {
		violations = append(violations, domain.Violation{
			Rule:    domain.RuleTemplateMismatch,
			Message: fmt.Sprintf("班次 %s 的类型是 %s，与请求的 %s 不一致", ws.ID, ws.ShiftType, candidate.ShiftType),
		})
	}
	if len(violations) > 0 {
		return domain.Candidate{}, &ValidationError{Result: domain.ValidationResult{IsValid: false, Violations: violations}}
	}

	return candidate, nil
}

// Unassign 软删除排班，不重新校验约束。对已删除的排班重复调用不会报错
func (c *Coordinator) Unassign(ctx context.Context, id string) (*domain.ShiftAssignment, error) {
	start := c.now()

	var (
		deleted *domain.ShiftAssignment
		changed bool
	)

	err := c.store.WithTx(ctx, func(tx ledger.Tx) error {
		a, err := tx.GetAssignment(ctx, id)
		if err != nil {
			return c.translate("查询排班", err, "assignment", id)
		}
		if a.IsDeleted() {
			deleted = a
			return nil
		}

		if err := tx.SoftDeleteAssignment(ctx, id); err != nil {
			if errors.Is(err, domain.ErrAlreadyDeleted) {
				deleted = a
				return nil
			}
			return err
		}

		deleted, err = tx.GetAssignment(ctx, id)
		if err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		err = c.translate("删除排班", err, "assignment", id)
	}
	c.observe(metrics.OpUnassign, err, start)

	if err != nil {
		c.logger.Info("排班未删除", "id", id, "error", err)
		return nil, err
	}

	if changed {
		c.logger.Info("排班已删除", "id", id, "staffID", deleted.StaffID, "workDate", deleted.WorkDate.String())
		c.publish(ctx, events.TypeAssignmentDeleted, *deleted)
	}

	return deleted, nil
}

// Suggest 按统计窗口内的班次数量给候选员工排序，不做校验。不存在或已停用的员工会被忽略
func (c *Coordinator) Suggest(ctx context.Context, staffIDs []string, date domain.Date, mode calendar.Mode) ([]advisor.Ranking, error) {
	windows, err := c.loadWindows(ctx, staffIDs)
	if err != nil {
		return nil, err
	}
	return c.advisor.Rank(windows, date, mode), nil
}

// Recommend 返回排名最靠前且能通过校验的员工
func (c *Coordinator) Recommend(ctx context.Context, staffIDs []string, candidate domain.Candidate, mode calendar.Mode) (*Recommendation, error) {
	windows, err := c.loadWindows(ctx, staffIDs)
	if err != nil {
		return nil, err
	}

	byStaff := make(map[string][]domain.ShiftAssignment, len(windows))
	for _, w := range windows {
		byStaff[w.StaffID] = w.Assignments
	}

	for _, ranking := range c.advisor.Rank(windows, candidate.WorkDate, mode) {
		result := c.validator.Validate(byStaff[ranking.StaffID], candidate)
		if result.IsValid {
			return &Recommendation{Ranking: ranking, Result: result}, nil
		}
	}

	return nil, ErrNoEligibleStaff
}

func (c *Coordinator) ListAssignments(ctx context.Context, staffID string) ([]domain.ShiftAssignment, error) {
	list, err := c.store.ListAssignments(ctx, staffID)
	if err != nil {
		return nil, c.translate("查询排班", err, "", "")
	}
	return list, nil
}

func (c *Coordinator) loadWindows(ctx context.Context, staffIDs []string) ([]advisor.StaffWindow, error) {
	unique := make([]string, 0, len(staffIDs))
	seen := make(map[string]bool, len(staffIDs))
	for _, id := range staffIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		// 不存在或已停用的员工无法被排班，不参与排序
		staff, err := c.store.GetStaff(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			c.logger.Debug("忽略不存在的员工", "staffID", id)
			continue
		}
		if err != nil {
			return nil, c.translate("查询员工", err, "staff", id)
		}
		if !staff.IsActive {
			c.logger.Debug("忽略已停用的员工", "staffID", id)
			continue
		}

		unique = append(unique, id)
	}

	byStaff, err := c.store.ListAssignmentsByStaff(ctx, unique)
	if err != nil {
		return nil, c.translate("查询排班", err, "", "")
	}

	windows := make([]advisor.StaffWindow, 0, len(unique))
	for _, id := range unique {
		windows = append(windows, advisor.StaffWindow{StaffID: id, Assignments: byStaff[id]})
	}
	return windows, nil
}

// translate 把存储层的错误转换为对外的错误类型
func (c *Coordinator) translate(op string, err error, kind, id string) error {
	switch {
	case errors.Is(err, ErrValidationFailed), errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, domain.ErrConflict):
		c.logger.Warn("排班并发冲突", "op", op, "error", err)
		return ErrConflict
	case errors.Is(err, domain.ErrNotFound):
		if kind == "" {
			kind = "record"
		}
		return &NotFoundError{Kind: kind, ID: id}
	default:
		c.logger.Error("排班存储失败", "op", op, "error", err)
		return &PersistenceError{Op: op, Err: err}
	}
}

func (c *Coordinator) observe(op string, err error, start time.Time) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, ErrValidationFailed):
		outcome = metrics.OutcomeValidationFailed
		for _, v := range Violations(err) {
			c.metrics.ObserveViolation(v.Rule)
		}
	case errors.Is(err, ErrConflict):
		outcome = metrics.OutcomeConflict
	case errors.Is(err, ErrNotFound):
		outcome = metrics.OutcomeNotFound
	default:
		outcome = metrics.OutcomeError
	}
	c.metrics.ObserveOperation(op, outcome, c.now().Sub(start))
}

// publish 在事务提交之后发送事件，发送失败只记录日志
func (c *Coordinator) publish(ctx context.Context, eventType string, a domain.ShiftAssignment) {
	event := events.Event{Type: eventType, Assignment: a, OccurredAt: c.now()}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("无法发送排班事件", "type", eventType, "id", a.ID, "error", err)
	}
}
