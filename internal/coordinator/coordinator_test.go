package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/events"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/ledger"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/lock"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/repository/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingMetrics struct {
	mu         sync.Mutex
	outcomes   []string
	violations []string
}

func (m *recordingMetrics) ObserveOperation(op, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, op+":"+outcome)
}

func (m *recordingMetrics) ObserveViolation(rule string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations = append(m.violations, rule)
}

type fixture struct {
	store     *memory.Store
	publisher *recordingPublisher
	metrics   *recordingMetrics
	coord     *Coordinator
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	store := memory.New()
	store.PutStaff(domain.Staff{ID: "x", FullName: "王伟", IsActive: true})
	store.PutStaff(domain.Staff{ID: "y", FullName: "李静", IsActive: true})
	store.PutStaff(domain.Staff{ID: "gone", FullName: "张强", IsActive: false})
	store.PutCounter(domain.Counter{ID: "c1", Name: "一号窗口", IsActive: true})

	// 2 月 26 日到 4 月 6 日每天三个班次模板
	for d := domain.NewDate(2024, time.February, 26); d.Before(domain.NewDate(2024, time.April, 7)); d = d.AddDays(1) {
		for _, st := range domain.ShiftTypes() {
			store.PutWorkShift(domain.WorkShiftTemplate{
				ID:           workShiftID(d, st),
				ShiftType:    st,
				CalendarDate: d,
			})
		}
	}

	f := &fixture{
		store:     store,
		publisher: &recordingPublisher{},
		metrics:   &recordingMetrics{},
	}
	base := []Option{
		WithPublisher(f.publisher),
		WithMetrics(f.metrics),
		WithLogger(quietLogger()),
	}
	f.coord = New(store, domain.DefaultPolicy(), append(base, opts...)...)
	return f
}

func workShiftID(d domain.Date, st domain.ShiftType) string {
	return fmt.Sprintf("%s-%s", d, st)
}

func march(day int) domain.Date {
	return domain.NewDate(2024, time.March, day)
}

func request(staffID string, d domain.Date, st domain.ShiftType) AssignRequest {
	return AssignRequest{
		StaffID:     staffID,
		CounterID:   "c1",
		WorkShiftID: workShiftID(d, st),
		WorkDate:    d,
		ShiftType:   st,
	}
}

func (f *fixture) mustAssign(t *testing.T, req AssignRequest) *domain.ShiftAssignment {
	t.Helper()
	a, err := f.coord.Assign(context.Background(), req)
	require.NoError(t, err)
	return a
}

// =============================================================================
// ASSIGN
// =============================================================================

func TestAssign_Success(t *testing.T) {
	f := newFixture(t, WithIDGenerator(func() string { return "a-1" }))

	a, err := f.coord.Assign(context.Background(), request("x", march(5), domain.ShiftMorning))

	require.NoError(t, err)
	assert.Equal(t, "a-1", a.ID)
	assert.Equal(t, domain.StatusScheduled, a.Status)
	assert.Equal(t, "c1", a.CounterID)

	list, err := f.coord.ListAssignments(context.Background(), "x")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a-1", list[0].ID)

	assert.Equal(t, []string{events.TypeAssignmentCreated}, f.publisher.types())
	assert.Equal(t, []string{"assign:ok"}, f.metrics.outcomes)
}

func TestAssign_ShiftTypeFromTemplate(t *testing.T) {
	f := newFixture(t)
	req := request("x", march(5), domain.ShiftFullDay)
	req.ShiftType = ""

	a, err := f.coord.Assign(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, domain.ShiftFullDay, a.ShiftType)
}

func TestAssign_WeeklyCapRejected(t *testing.T) {
	f := newFixture(t)
	for day := 4; day <= 9; day++ {
		f.mustAssign(t, request("x", march(day), domain.ShiftMorning))
	}

	_, err := f.coord.Assign(context.Background(), request("x", march(9), domain.ShiftAfternoon))

	require.ErrorIs(t, err, ErrValidationFailed)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{domain.RuleWeeklyCap}, ve.Result.Rules())
	assert.Contains(t, f.metrics.outcomes, "assign:validation_failed")
	assert.Equal(t, []string{domain.RuleWeeklyCap}, f.metrics.violations)

	list, err := f.coord.ListAssignments(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, list, 6)
}

func TestAssign_ReportsEveryViolation(t *testing.T) {
	f := newFixture(t)
	f.mustAssign(t, request("x", march(5), domain.ShiftFullDay))

	policy := domain.DefaultPolicy()
	policy.MaxShiftsPerWeek = 1
	coord := New(f.store, policy, WithLogger(quietLogger()))

	_, err := coord.Assign(context.Background(), request("x", march(5), domain.ShiftFullDay))

	require.ErrorIs(t, err, ErrValidationFailed)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{domain.RuleWeeklyCap, domain.RuleDuplicateShift}, ve.Result.Rules())
	for _, v := range Violations(err) {
		assert.NotEmpty(t, v.Message)
	}
}

func TestAssign_NotFound(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  AssignRequest
		kind string
	}{
		{"unknown staff", request("nobody", march(5), domain.ShiftMorning), "staff"},
		{"inactive staff", request("gone", march(5), domain.ShiftMorning), "staff"},
		{"unknown counter", func() AssignRequest {
			r := request("x", march(5), domain.ShiftMorning)
			r.CounterID = "c9"
			return r
		}(), "counter"},
		{"unknown work shift", func() AssignRequest {
			r := request("x", march(5), domain.ShiftMorning)
			r.WorkShiftID = "missing"
			return r
		}(), "work_shift"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.coord.Assign(context.Background(), tt.req)

			require.ErrorIs(t, err, ErrNotFound)
			var nf *NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.kind, nf.Kind)
			assert.True(t, IsClientError(err))
		})
	}
}

func TestAssign_TemplateMismatch(t *testing.T) {
	f := newFixture(t)
	req := request("x", march(5), domain.ShiftMorning)
	req.WorkDate = march(6)
	req.ShiftType = domain.ShiftAfternoon

	_, err := f.coord.Assign(context.Background(), req)

	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, []string{domain.RuleTemplateMismatch, domain.RuleTemplateMismatch}, func() []string {
		var rules []string
		for _, v := range Violations(err) {
			rules = append(rules, v.Rule)
		}
		return rules
	}())
}

func TestAssign_ConcurrentCallsNeverBothSucceed(t *testing.T) {
	// GIVEN: 本周已有 5 个班次，再来两个相同的排班都会让本周变成 7 个
	f := newFixture(t)
	for day := 4; day <= 8; day++ {
		f.mustAssign(t, request("x", march(day), domain.ShiftMorning))
	}

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.coord.Assign(context.Background(), request("x", march(9), domain.ShiftMorning))
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, ErrConflict) || errors.Is(err, ErrValidationFailed), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	list, err := f.coord.ListAssignments(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, list, 6)
}

func TestAssign_ConcurrentWithLockerNeverBothSucceed(t *testing.T) {
	f := newFixture(t, WithLocker(lock.NewLocal()))
	for day := 4; day <= 8; day++ {
		f.mustAssign(t, request("x", march(day), domain.ShiftMorning))
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.coord.Assign(context.Background(), request("x", march(9), domain.ShiftMorning))
		}(i)
	}
	wg.Wait()

	assert.False(t, errs[0] == nil && errs[1] == nil)
}

func TestAssign_LockHeldReturnsConflict(t *testing.T) {
	locker := lock.NewLocal()
	f := newFixture(t, WithLocker(locker))

	release, err := locker.Acquire(context.Background(), "staff:x")
	require.NoError(t, err)
	defer release()

	_, err = f.coord.Assign(context.Background(), request("x", march(5), domain.ShiftMorning))

	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, []string{"assign:conflict"}, f.metrics.outcomes)
}

type faultyTx struct {
	ledger.Tx
	insertErr error
	listErr   error
}

func (tx faultyTx) InsertAssignment(ctx context.Context, a *domain.ShiftAssignment) (string, error) {
	if tx.insertErr != nil {
		return "", tx.insertErr
	}
	return tx.Tx.InsertAssignment(ctx, a)
}

func (tx faultyTx) ListAssignments(ctx context.Context, staffID string) ([]domain.ShiftAssignment, error) {
	if tx.listErr != nil {
		return nil, tx.listErr
	}
	return tx.Tx.ListAssignments(ctx, staffID)
}

type faultyStore struct {
	*memory.Store
	insertErr error
	listErr   error
}

func (s *faultyStore) WithTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx ledger.Tx) error {
		return fn(faultyTx{Tx: tx, insertErr: s.insertErr, listErr: s.listErr})
	})
}

func TestAssign_StoreConflictIsNotRetried(t *testing.T) {
	f := newFixture(t)
	store := &faultyStore{Store: f.store, insertErr: fmt.Errorf("unique violation: %w", domain.ErrConflict)}
	coord := New(store, domain.DefaultPolicy(), WithLogger(quietLogger()), WithPublisher(f.publisher))

	_, err := coord.Assign(context.Background(), request("x", march(5), domain.ShiftMorning))

	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.publisher.types())
}

func TestAssign_PersistenceError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection reset")
	store := &faultyStore{Store: f.store, listErr: boom}
	coord := New(store, domain.DefaultPolicy(), WithLogger(quietLogger()))

	_, err := coord.Assign(context.Background(), request("x", march(5), domain.ShiftMorning))

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsClientError(err))
}

func TestAssign_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("channel closed")

	_, err := f.coord.Assign(context.Background(), request("x", march(5), domain.ShiftMorning))

	assert.NoError(t, err)
}

// =============================================================================
// UNASSIGN
// =============================================================================

func TestUnassign(t *testing.T) {
	f := newFixture(t)
	a := f.mustAssign(t, request("x", march(5), domain.ShiftMorning))

	deleted, err := f.coord.Unassign(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())

	// 再次删除不会报错，也不会重复发送事件
	again, err := f.coord.Unassign(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, again.IsDeleted())
	assert.Equal(t, []string{events.TypeAssignmentCreated, events.TypeAssignmentDeleted}, f.publisher.types())

	list, err := f.coord.ListAssignments(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, list)

	// 删除之后可以重新排同一个班次
	f.mustAssign(t, request("x", march(5), domain.ShiftMorning))
}

func TestUnassign_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.Unassign(context.Background(), "missing")

	require.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "assignment", nf.Kind)
	assert.Equal(t, []string{"unassign:not_found"}, f.metrics.outcomes)
}

func TestUnassign_FreesCapacity(t *testing.T) {
	f := newFixture(t)
	var ids []string
	for day := 4; day <= 9; day++ {
		ids = append(ids, f.mustAssign(t, request("x", march(day), domain.ShiftMorning)).ID)
	}

	_, err := f.coord.Assign(context.Background(), request("x", march(9), domain.ShiftAfternoon))
	require.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.coord.Unassign(context.Background(), ids[0])
	require.NoError(t, err)

	f.mustAssign(t, request("x", march(9), domain.ShiftAfternoon))
}

// =============================================================================
// CHECK / SUGGEST / RECOMMEND
// =============================================================================

func TestCheck_IsAdvisory(t *testing.T) {
	f := newFixture(t)
	f.mustAssign(t, request("x", march(5), domain.ShiftFullDay))

	result, err := f.coord.Check(context.Background(), "x", domain.Candidate{
		WorkDate:    march(5),
		WorkShiftID: workShiftID(march(5), domain.ShiftMorning),
		ShiftType:   domain.ShiftMorning,
	})

	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{domain.RuleShiftTypeExclusive}, result.Rules())

	list, err := f.coord.ListAssignments(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.coord.Check(context.Background(), "nobody", domain.Candidate{WorkDate: march(5)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSuggest_LeastLoadedFirst(t *testing.T) {
	f := newFixture(t)
	for day := 4; day <= 8; day++ {
		f.mustAssign(t, request("y", march(day), domain.ShiftMorning))
	}
	for day := 4; day <= 5; day++ {
		f.mustAssign(t, request("x", march(day), domain.ShiftMorning))
	}

	rankings, err := f.coord.Suggest(context.Background(), []string{"y", "x", "y"}, march(6), calendar.ModeWeek)

	require.NoError(t, err)
	require.Len(t, rankings, 2)
	assert.Equal(t, "x", rankings[0].StaffID)
	assert.Equal(t, 2, rankings[0].ShiftCount)
	assert.Equal(t, "y", rankings[1].StaffID)
	assert.Equal(t, 5, rankings[1].ShiftCount)
}

func TestRecommend_SkipsIneligibleStaff(t *testing.T) {
	f := newFixture(t)
	f.mustAssign(t, request("x", march(5), domain.ShiftFullDay))
	for day := 6; day <= 8; day++ {
		f.mustAssign(t, request("y", march(day), domain.ShiftMorning))
	}
	candidate := domain.Candidate{
		WorkDate:    march(5),
		WorkShiftID: workShiftID(march(5), domain.ShiftMorning),
		ShiftType:   domain.ShiftMorning,
	}

	// x 的班次更少，但是当天已有全天班
	rec, err := f.coord.Recommend(context.Background(), []string{"x", "y"}, candidate, calendar.ModeWeek)

	require.NoError(t, err)
	assert.Equal(t, "y", rec.Ranking.StaffID)
	assert.True(t, rec.Result.IsValid)

	_, err = f.coord.Recommend(context.Background(), []string{"x"}, candidate, calendar.ModeWeek)
	assert.ErrorIs(t, err, ErrNoEligibleStaff)
}

func TestSuggest_IgnoresUnknownAndInactiveStaff(t *testing.T) {
	f := newFixture(t)
	f.mustAssign(t, request("x", march(5), domain.ShiftMorning))

	rankings, err := f.coord.Suggest(context.Background(), []string{"x", "nobody", "gone"}, march(6), calendar.ModeWeek)

	require.NoError(t, err)
	require.Len(t, rankings, 1)
	assert.Equal(t, "x", rankings[0].StaffID)
	assert.Equal(t, 1, rankings[0].ShiftCount)
}

func TestRecommend_OnlyReturnsAssignableStaff(t *testing.T) {
	f := newFixture(t)
	f.mustAssign(t, request("x", march(4), domain.ShiftMorning))
	candidate := domain.Candidate{
		WorkDate:    march(5),
		WorkShiftID: workShiftID(march(5), domain.ShiftMorning),
		ShiftType:   domain.ShiftMorning,
	}

	// gone 和 nobody 的班次数为 0，但是都无法排班
	rec, err := f.coord.Recommend(context.Background(), []string{"x", "gone", "nobody"}, candidate, calendar.ModeWeek)

	require.NoError(t, err)
	assert.Equal(t, "x", rec.Ranking.StaffID)

	_, err = f.coord.Assign(context.Background(), request(rec.Ranking.StaffID, march(5), domain.ShiftMorning))
	assert.NoError(t, err)

	_, err = f.coord.Recommend(context.Background(), []string{"gone", "nobody"}, candidate, calendar.ModeWeek)
	assert.ErrorIs(t, err, ErrNoEligibleStaff)
}
