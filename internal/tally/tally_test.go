package tally

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

func assignment(staffID string, date domain.Date, status domain.AssignmentStatus) domain.ShiftAssignment {
	return domain.ShiftAssignment{
		StaffID:     staffID,
		WorkShiftID: "ws-" + date.String(),
		WorkDate:    date,
		ShiftType:   domain.ShiftMorning,
		Status:      status,
	}
}

func TestCountInWindow(t *testing.T) {
	week := calendar.WeekRange(domain.NewDate(2024, time.March, 6))

	assignments := []domain.ShiftAssignment{
		assignment("x", domain.NewDate(2024, time.March, 3), domain.StatusScheduled),  // 上周日
		assignment("x", domain.NewDate(2024, time.March, 4), domain.StatusScheduled),  // 区间起点
		assignment("x", domain.NewDate(2024, time.March, 7), domain.StatusDeleted),    // 已删除
		assignment("x", domain.NewDate(2024, time.March, 9), domain.StatusScheduled),  // 区间终点
		assignment("x", domain.NewDate(2024, time.March, 10), domain.StatusScheduled), // 本周日
	}

	assert.Equal(t, 2, CountInWindow(assignments, week))
	assert.Equal(t, 0, CountInWindow(nil, week))
}

func TestCountInWindow_Monotonic(t *testing.T) {
	month := calendar.MonthRange(domain.NewDate(2024, time.March, 1))

	var assignments []domain.ShiftAssignment
	prev := 0
	for d := domain.NewDate(2024, time.February, 20); d.Before(domain.NewDate(2024, time.April, 10)); d = d.AddDays(1) {
		status := domain.StatusScheduled
		if d.Day()%4 == 0 {
			status = domain.StatusDeleted
		}
		assignments = append(assignments, assignment("x", d, status))

		n := CountInWindow(assignments, month)
		assert.GreaterOrEqual(t, n, prev)
		prev = n
	}
}

func TestCountByStaff(t *testing.T) {
	week := calendar.WeekRange(domain.NewDate(2024, time.March, 4))

	assignments := []domain.ShiftAssignment{
		assignment("a", domain.NewDate(2024, time.March, 4), domain.StatusScheduled),
		assignment("a", domain.NewDate(2024, time.March, 5), domain.StatusScheduled),
		assignment("b", domain.NewDate(2024, time.March, 5), domain.StatusScheduled),
		assignment("b", domain.NewDate(2024, time.March, 6), domain.StatusDeleted),
		assignment("c", domain.NewDate(2024, time.March, 11), domain.StatusScheduled),
	}

	counts := CountByStaff(assignments, week)

	assert.Equal(t, map[string]int{"a": 2, "b": 1}, counts)
}
