package validator

import (
	"fmt"

	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/tally"
)

type weeklyCap struct {
	max int
}

func (r weeklyCap) Name() string { return domain.RuleWeeklyCap }

func (r weeklyCap) Check(existing []domain.ShiftAssignment, c domain.Candidate) (string, bool) {
	week := calendar.WeekRange(c.WorkDate)
	count := tally.CountInWindow(existing, week)
	if count+1 <= r.max {
		return "", false
	}
	return fmt.Sprintf("%s 这一周已有 %d 个班次，每周最多 %d 个", week, count, r.max), true
}

type monthlyCap struct {
	max int
}

func (r monthlyCap) Name() string { return domain.RuleMonthlyCap }

func (r monthlyCap) Check(existing []domain.ShiftAssignment, c domain.Candidate) (string, bool) {
	month := calendar.MonthRange(c.WorkDate)
	count := tally.CountInWindow(existing, month)
	if count+1 <= r.max {
		return "", false
	}
	return fmt.Sprintf("%d 年 %d 月已有 %d 个班次，每月最多 %d 个", c.WorkDate.Year(), c.WorkDate.Month(), count, r.max), true
}

type duplicateShift struct{}

func (duplicateShift) Name() string { return domain.RuleDuplicateShift }

func (duplicateShift) Check(existing []domain.ShiftAssignment, c domain.Candidate) (string, bool) {
	for _, a := range existing {
		if a.IsDeleted() {
			continue
		}
		if a.WorkDate.Equal(c.WorkDate) && a.WorkShiftID == c.WorkShiftID {
			return fmt.Sprintf("%s 已经排过班次 %s", c.WorkDate, c.WorkShiftID), true
		}
	}
	return "", false
}

// shiftTypeExclusive: 同一天内全天班与上午班、下午班互斥，上午班和下午班可以同时存在
type shiftTypeExclusive struct {
	policy domain.Policy
}

func (shiftTypeExclusive) Name() string { return domain.RuleShiftTypeExclusive }

func (r shiftTypeExclusive) Check(existing []domain.ShiftAssignment, c domain.Candidate) (string, bool) {
	for _, a := range existing {
		if a.IsDeleted() || !a.WorkDate.Equal(c.WorkDate) {
			continue
		}
		if conflicts(c.ShiftType, a.ShiftType) {
			return fmt.Sprintf("%s 已有%s，不能再安排%s", c.WorkDate, r.policy.Label(a.ShiftType), r.policy.Label(c.ShiftType)), true
		}
	}
	return "", false
}

func conflicts(a, b domain.ShiftType) bool {
	return (a == domain.ShiftFullDay && b.IsHalfDay()) || (a.IsHalfDay() && b == domain.ShiftFullDay)
}
