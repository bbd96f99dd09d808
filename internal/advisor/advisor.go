package advisor

import (
	"sort"

	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/tally"
)

// StaffWindow 是某个员工在统计窗口附近的排班快照
type StaffWindow struct {
	StaffID     string
	Assignments []domain.ShiftAssignment
}

type Ranking struct {
	StaffID    string `json:"staffID"`
	ShiftCount int    `json:"shiftCount"`
	Remaining  int    `json:"remaining"`
	AtCapacity bool   `json:"atCapacity"`
}

// Advisor 按窗口内的班次数量从少到多给候选员工排序。
// 它只负责排序，不做任何约束校验
type Advisor struct {
	policy domain.Policy
}

func New(policy domain.Policy) *Advisor {
	return &Advisor{policy: policy}
}

// Rank 返回按班次数升序排列的结果，数量相同时保持输入顺序
func (a *Advisor) Rank(staff []StaffWindow, targetDate domain.Date, mode calendar.Mode) []Ranking {
	window := calendar.Resolve(mode, targetDate)
	limit := a.capFor(mode)

	rankings := make([]Ranking, 0, len(staff))
	for _, s := range staff {
		count := tally.CountInWindow(s.Assignments, window)
		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		rankings = append(rankings, Ranking{
			StaffID:    s.StaffID,
			ShiftCount: count,
			Remaining:  remaining,
			AtCapacity: remaining == 0,
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].ShiftCount < rankings[j].ShiftCount
	})

	return rankings
}

func (a *Advisor) capFor(mode calendar.Mode) int {
	if mode == calendar.ModeMonth {
		return a.policy.MaxShiftsPerMonth
	}
	return a.policy.MaxShiftsPerWeek
}
