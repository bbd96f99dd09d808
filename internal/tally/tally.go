package tally

import (
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

// CountInWindow 统计 window 内未删除的排班数量。
// 这里不按员工过滤，调用方需要传入已经按员工筛选过的快照
func CountInWindow(assignments []domain.ShiftAssignment, window calendar.Period) int {
	count := 0
	for _, a := range assignments {
		if a.IsDeleted() {
			continue
		}
		if window.Contains(a.WorkDate) {
			count++
		}
	}
	return count
}

// CountByStaff 对未筛选的快照按员工分组计数，用于容量规划
func CountByStaff(assignments []domain.ShiftAssignment, window calendar.Period) map[string]int {
	counts := make(map[string]int)
	for _, a := range assignments {
		if a.IsDeleted() || !window.Contains(a.WorkDate) {
			continue
		}
		counts[a.StaffID]++
	}
	return counts
}
