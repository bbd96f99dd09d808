// Package seed 生成员工、服务窗口和班次目录等基础数据
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
	"github.com/teambition/rrule-go"
)

// DefaultRRule 表示服务大厅周一到周六开放
const DefaultRRule = "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR,SA"

type Writer interface {
	CreateStaff(ctx context.Context, staff *domain.Staff) error
	CreateCounter(ctx context.Context, counter *domain.Counter) error
	CreateWorkShift(ctx context.Context, ws *domain.WorkShiftTemplate) (bool, error)
}

// GenerateStaff 生成 n 个在职员工，用户名在这一批中唯一
func GenerateStaff(rng *rand.Rand, n int) []*domain.Staff {
	staff := make([]*domain.Staff, 0, n)
	used := make(map[string]bool, n)

	for len(staff) < n {
		fullName := GenerateRandomChineseName(rng)
		username := GenerateUsernameFromChineseName(rng, fullName)
		if used[username] {
			continue
		}
		used[username] = true

		staff = append(staff, &domain.Staff{
			ID:       uuid.NewString(),
			Username: username,
			FullName: fullName,
			IsActive: true,
		})
	}

	return staff
}

func GenerateCounters(n int) []*domain.Counter {
	counters := make([]*domain.Counter, n)
	for i := range counters {
		counters[i] = &domain.Counter{
			ID:       uuid.NewString(),
			Name:     fmt.Sprintf("%d号窗口", i+1),
			IsActive: true,
		}
	}
	return counters
}

// WorkShiftDates 返回 [from, to] 中满足 rule 的日期，rule 为空时使用 DefaultRRule
func WorkShiftDates(from, to domain.Date, rule string) ([]domain.Date, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("结束日期 %s 早于开始日期 %s", to, from)
	}
	if rule == "" {
		rule = DefaultRRule
	}

	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("无法解析 rrule %q: %w", rule, err)
	}

	start := from.In(time.UTC)
	r.DTStart(start)

	dates := []domain.Date{}
	for _, occurrence := range r.Between(start, to.In(time.UTC), true) {
		dates = append(dates, domain.DateOf(occurrence))
	}
	return dates, nil
}

// GenerateWorkShifts 为每个日期生成上午班、下午班和全天班各一个
func GenerateWorkShifts(policy domain.Policy, dates []domain.Date) []*domain.WorkShiftTemplate {
	shifts := make([]*domain.WorkShiftTemplate, 0, len(dates)*len(domain.ShiftTypes()))
	for _, d := range dates {
		for _, st := range domain.ShiftTypes() {
			spec := policy.ShiftTypes[st]
			shifts = append(shifts, &domain.WorkShiftTemplate{
				ID:           uuid.NewString(),
				ShiftType:    st,
				StartTime:    spec.Start,
				EndTime:      spec.End,
				CalendarDate: d,
			})
		}
	}
	return shifts
}

// SeedStaff 插入 n 个随机员工，单条失败只记录日志，返回成功插入的数量
func SeedStaff(ctx context.Context, w Writer, rng *rand.Rand, n int) int {
	cnt := 0
	for _, s := range GenerateStaff(rng, n) {
		if err := w.CreateStaff(ctx, s); err != nil {
			slog.Error("无法插入员工", "username", s.Username, "error", err)
			continue
		}
		cnt++
	}

	slog.Info("插入员工成功", "count", cnt)
	return cnt
}

func SeedCounters(ctx context.Context, w Writer, n int) int {
	cnt := 0
	for _, c := range GenerateCounters(n) {
		if err := w.CreateCounter(ctx, c); err != nil {
			slog.Error("无法插入服务窗口", "name", c.Name, "error", err)
			continue
		}
		cnt++
	}

	slog.Info("插入服务窗口成功", "count", cnt)
	return cnt
}

// SeedWorkShifts 生成班次目录，已经存在的班次会被跳过
func SeedWorkShifts(ctx context.Context, w Writer, policy domain.Policy, from, to domain.Date, rule string) (int, error) {
	dates, err := WorkShiftDates(from, to, rule)
	if err != nil {
		return 0, err
	}

	cnt := 0
	for _, ws := range GenerateWorkShifts(policy, dates) {
		created, err := w.CreateWorkShift(ctx, ws)
		if err != nil {
			slog.Error("无法插入班次", "date", ws.CalendarDate.String(), "shiftType", ws.ShiftType, "error", err)
			continue
		}
		if created {
			cnt++
		}
	}

	slog.Info("插入班次成功", "count", cnt, "from", from.String(), "to", to.String())
	return cnt, nil
}
