package calendar

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

// Period 是一个闭区间 [Start, End]，按日历日期比较
type Period struct {
	Start domain.Date `json:"start"`
	End   domain.Date `json:"end"`
}

func (p Period) Contains(d domain.Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// Bounds 返回区间在 loc 时区下的起止时刻，起点为 00:00:00，终点为 23:59:59
func (p Period) Bounds(loc *time.Location) (time.Time, time.Time) {
	start := p.Start.In(loc)
	// 夏令时切换的那天不是 24 小时，直接按墙上时间构造
	end := time.Date(p.End.Year(), p.End.Month(), p.End.Day(), 23, 59, 59, 0, loc)
	return start, end
}

func (p Period) Days() []domain.Date {
	var days []domain.Date
	for d := p.Start; !d.After(p.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

type Mode string

const (
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeWeek, ModeMonth:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("未知的统计周期: %q", s)
	}
}

// WeekRange 返回 date 所在的周（周一到周六）。
// 周日归属于前一个周一开始的那一周，因此周日本身不在返回的区间内
func WeekRange(date domain.Date) Period {
	offset := (int(date.Weekday()) + 6) % 7 // 周一为 0，周日为 6
	start := date.AddDays(-offset)
	return Period{Start: start, End: start.AddDays(5)}
}

// MonthRange 返回 date 所在月份的第一天到最后一天
func MonthRange(date domain.Date) Period {
	start := domain.NewDate(date.Year(), date.Month(), 1)
	return Period{Start: start, End: start.AddMonths(1).AddDays(-1)}
}

// Resolve 按 mode 返回 date 所在的统计窗口，未知 mode 按周处理
func Resolve(mode Mode, date domain.Date) Period {
	if mode == ModeMonth {
		return MonthRange(date)
	}
	return WeekRange(date)
}
