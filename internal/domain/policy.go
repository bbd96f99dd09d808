package domain

import "time"

const (
	DefaultMaxShiftsPerWeek  = 6
	DefaultMaxShiftsPerMonth = 26
)

// ShiftTypeSpec 描述一种班次类型的时间段，时间格式为 HH:MM
type ShiftTypeSpec struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Policy 是排班校验所需的全部配置，由调用方在构造时注入
type Policy struct {
	MaxShiftsPerWeek  int                         `json:"maxShiftsPerWeek"`
	MaxShiftsPerMonth int                         `json:"maxShiftsPerMonth"`
	ShiftTypes        map[ShiftType]ShiftTypeSpec `json:"shiftTypes"`
}

func DefaultPolicy() Policy {
	return Policy{
		MaxShiftsPerWeek:  DefaultMaxShiftsPerWeek,
		MaxShiftsPerMonth: DefaultMaxShiftsPerMonth,
		ShiftTypes: map[ShiftType]ShiftTypeSpec{
			ShiftMorning:   {Label: "上午班", Start: "07:00", End: "11:30"},
			ShiftAfternoon: {Label: "下午班", Start: "13:00", End: "17:30"},
			ShiftFullDay:   {Label: "全天班", Start: "07:00", End: "17:30"},
		},
	}
}

// Duration 返回班次类型的时长，未知类型或格式错误时返回 0
func (p Policy) Duration(st ShiftType) time.Duration {
	spec, ok := p.ShiftTypes[st]
	if !ok {
		return 0
	}
	start, err := time.Parse("15:04", spec.Start)
	if err != nil {
		return 0
	}
	end, err := time.Parse("15:04", spec.End)
	if err != nil {
		return 0
	}
	return end.Sub(start)
}

func (p Policy) Label(st ShiftType) string {
	if spec, ok := p.ShiftTypes[st]; ok && spec.Label != "" {
		return spec.Label
	}
	return string(st)
}
