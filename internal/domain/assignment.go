package domain

import (
	"fmt"
	"time"
)

type ShiftType string

const (
	ShiftMorning   ShiftType = "Morning"
	ShiftAfternoon ShiftType = "Afternoon"
	ShiftFullDay   ShiftType = "FullDay"
)

var shiftTypes = [...]ShiftType{ShiftMorning, ShiftAfternoon, ShiftFullDay}

// ShiftTypes 按固定顺序返回所有班次类型，每次返回新的切片
func ShiftTypes() []ShiftType {
	list := shiftTypes
	return list[:]
}

func ParseShiftType(s string) (ShiftType, error) {
	for _, st := range shiftTypes {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("未知的班次类型: %q", s)
}

// IsHalfDay 上午班和下午班统称为半天班
func (s ShiftType) IsHalfDay() bool {
	return s == ShiftMorning || s == ShiftAfternoon
}

// AssignmentStatus 用状态而不是布尔值表示软删除，方便以后加入签到等状态
type AssignmentStatus string

const (
	StatusScheduled AssignmentStatus = "scheduled"
	StatusDeleted   AssignmentStatus = "deleted"
)

type ShiftAssignment struct {
	ID          string           `json:"id"`
	StaffID     string           `json:"staffID"`
	WorkShiftID string           `json:"workShiftID"`
	CounterID   string           `json:"counterID"`
	WorkDate    Date             `json:"workDate"`
	ShiftType   ShiftType        `json:"shiftType"`
	Status      AssignmentStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	DeletedAt   *time.Time       `json:"deletedAt,omitempty"`
}

func (a ShiftAssignment) IsDeleted() bool {
	return a.Status == StatusDeleted
}

// Candidate 是待校验的排班
type Candidate struct {
	WorkDate    Date      `json:"workDate"`
	WorkShiftID string    `json:"workShiftID"`
	ShiftType   ShiftType `json:"shiftType"`
}
