package domain

// WorkShiftTemplate 是某一天的某个班次，时间格式为 HH:MM
type WorkShiftTemplate struct {
	ID           string    `json:"id"`
	ShiftType    ShiftType `json:"shiftType"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	CalendarDate Date      `json:"calendarDate"`
}
