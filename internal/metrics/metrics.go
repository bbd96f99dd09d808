package metrics

import "time"

const (
	OpAssign   = "assign"
	OpUnassign = "unassign"

	OutcomeOK               = "ok"
	OutcomeValidationFailed = "validation_failed"
	OutcomeConflict         = "conflict"
	OutcomeNotFound         = "not_found"
	OutcomeError            = "error"
)

// Recorder 记录排班操作的结果
type Recorder interface {
	ObserveOperation(op, outcome string, duration time.Duration)
	ObserveViolation(rule string)
}

type Nop struct{}

func (Nop) ObserveOperation(string, string, time.Duration) {}
func (Nop) ObserveViolation(string)                        {}
