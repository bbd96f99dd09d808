package validator

import (
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

// Rule 是一条排班约束。Check 返回违反时的提示信息，以及是否违反
type Rule interface {
	Name() string
	Check(existing []domain.ShiftAssignment, candidate domain.Candidate) (string, bool)
}

// Validator 依次执行所有规则，不会在第一条失败的规则处停下。
// 它没有任何副作用，可以在任意 goroutine 中并发调用
type Validator struct {
	policy domain.Policy
	rules  []Rule
}

func New(policy domain.Policy) *Validator {
	return &Validator{
		policy: policy,
		rules: []Rule{
			weeklyCap{max: policy.MaxShiftsPerWeek},
			duplicateShift{},
			shiftTypeExclusive{policy: policy},
			monthlyCap{max: policy.MaxShiftsPerMonth},
		},
	}
}

// NewWithRules 使用自定义的规则集合
func NewWithRules(policy domain.Policy, rules ...Rule) *Validator {
	return &Validator{policy: policy, rules: rules}
}

func (v *Validator) Policy() domain.Policy {
	return v.policy
}

// Validate 校验 candidate 能否加入 existing。existing 必须只包含同一个员工的排班
func (v *Validator) Validate(existing []domain.ShiftAssignment, candidate domain.Candidate) domain.ValidationResult {
	result := domain.ValidationResult{
		IsValid:    true,
		Violations: make([]domain.Violation, 0),
	}

	for _, rule := range v.rules {
		msg, violated := rule.Check(existing, candidate)
		if !violated {
			continue
		}
		result.IsValid = false
		result.Violations = append(result.Violations, domain.Violation{
			Rule:    rule.Name(),
			Message: msg,
		})
	}

	return result
}
