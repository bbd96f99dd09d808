package domain

const (
	RuleWeeklyCap          = "weekly_cap"
	RuleDuplicateShift     = "duplicate_shift"
	RuleShiftTypeExclusive = "shift_type_exclusive"
	RuleMonthlyCap         = "monthly_cap"
	RuleTemplateMismatch   = "template_mismatch"
)

type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type ValidationResult struct {
	IsValid    bool        `json:"isValid"`
	Violations []Violation `json:"violations"`
}

func (r ValidationResult) Rules() []string {
	rules := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		rules = append(rules, v.Rule)
	}
	return rules
}

func (r ValidationResult) HasRule(rule string) bool {
	for _, v := range r.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}
