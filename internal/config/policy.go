package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// policyDocument 是 POLICY_FILE 的格式，例如：
//
//	maxShiftsPerWeek: 6
//	maxShiftsPerMonth: 26
//	shiftTypes:
//	  Morning: {label: 上午班, start: "07:00", end: "11:30"}
type policyDocument struct {
	MaxShiftsPerWeek  int                          `yaml:"maxShiftsPerWeek" validate:"min=1"`
	MaxShiftsPerMonth int                          `yaml:"maxShiftsPerMonth" validate:"min=1,gtefield=MaxShiftsPerWeek"`
	ShiftTypes        map[string]shiftTypeDocument `yaml:"shiftTypes" validate:"required,dive,keys,oneof=Morning Afternoon FullDay,endkeys"`
}

type shiftTypeDocument struct {
	Label string `yaml:"label"`
	Start string `yaml:"start" validate:"required,datetime=15:04"`
	End   string `yaml:"end" validate:"required,datetime=15:04"`
}

// LoadPolicy 合并默认值、环境变量和 POLICY_FILE，校验后转换为 domain.Policy
func (cfg *Config) LoadPolicy() (domain.Policy, error) {
	doc := policyDocument{
		MaxShiftsPerWeek:  cfg.Policy.MaxShiftsPerWeek,
		MaxShiftsPerMonth: cfg.Policy.MaxShiftsPerMonth,
		ShiftTypes:        make(map[string]shiftTypeDocument),
	}
	for st, spec := range domain.DefaultPolicy().ShiftTypes {
		doc.ShiftTypes[string(st)] = shiftTypeDocument{Label: spec.Label, Start: spec.Start, End: spec.End}
	}

	if cfg.Policy.File != "" {
		data, err := os.ReadFile(cfg.Policy.File)
		if err != nil {
			return domain.Policy{}, fmt.Errorf("无法读取排班策略文件: %w", err)
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return domain.Policy{}, fmt.Errorf("无法解析排班策略文件: %w", err)
		}
	}

	if err := doc.validate(); err != nil {
		return domain.Policy{}, err
	}

	policy := domain.Policy{
		MaxShiftsPerWeek:  doc.MaxShiftsPerWeek,
		MaxShiftsPerMonth: doc.MaxShiftsPerMonth,
		ShiftTypes:        make(map[domain.ShiftType]domain.ShiftTypeSpec, len(doc.ShiftTypes)),
	}
	for name, spec := range doc.ShiftTypes {
		policy.ShiftTypes[domain.ShiftType(name)] = domain.ShiftTypeSpec{Label: spec.Label, Start: spec.Start, End: spec.End}
	}

	return policy, nil
}

func (doc *policyDocument) validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("排班策略不合法: %w", err)
	}

	for _, st := range domain.ShiftTypes() {
		spec, ok := doc.ShiftTypes[string(st)]
		if !ok {
			return fmt.Errorf("排班策略缺少班次类型 %s", st)
		}

		// 格式已经由 datetime 校验过
		start, _ := time.Parse("15:04", spec.Start)
		end, _ := time.Parse("15:04", spec.End)
		if !end.After(start) {
			return fmt.Errorf("班次类型 %s 的结束时间 %s 必须晚于开始时间 %s", st, spec.End, spec.Start)
		}
	}

	return nil
}
