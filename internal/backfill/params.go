package backfill

import (
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

// Params 集中了替班核心的所有业务配置项，
// 数值不在代码里写死，由配置层提供（见 config 包的默认值）
type Params struct {
	RoleWeight     float64
	WorkloadWeight float64
	SkillWeight    float64
	// 负载均衡子分数的归一化基准
	ReferenceMaxRecentHours int32
	// 角色默认月度上限，0 表示不限制
	DefaultMonthlyCapHours int32
	EmergencyLeadTime      time.Duration
	WeeklyOvertimeHours    int32
	// 节假日集合，键为 2006-01-02 格式的日期
	Holidays map[string]bool
	// 岗位相容表：缺勤岗位 -> 允许跨岗替班的岗位集合
	CompatibleRoles map[string][]string
}

// ParseHolidays 把配置中的日期列表转成集合，非法日期直接跳过
func ParseHolidays(dates []string) map[string]bool {
	holidays := make(map[string]bool)
	for _, d := range dates {
		d = strings.TrimSpace(d)
		if _, err := time.Parse("2006-01-02", d); err != nil {
			continue
		}
		holidays[d] = true
	}
	return holidays
}

// ParseCompatibleRoles 把配置中 岗位:相容岗位1/相容岗位2 的映射展开成查询表
func ParseCompatibleRoles(raw map[string]string) map[string][]string {
	table := make(map[string][]string)
	for role, compatible := range raw {
		for _, c := range strings.Split(compatible, "/") {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			table[role] = append(table[role], c)
		}
	}
	return table
}

// PayrollRates 由薪酬系统提供时薪和津贴倍率，核心只负责乘起来
type PayrollRates interface {
	HourlyRate(role string) float64
	PremiumMultiplier(p domain.PremiumType) float64
}

// StaticRates 是 PayrollRates 的配置实现
type StaticRates struct {
	Default     float64
	PerRole     map[string]float64
	Multipliers map[domain.PremiumType]float64
}

func (r *StaticRates) HourlyRate(role string) float64 {
	if rate, ok := r.PerRole[role]; ok {
		return rate
	}
	return r.Default
}

func (r *StaticRates) PremiumMultiplier(p domain.PremiumType) float64 {
	if m, ok := r.Multipliers[p]; ok {
		return m
	}
	return 1
}
