package domain

import (
	"time"
)

type OperatorRole string

const (
	RoleCoordinator OperatorRole = "协调员"
	RoleStaff       OperatorRole = "员工"
)

// Employee 是员工目录系统同步过来的只读投影，
// 替班核心只消费这些字段，不负责维护它们的权威来源
type Employee struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Role       string `json:"role"`       // 岗位角色，如 前台、客服、运维
	SkillLevel int32  `json:"skillLevel"` // 1~5

	// 最近 30 天内的替班小时数，由目录系统维护，用于排序时的负载均衡
	RecentBackfillHours int32 `json:"recentBackfillHours"`

	// 每月替班小时数上限，0 表示使用角色默认值（默认值为 0 时表示不限制）
	MonthlyCapHours int32 `json:"monthlyCapHours"`

	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
