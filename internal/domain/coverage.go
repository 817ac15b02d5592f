package domain

type CapacityStatus string

const (
	CapacityNormal      CapacityStatus = "normal"
	CapacityApproaching CapacityStatus = "approaching"
	CapacityAtLimit     CapacityStatus = "at_limit"
)

// WorkloadWindow 是某个员工在某个自然月的工作量视图，
// 永远从当前的安排集合中重新推导，不单独持久化
type WorkloadWindow struct {
	EmployeeID     int64          `json:"employeeID"`
	Month          string         `json:"month"` // 2006-01
	ConfirmedHours int32          `json:"confirmedHours"`
	PendingHours   int32          `json:"pendingHours"`
	CapHours       int32          `json:"capHours"` // 0 表示不限制
	Status         CapacityStatus `json:"status"`
}

// CoverageSummary 是某条缺勤记录的覆盖情况汇总，同样是派生视图
type CoverageSummary struct {
	AbsenceID      int64   `json:"absenceID"`
	RequiredHours  int32   `json:"requiredHours"`
	ConfirmedHours int32   `json:"confirmedHours"`
	PendingHours   int32   `json:"pendingHours"`
	RejectedCount  int32   `json:"rejectedCount"`
	IsFullyCovered bool    `json:"isFullyCovered"`
	EstimatedCost  float64 `json:"estimatedCost"`
	ActualCost     float64 `json:"actualCost"`
}
