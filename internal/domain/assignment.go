package domain

import "time"

type AssignmentStatus string

const (
	StatusSuggested           AssignmentStatus = "suggested"
	StatusPendingConfirmation AssignmentStatus = "pending_confirmation"
	StatusConfirmed           AssignmentStatus = "confirmed"
	StatusRejected            AssignmentStatus = "rejected"
	StatusCancelled           AssignmentStatus = "cancelled"
	StatusCompleted           AssignmentStatus = "completed"
)

// legalTransitions 枚举了状态机允许的所有迁移，表之外的一律非法
var legalTransitions = map[AssignmentStatus][]AssignmentStatus{
	StatusSuggested:           {StatusPendingConfirmation},
	StatusPendingConfirmation: {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed:           {StatusCompleted, StatusCancelled},
	StatusRejected:            {},
	StatusCancelled:           {},
	StatusCompleted:           {},
}

func (s AssignmentStatus) CanTransitionTo(t AssignmentStatus) bool {
	for _, next := range legalTransitions[s] {
		if next == t {
			return true
		}
	}
	return false
}

// IsTerminal 返回该状态是否为终态
func (s AssignmentStatus) IsTerminal() bool {
	return len(legalTransitions[s]) == 0
}

// IsActive 返回该状态是否占用员工的时间段，
// 只有非终态的安排才参与冲突检测和工作量统计
func (s AssignmentStatus) IsActive() bool {
	return !s.IsTerminal()
}

type PremiumType string

const (
	PremiumNone             PremiumType = "none"
	PremiumOvertime         PremiumType = "overtime"
	PremiumHoliday          PremiumType = "holiday"
	PremiumTrainingCoverage PremiumType = "training_coverage"
	PremiumEmergency        PremiumType = "emergency"
)

// BackfillAssignment 是替班核心唯一的可变实体。
// 被替班者和替班者的姓名、岗位在创建时做快照，
// 即使目录记录之后被修改，历史安排的审计信息也不会变
type BackfillAssignment struct {
	ID        int64 `json:"id"`
	AbsenceID int64 `json:"absenceID"`

	AbsentEmployeeName string `json:"absentEmployeeName"`
	AbsentEmployeeRole string `json:"absentEmployeeRole"`

	EmployeeID   int64  `json:"employeeID"`
	EmployeeName string `json:"employeeName"`
	EmployeeRole string `json:"employeeRole"`

	Window         DateWindow  `json:"window"`
	EstimatedHours int32       `json:"estimatedHours"`
	ActualHours    *int32      `json:"actualHours"`
	PremiumType    PremiumType `json:"premiumType"`

	Status          AssignmentStatus `json:"status"`
	RejectionReason *string          `json:"rejectionReason"`

	// 创建时超出了月度上限但协调员显式放行
	OverCapacity bool `json:"overCapacity"`

	AssignerID  int64  `json:"assignerID"`
	ConfirmerID *int64 `json:"confirmerID"` // 确认或拒绝操作者

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int32     `json:"version"`
}

// CandidateScore 是候选人排序的输出，不合格的候选人也会保留在列表中，
// 并带上第一条未通过的筛选原因，方便前端展示
type CandidateScore struct {
	EmployeeID          int64   `json:"employeeID"`
	FullName            string  `json:"fullName"`
	Score               float64 `json:"score"`
	IsEligible          bool    `json:"isEligible"`
	IneligibilityReason string  `json:"ineligibilityReason,omitempty"`
}
