package backfill

import (
	"fmt"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

// 所有业务错误都是带字段的值类型，调用方用 errors.As 区分处理，
// 每个操作可能返回的错误种类见各方法注释

// ValidationError 表示调用方传入的参数不合法，不应该重试
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError 表示员工在目标时间段内已有未结束的替班安排
type ConflictError struct {
	EmployeeID              int64 `json:"employeeID"`
	ConflictingAssignmentID int64 `json:"conflictingAssignmentID"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("员工 %d 在该时间段已有替班安排（冲突安排 %d）", e.EmployeeID, e.ConflictingAssignmentID)
}

// CapacityExceededError 表示创建安排会使员工超出月度替班小时数上限，
// 带上当前值和上限，方便协调员决定是否放行
type CapacityExceededError struct {
	EmployeeID int64  `json:"employeeID"`
	Month      string `json:"month"`
	Current    int32  `json:"current"`
	Cap        int32  `json:"cap"`
	Additional int32  `json:"additional"`
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("员工 %d 在 %s 的替班小时数将超出上限（当前 %d，上限 %d，新增 %d）", e.EmployeeID, e.Month, e.Current, e.Cap, e.Additional)
}

// ConcurrencyError 表示乐观并发校验失败，调用方重新读取后可以安全重试
type ConcurrencyError struct {
	AssignmentID    int64 `json:"assignmentID"`
	ExpectedVersion int32 `json:"expectedVersion"`
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("安排 %d 已被其他操作修改，请重新读取后重试（期望版本 %d）", e.AssignmentID, e.ExpectedVersion)
}

// InvalidTransitionError 表示状态机不允许的迁移，说明调用方逻辑有误或竞争失败
type InvalidTransitionError struct {
	From   domain.AssignmentStatus `json:"from"`
	Action string                  `json:"action"`
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("安排当前状态为 %s，不允许执行 %s 操作", e.From, e.Action)
}
