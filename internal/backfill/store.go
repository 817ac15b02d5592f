package backfill

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

// AssignmentStore 是替班安排的持久化接口。
// CreateAssignment 必须把冲突检查、容量检查和插入放在同一个原子操作中完成，
// 即对同一个员工的并发创建只能有一个通过检查，实现方式由存储层决定
// （postgres 实现锁住员工行，内存实现在互斥锁内完成检查和插入）。
// 检查不通过时返回 *ConflictError 或 *CapacityExceededError。
// UpdateAssignment 按版本号做条件更新，版本不匹配时返回 *ConcurrencyError。
type AssignmentStore interface {
	CreateAssignment(ctx context.Context, a *domain.BackfillAssignment, capHours int32, override bool) error
	GetAssignmentByID(ctx context.Context, id int64) (*domain.BackfillAssignment, error)
	ListAssignmentsByEmployee(ctx context.Context, employeeID int64) ([]*domain.BackfillAssignment, error)
	ListAssignmentsByAbsence(ctx context.Context, absenceID int64) ([]*domain.BackfillAssignment, error)
	UpdateAssignment(ctx context.Context, a *domain.BackfillAssignment) error
}

// EmployeeDirectory 是员工目录系统的只读投影
type EmployeeDirectory interface {
	GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error)
	ListActiveEmployees(ctx context.Context) ([]*domain.Employee, error)
}

// FindConflict 在同一员工的安排集合中查找与 window 重叠的非终态安排，
// excludeID 用于重新校验某个安排时跳过它自己，传 0 表示不跳过
func FindConflict(existing []*domain.BackfillAssignment, window domain.DateWindow, excludeID int64) (int64, bool) {
	for _, a := range existing {
		if a.ID == excludeID && excludeID != 0 {
			continue
		}
		if !a.Status.IsActive() {
			continue
		}
		if a.Window.Overlaps(window) {
			return a.ID, true
		}
	}
	return 0, false
}

// ActiveHoursInMonth 统计待确认和已确认安排在指定月份的预计小时数之和，
// 安排的起止区间只要覆盖该月的任意一天，预计小时数就全额计入该月
func ActiveHoursInMonth(existing []*domain.BackfillAssignment, month time.Time) (confirmed int32, pending int32) {
	for _, a := range existing {
		if !a.Window.IntersectsMonth(month) {
			continue
		}
		switch a.Status {
		case domain.StatusConfirmed:
			confirmed += a.EstimatedHours
		case domain.StatusPendingConfirmation:
			pending += a.EstimatedHours
		}
	}
	return confirmed, pending
}

// ActiveHoursInWeek 统计窗口起始日落在指定周（周一为第一天）内的
// 待确认和已确认安排的预计小时数之和，用于加班津贴的判定
func ActiveHoursInWeek(existing []*domain.BackfillAssignment, weekStart time.Time) int32 {
	var total int32
	for _, a := range existing {
		if a.Status != domain.StatusConfirmed && a.Status != domain.StatusPendingConfirmation {
			continue
		}
		if WeekStart(a.Window.Start).Equal(weekStart) {
			total += a.EstimatedHours
		}
	}
	return total
}

// WeekStart 返回 t 所在自然周的周一零点
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // 周一为 0
	return day.AddDate(0, 0, -offset)
}

// CheckCreate 是创建安排时的门禁检查，存储层在原子操作内调用它。
// existing 必须是该员工当前所有的安排。
// 超出上限且 override 为真时不报错，但会把安排标记为 over_capacity
func CheckCreate(existing []*domain.BackfillAssignment, a *domain.BackfillAssignment, capHours int32, override bool) error {
	if conflictID, ok := FindConflict(existing, a.Window, a.ID); ok {
		return &ConflictError{
			EmployeeID:              a.EmployeeID,
			ConflictingAssignmentID: conflictID,
		}
	}

	if capHours <= 0 {
		// 没有配置上限时不做容量限制
		return nil
	}

	for _, month := range a.Window.MonthsTouched() {
		confirmed, pending := ActiveHoursInMonth(existing, month)
		current := confirmed + pending
		if current+a.EstimatedHours > capHours {
			if !override {
				return &CapacityExceededError{
					EmployeeID: a.EmployeeID,
					Month:      month.Format("2006-01"),
					Current:    current,
					Cap:        capHours,
					Additional: a.EstimatedHours,
				}
			}
			a.OverCapacity = true
		}
	}

	return nil
}
