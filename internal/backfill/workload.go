package backfill

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

// WorkloadTracker 维护员工的月度工作量视图。
// 视图永远从当前安排集合推导，避免出现第二份会漂移的事实来源
type WorkloadTracker struct {
	store      AssignmentStore
	directory  EmployeeDirectory
	defaultCap int32
}

func NewWorkloadTracker(store AssignmentStore, directory EmployeeDirectory, defaultCap int32) *WorkloadTracker {
	return &WorkloadTracker{
		store:      store,
		directory:  directory,
		defaultCap: defaultCap,
	}
}

// ClassifyCapacity 按 (已确认+待确认)/上限 的比例分类容量状态，
// 上限为 0 表示不限制，永远返回 normal
func ClassifyCapacity(confirmed int32, pending int32, capHours int32) domain.CapacityStatus {
	if capHours <= 0 {
		return domain.CapacityNormal
	}

	ratio := float64(confirmed+pending) / float64(capHours)
	switch {
	case ratio >= 1.0:
		return domain.CapacityAtLimit
	case ratio >= 0.75:
		return domain.CapacityApproaching
	default:
		return domain.CapacityNormal
	}
}

// effectiveCap 返回员工的月度上限，员工没有单独配置时使用角色默认值
func (t *WorkloadTracker) effectiveCap(e *domain.Employee) int32 {
	if e.MonthlyCapHours > 0 {
		return e.MonthlyCapHours
	}
	return t.defaultCap
}

// GetWorkload 返回员工在指定月份的工作量视图，month 取该月任意一天即可
func (t *WorkloadTracker) GetWorkload(ctx context.Context, employeeID int64, month time.Time) (*domain.WorkloadWindow, error) {
	employee, err := t.directory.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	existing, err := t.store.ListAssignmentsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	confirmed, pending := ActiveHoursInMonth(existing, month)
	capHours := t.effectiveCap(employee)

	return &domain.WorkloadWindow{
		EmployeeID:     employeeID,
		Month:          month.Format("2006-01"),
		ConfirmedHours: confirmed,
		PendingHours:   pending,
		CapHours:       capHours,
		Status:         ClassifyCapacity(confirmed, pending, capHours),
	}, nil
}

// WouldExceedCap 是创建安排前的容量预检，返回是否超限以及当前值和上限。
// 注意这只是预检，权威检查在存储层的原子创建中完成
func (t *WorkloadTracker) WouldExceedCap(ctx context.Context, employeeID int64, month time.Time, additional int32) (bool, int32, int32, error) {
	employee, err := t.directory.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return false, 0, 0, err
	}

	existing, err := t.store.ListAssignmentsByEmployee(ctx, employeeID)
	if err != nil {
		return false, 0, 0, err
	}

	confirmed, pending := ActiveHoursInMonth(existing, month)
	current := confirmed + pending
	capHours := t.effectiveCap(employee)

	if capHours <= 0 {
		return false, current, capHours, nil
	}

	return current+additional > capHours, current, capHours, nil
}
