package backfill

import (
	"context"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

// ConflictDetector 判断员工在某个时间段内是否已有未结束的替班安排。
// 这里的读取只用于排序和展示，创建时的权威检查在存储层的原子操作内重做一次
type ConflictDetector struct {
	store AssignmentStore
}

func NewConflictDetector(store AssignmentStore) *ConflictDetector {
	return &ConflictDetector{store: store}
}

// HasConflict 返回重叠的安排 ID（用于错误信息），没有冲突时返回 (0, false)。
// excludeID 传 0 表示不排除任何安排
func (d *ConflictDetector) HasConflict(ctx context.Context, employeeID int64, window domain.DateWindow, excludeID int64) (int64, bool, error) {
	existing, err := d.store.ListAssignmentsByEmployee(ctx, employeeID)
	if err != nil {
		return 0, false, err
	}

	conflictID, ok := FindConflict(existing, window, excludeID)
	return conflictID, ok, nil
}
