package backfill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func window(start, end time.Time) domain.DateWindow {
	return domain.DateWindow{Start: start, End: end}
}

func TestWeekStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday", date(2025, 12, 15), date(2025, 12, 15)},
		{"wednesday", date(2025, 12, 17), date(2025, 12, 15)},
		{"sunday", date(2025, 12, 21), date(2025, 12, 15)},
		{"cross month", date(2025, 12, 1), date(2025, 12, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, WeekStart(tt.in))
		})
	}
}

func TestFindConflict(t *testing.T) {
	t.Parallel()

	existing := []*domain.BackfillAssignment{
		{ID: 1, Window: window(date(2025, 12, 16), date(2025, 12, 18)), Status: domain.StatusConfirmed},
		{ID: 2, Window: window(date(2025, 12, 1), date(2025, 12, 3)), Status: domain.StatusRejected},
	}

	// 与已确认安排重叠
	conflictID, ok := FindConflict(existing, window(date(2025, 12, 17), date(2025, 12, 19)), 0)
	require.True(t, ok)
	require.Equal(t, int64(1), conflictID)

	// 起止日期相邻也算重叠（闭区间）
	_, ok = FindConflict(existing, window(date(2025, 12, 18), date(2025, 12, 20)), 0)
	require.True(t, ok)

	// 终态安排不参与冲突检测
	_, ok = FindConflict(existing, window(date(2025, 12, 1), date(2025, 12, 3)), 0)
	require.False(t, ok)

	// 排除自己
	_, ok = FindConflict(existing, window(date(2025, 12, 17), date(2025, 12, 19)), 1)
	require.False(t, ok)

	// 完全不重叠
	_, ok = FindConflict(existing, window(date(2025, 12, 19), date(2025, 12, 20)), 0)
	require.False(t, ok)
}

func TestActiveHoursInMonth(t *testing.T) {
	t.Parallel()

	existing := []*domain.BackfillAssignment{
		{Window: window(date(2025, 12, 1), date(2025, 12, 3)), EstimatedHours: 20, Status: domain.StatusConfirmed},
		{Window: window(date(2025, 12, 10), date(2025, 12, 12)), EstimatedHours: 15, Status: domain.StatusPendingConfirmation},
		{Window: window(date(2025, 12, 20), date(2025, 12, 22)), EstimatedHours: 10, Status: domain.StatusRejected},
		{Window: window(date(2025, 11, 1), date(2025, 11, 3)), EstimatedHours: 8, Status: domain.StatusConfirmed},
	}

	confirmed, pending := ActiveHoursInMonth(existing, date(2025, 12, 1))
	require.Equal(t, int32(20), confirmed)
	require.Equal(t, int32(15), pending)

	confirmed, pending = ActiveHoursInMonth(existing, date(2025, 11, 15))
	require.Equal(t, int32(8), confirmed)
	require.Equal(t, int32(0), pending)
}

// 跨月的安排小时数全额计入覆盖到的每一个月
func TestActiveHoursInMonthCrossMonth(t *testing.T) {
	t.Parallel()

	existing := []*domain.BackfillAssignment{
		{Window: window(date(2025, 11, 28), date(2025, 12, 2)), EstimatedHours: 16, Status: domain.StatusConfirmed},
	}

	confirmed, _ := ActiveHoursInMonth(existing, date(2025, 11, 1))
	require.Equal(t, int32(16), confirmed)

	confirmed, _ = ActiveHoursInMonth(existing, date(2025, 12, 1))
	require.Equal(t, int32(16), confirmed)
}

func TestCheckCreateConflictFirst(t *testing.T) {
	t.Parallel()

	existing := []*domain.BackfillAssignment{
		{ID: 7, EmployeeID: 3, Window: window(date(2025, 12, 16), date(2025, 12, 18)), EstimatedHours: 38, Status: domain.StatusConfirmed},
	}
	a := &domain.BackfillAssignment{
		EmployeeID:     3,
		Window:         window(date(2025, 12, 17), date(2025, 12, 19)),
		EstimatedHours: 10,
	}

	// 冲突和超限同时存在时先报冲突
	err := CheckCreate(existing, a, 40, false)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Equal(t, int64(7), conflictErr.ConflictingAssignmentID)
}

func TestCheckCreateCapacity(t *testing.T) {
	t.Parallel()

	existing := []*domain.BackfillAssignment{
		{ID: 1, EmployeeID: 5, Window: window(date(2025, 12, 1), date(2025, 12, 5)), EstimatedHours: 35, Status: domain.StatusConfirmed},
	}
	a := &domain.BackfillAssignment{
		EmployeeID:     5,
		Window:         window(date(2025, 12, 10), date(2025, 12, 12)),
		EstimatedHours: 10,
	}

	err := CheckCreate(existing, a, 40, false)
	var capErr *CapacityExceededError
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, int32(35), capErr.Current)
	require.Equal(t, int32(40), capErr.Cap)
	require.Equal(t, int32(10), capErr.Additional)
	require.Equal(t, "2025-12", capErr.Month)
	require.False(t, a.OverCapacity)

	// 协调员放行后不报错但标记超限
	require.NoError(t, CheckCreate(existing, a, 40, true))
	require.True(t, a.OverCapacity)
}

func TestCheckCreateNoCap(t *testing.T) {
	t.Parallel()

	existing := []*domain.BackfillAssignment{
		{ID: 1, EmployeeID: 5, Window: window(date(2025, 12, 1), date(2025, 12, 5)), EstimatedHours: 200, Status: domain.StatusConfirmed},
	}
	a := &domain.BackfillAssignment{
		EmployeeID:     5,
		Window:         window(date(2025, 12, 10), date(2025, 12, 12)),
		EstimatedHours: 100,
	}

	// 上限为 0 表示不限制
	require.NoError(t, CheckCreate(existing, a, 0, false))
	require.False(t, a.OverCapacity)
}
