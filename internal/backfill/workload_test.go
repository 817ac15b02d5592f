package backfill

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

func TestClassifyCapacity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		confirmed int32
		pending   int32
		capHours  int32
		want      domain.CapacityStatus
	}{
		{"no cap", 100, 100, 0, domain.CapacityNormal},
		{"normal", 10, 10, 40, domain.CapacityNormal},
		{"just below approaching", 29, 0, 40, domain.CapacityNormal},
		{"approaching", 30, 0, 40, domain.CapacityApproaching},
		{"pending counts", 20, 10, 40, domain.CapacityApproaching},
		{"at limit", 40, 0, 40, domain.CapacityAtLimit},
		{"over limit", 35, 10, 40, domain.CapacityAtLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ClassifyCapacity(tt.confirmed, tt.pending, tt.capHours))
		})
	}
}

func TestGetWorkload(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	employee := store.AddEmployee(&domain.Employee{
		FullName:        "王伟",
		Role:            "前台",
		SkillLevel:      3,
		MonthlyCapHours: 40,
		IsActive:        true,
	})

	require.NoError(t, store.CreateAssignment(context.Background(), &domain.BackfillAssignment{
		EmployeeID:     employee.ID,
		Window:         window(date(2025, 12, 1), date(2025, 12, 3)),
		EstimatedHours: 20,
		Status:         domain.StatusConfirmed,
	}, 40, false))
	require.NoError(t, store.CreateAssignment(context.Background(), &domain.BackfillAssignment{
		EmployeeID:     employee.ID,
		Window:         window(date(2025, 12, 10), date(2025, 12, 12)),
		EstimatedHours: 15,
		Status:         domain.StatusPendingConfirmation,
	}, 40, false))

	tracker := NewWorkloadTracker(store, store, 0)

	workload, err := tracker.GetWorkload(context.Background(), employee.ID, date(2025, 12, 1))
	require.NoError(t, err)
	require.Equal(t, "2025-12", workload.Month)
	require.Equal(t, int32(20), workload.ConfirmedHours)
	require.Equal(t, int32(15), workload.PendingHours)
	require.Equal(t, int32(40), workload.CapHours)
	require.Equal(t, domain.CapacityApproaching, workload.Status)

	// 没有安排的月份
	workload, err = tracker.GetWorkload(context.Background(), employee.ID, date(2026, 1, 1))
	require.NoError(t, err)
	require.Equal(t, int32(0), workload.ConfirmedHours)
	require.Equal(t, int32(0), workload.PendingHours)
	require.Equal(t, domain.CapacityNormal, workload.Status)
}

func TestWouldExceedCap(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	employee := store.AddEmployee(&domain.Employee{
		FullName:        "李芳",
		Role:            "客服",
		SkillLevel:      2,
		MonthlyCapHours: 40,
		IsActive:        true,
	})

	require.NoError(t, store.CreateAssignment(context.Background(), &domain.BackfillAssignment{
		EmployeeID:     employee.ID,
		Window:         window(date(2025, 12, 1), date(2025, 12, 5)),
		EstimatedHours: 35,
		Status:         domain.StatusConfirmed,
	}, 40, false))

	tracker := NewWorkloadTracker(store, store, 0)

	exceeded, current, capHours, err := tracker.WouldExceedCap(context.Background(), employee.ID, date(2025, 12, 1), 10)
	require.NoError(t, err)
	require.True(t, exceeded)
	require.Equal(t, int32(35), current)
	require.Equal(t, int32(40), capHours)

	// 刚好到上限不算超出
	exceeded, _, _, err = tracker.WouldExceedCap(context.Background(), employee.ID, date(2025, 12, 1), 5)
	require.NoError(t, err)
	require.False(t, exceeded)
}

// 员工没有单独配置上限时使用角色默认值
func TestEffectiveCapDefault(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	employee := store.AddEmployee(&domain.Employee{
		FullName:   "张敏",
		Role:       "运维",
		SkillLevel: 4,
		IsActive:   true,
	})

	tracker := NewWorkloadTracker(store, store, 50)

	workload, err := tracker.GetWorkload(context.Background(), employee.ID, date(2025, 12, 1))
	require.NoError(t, err)
	require.Equal(t, int32(50), workload.CapHours)
}
