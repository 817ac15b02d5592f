package backfill

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

// 缺勤要求 40 小时，两个候选人各替 20 小时并且都已确认，覆盖完整
func TestCoverageFullyCovered(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	svc := testService(store)

	absent := store.AddEmployee(&domain.Employee{FullName: "刘静", Role: "前台", SkillLevel: 3, IsActive: true})
	first := store.AddEmployee(&domain.Employee{FullName: "陈杰", Role: "前台", SkillLevel: 3, IsActive: true})
	second := store.AddEmployee(&domain.Employee{FullName: "杨丽", Role: "前台", SkillLevel: 3, IsActive: true})

	absence := testAbsence(absent, date(2025, 12, 15), date(2025, 12, 20))

	a1, err := svc.Assign(context.Background(), absence, first.ID, 20, false, 1)
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), a1.ID, a1.Version, first.ID)
	require.NoError(t, err)

	a2, err := svc.Assign(context.Background(), absence, second.ID, 20, false, 1)
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), a2.ID, a2.Version, second.ID)
	require.NoError(t, err)

	summary, err := svc.CoverageSummary(context.Background(), absence)
	require.NoError(t, err)

	require.Equal(t, int32(40), summary.RequiredHours)
	require.Equal(t, int32(40), summary.ConfirmedHours)
	require.Equal(t, int32(0), summary.PendingHours)
	require.True(t, summary.IsFullyCovered)
}

func TestCoverageArithmetic(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	rates := testRates()
	aggregator := NewCoverageAggregator(store, rates)

	absence := &domain.AbsenceReference{ID: 1, RequiredHours: 40}

	actual := int32(10)
	seed := []*domain.BackfillAssignment{
		{AbsenceID: 1, EmployeeID: 1, EmployeeRole: "前台", Window: window(date(2025, 12, 1), date(2025, 12, 2)), EstimatedHours: 12, Status: domain.StatusConfirmed, PremiumType: domain.PremiumNone},
		{AbsenceID: 1, EmployeeID: 2, EmployeeRole: "前台", Window: window(date(2025, 12, 3), date(2025, 12, 4)), EstimatedHours: 8, Status: domain.StatusCompleted, PremiumType: domain.PremiumHoliday, ActualHours: &actual},
		{AbsenceID: 1, EmployeeID: 3, EmployeeRole: "运维", Window: window(date(2025, 12, 5), date(2025, 12, 6)), EstimatedHours: 10, Status: domain.StatusPendingConfirmation, PremiumType: domain.PremiumNone},
		{AbsenceID: 1, EmployeeID: 4, EmployeeRole: "前台", Window: window(date(2025, 12, 7), date(2025, 12, 8)), EstimatedHours: 6, Status: domain.StatusRejected, PremiumType: domain.PremiumNone},
		{AbsenceID: 1, EmployeeID: 5, EmployeeRole: "前台", Window: window(date(2025, 12, 9), date(2025, 12, 10)), EstimatedHours: 6, Status: domain.StatusCancelled, PremiumType: domain.PremiumNone},
	}
	for _, a := range seed {
		require.NoError(t, store.CreateAssignment(context.Background(), a, 0, false))
	}

	summary, err := aggregator.Summarize(context.Background(), absence)
	require.NoError(t, err)

	// 已确认小时数 = confirmed + completed
	require.Equal(t, int32(20), summary.ConfirmedHours)
	require.Equal(t, int32(10), summary.PendingHours)
	require.Equal(t, int32(1), summary.RejectedCount)
	require.False(t, summary.IsFullyCovered)

	// 预估成本：12h*90 + 8h*90*2（节假日）+ 10h*100（运维用默认时薪）
	require.InDelta(t, 12*90+8*90*2+10*100, summary.EstimatedCost, 0.001)

	// 实际成本只统计已完成且上报了实际小时数的安排
	require.InDelta(t, 10*90*2, summary.ActualCost, 0.001)
}

func TestCoverageEmptyAbsence(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	aggregator := NewCoverageAggregator(store, testRates())

	summary, err := aggregator.Summarize(context.Background(), &domain.AbsenceReference{ID: 9, RequiredHours: 16})
	require.NoError(t, err)

	require.Equal(t, int32(0), summary.ConfirmedHours)
	require.Equal(t, int32(0), summary.PendingHours)
	require.Equal(t, int32(0), summary.RejectedCount)
	require.False(t, summary.IsFullyCovered)
	require.Zero(t, summary.EstimatedCost)
	require.Zero(t, summary.ActualCost)
}
