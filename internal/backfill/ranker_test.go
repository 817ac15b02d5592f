package backfill

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

func testParams() *Params {
	return &Params{
		RoleWeight:              0.4,
		WorkloadWeight:          0.35,
		SkillWeight:             0.25,
		ReferenceMaxRecentHours: 60,
		DefaultMonthlyCapHours:  0,
		EmergencyLeadTime:       48 * time.Hour,
		WeeklyOvertimeHours:     40,
		Holidays:                map[string]bool{"2025-12-25": true},
		CompatibleRoles:         map[string][]string{"前台": {"客服"}},
	}
}

func testRanker(store *MemoryStore, params *Params) *CandidateRanker {
	detector := NewConflictDetector(store)
	tracker := NewWorkloadTracker(store, store, params.DefaultMonthlyCapHours)
	return NewCandidateRanker(detector, tracker, store, params)
}

func testAbsence(employee *domain.Employee, start, end time.Time) *domain.AbsenceReference {
	return &domain.AbsenceReference{
		ID:            1,
		Kind:          domain.AbsencePTO,
		EmployeeID:    employee.ID,
		EmployeeName:  employee.FullName,
		EmployeeRole:  employee.Role,
		Window:        window(start, end),
		RequiredHours: 40,
	}
}

func TestRankDeterminism(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	absent := store.AddEmployee(&domain.Employee{FullName: "刘静", Role: "前台", SkillLevel: 3, IsActive: true})
	for i := 0; i < 5; i++ {
		store.AddEmployee(&domain.Employee{FullName: "候选人", Role: "前台", SkillLevel: 3, RecentBackfillHours: 10, IsActive: true})
	}

	ranker := testRanker(store, testParams())
	absence := testAbsence(absent, date(2025, 12, 15), date(2025, 12, 20))

	first, err := ranker.Rank(context.Background(), absence)
	require.NoError(t, err)
	second, err := ranker.Rank(context.Background(), absence)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

// 分数相同时按员工 ID 升序
func TestRankTieBreakByEmployeeID(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	absent := store.AddEmployee(&domain.Employee{FullName: "刘静", Role: "前台", SkillLevel: 3, IsActive: true})
	a := store.AddEmployee(&domain.Employee{FullName: "陈杰", Role: "前台", SkillLevel: 3, RecentBackfillHours: 10, IsActive: true})
	b := store.AddEmployee(&domain.Employee{FullName: "杨丽", Role: "前台", SkillLevel: 3, RecentBackfillHours: 10, IsActive: true})

	ranker := testRanker(store, testParams())
	scores, err := ranker.Rank(context.Background(), testAbsence(absent, date(2025, 12, 15), date(2025, 12, 20)))
	require.NoError(t, err)

	require.Len(t, scores, 2)
	require.Equal(t, scores[0].Score, scores[1].Score)
	require.Equal(t, a.ID, scores[0].EmployeeID)
	require.Equal(t, b.ID, scores[1].EmployeeID)
}

func TestRankExcludesAbsentEmployee(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	absent := store.AddEmployee(&domain.Employee{FullName: "刘静", Role: "前台", SkillLevel: 3, IsActive: true})
	store.AddEmployee(&domain.Employee{FullName: "陈杰", Role: "前台", SkillLevel: 3, IsActive: true})

	ranker := testRanker(store, testParams())
	scores, err := ranker.Rank(context.Background(), testAbsence(absent, date(2025, 12, 15), date(2025, 12, 20)))
	require.NoError(t, err)

	require.Len(t, scores, 1)
	require.NotEqual(t, absent.ID, scores[0].EmployeeID)
}

// 负载较轻的员工排在前面
func TestRankPrefersLighterWorkload(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	absent := store.AddEmployee(&domain.Employee{FullName: "刘静", Role: "前台", SkillLevel: 3, IsActive: true})
	busy := store.AddEmployee(&domain.Employee{FullName: "陈杰", Role: "前台", SkillLevel: 3, RecentBackfillHours: 50, IsActive: true})
	idle := store.AddEmployee(&domain.Employee{FullName: "杨丽", Role: "前台", SkillLevel: 3, RecentBackfillHours: 0, IsActive: true})

	ranker := testRanker(store, testParams())
	scores, err := ranker.Rank(context.Background(), testAbsence(absent, date(2025, 12, 15), date(2025, 12, 20)))
	require.NoError(t, err)

	require.Equal(t, idle.ID, scores[0].EmployeeID)
	require.Equal(t, busy.ID, scores[1].EmployeeID)
}

// 硬性筛选按 冲突、容量、岗位 的顺序报告第一条未通过的原因
func TestRankIneligibilityReasons(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	absent := store.AddEmployee(&domain.Employee{FullName: "刘静", Role: "前台", SkillLevel: 3, IsActive: true})

	// 时间冲突的候选人（同时岗位也不匹配，应该报冲突）
	conflicted := store.AddEmployee(&domain.Employee{FullName: "陈杰", Role: "运维", SkillLevel: 3, IsActive: true})
	require.NoError(t, store.CreateAssignment(context.Background(), &domain.BackfillAssignment{
		EmployeeID:     conflicted.ID,
		Window:         window(date(2025, 12, 16), date(2025, 12, 18)),
		EstimatedHours: 8,
		Status:         domain.StatusConfirmed,
	}, 0, false))

	// 超出月度上限的候选人
	overloaded := store.AddEmployee(&domain.Employee{FullName: "杨丽", Role: "前台", SkillLevel: 3, MonthlyCapHours: 40, IsActive: true})
	require.NoError(t, store.CreateAssignment(context.Background(), &domain.BackfillAssignment{
		EmployeeID:     overloaded.ID,
		Window:         window(date(2025, 12, 1), date(2025, 12, 3)),
		EstimatedHours: 35,
		Status:         domain.StatusConfirmed,
	}, 40, false))

	// 岗位不匹配且缺勤不允许跨岗
	mismatched := store.AddEmployee(&domain.Employee{FullName: "赵勇", Role: "运维", SkillLevel: 3, IsActive: true})

	eligible := store.AddEmployee(&domain.Employee{FullName: "黄敏", Role: "前台", SkillLevel: 3, IsActive: true})

	ranker := testRanker(store, testParams())
	scores, err := ranker.Rank(context.Background(), testAbsence(absent, date(2025, 12, 15), date(2025, 12, 20)))
	require.NoError(t, err)
	require.Len(t, scores, 4)

	byID := make(map[int64]domain.CandidateScore)
	for _, s := range scores {
		byID[s.EmployeeID] = s
	}

	require.False(t, byID[conflicted.ID].IsEligible)
	require.Equal(t, ReasonConflict, byID[conflicted.ID].IneligibilityReason)

	require.False(t, byID[overloaded.ID].IsEligible)
	require.Equal(t, ReasonOverCapacity, byID[overloaded.ID].IneligibilityReason)

	require.False(t, byID[mismatched.ID].IsEligible)
	require.Equal(t, ReasonRoleMismatch, byID[mismatched.ID].IneligibilityReason)

	// 合格的排在所有不合格的前面
	require.True(t, scores[0].IsEligible)
	require.Equal(t, eligible.ID, scores[0].EmployeeID)
}

// 允许跨岗时相容岗位可用但分数低于同岗位
func TestRankCrossRole(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	absent := store.AddEmployee(&domain.Employee{FullName: "刘静", Role: "前台", SkillLevel: 3, IsActive: true})
	sameRole := store.AddEmployee(&domain.Employee{FullName: "陈杰", Role: "前台", SkillLevel: 3, IsActive: true})
	crossRole := store.AddEmployee(&domain.Employee{FullName: "杨丽", Role: "客服", SkillLevel: 3, IsActive: true})

	ranker := testRanker(store, testParams())

	absence := testAbsence(absent, date(2025, 12, 15), date(2025, 12, 20))
	absence.AllowCrossRole = true

	scores, err := ranker.Rank(context.Background(), absence)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	require.Equal(t, sameRole.ID, scores[0].EmployeeID)
	require.True(t, scores[0].IsEligible)
	require.Equal(t, crossRole.ID, scores[1].EmployeeID)
	require.True(t, scores[1].IsEligible)
	require.Greater(t, scores[0].Score, scores[1].Score)
}

// 技能不足不是硬性筛选，只降低分数
func TestRankSkillBelowRequirement(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	absent := store.AddEmployee(&domain.Employee{FullName: "刘静", Role: "前台", SkillLevel: 3, IsActive: true})
	junior := store.AddEmployee(&domain.Employee{FullName: "陈杰", Role: "前台", SkillLevel: 1, IsActive: true})
	senior := store.AddEmployee(&domain.Employee{FullName: "杨丽", Role: "前台", SkillLevel: 4, IsActive: true})

	ranker := testRanker(store, testParams())

	absence := testAbsence(absent, date(2025, 12, 15), date(2025, 12, 20))
	absence.RequiredSkillLevel = 3

	scores, err := ranker.Rank(context.Background(), absence)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	require.Equal(t, senior.ID, scores[0].EmployeeID)
	require.Equal(t, junior.ID, scores[1].EmployeeID)
	require.True(t, scores[1].IsEligible)
	require.Greater(t, scores[0].Score, scores[1].Score)
}
