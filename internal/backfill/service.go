package backfill

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

// Service 是替班核心的门面，持有各个组件并管理安排的生命周期。
// 所有依赖通过构造函数注入接口，方便在测试中替换成内存实现
type Service struct {
	store     AssignmentStore
	directory EmployeeDirectory
	params    *Params

	detector   *ConflictDetector
	tracker    *WorkloadTracker
	ranker     *CandidateRanker
	classifier *PremiumClassifier
	aggregator *CoverageAggregator

	// 可注入的时钟，测试时固定时间
	now func() time.Time
}

func NewService(store AssignmentStore, directory EmployeeDirectory, params *Params, rates PayrollRates) *Service {
	detector := NewConflictDetector(store)
	tracker := NewWorkloadTracker(store, directory, params.DefaultMonthlyCapHours)

	return &Service{
		store:      store,
		directory:  directory,
		params:     params,
		detector:   detector,
		tracker:    tracker,
		ranker:     NewCandidateRanker(detector, tracker, directory, params),
		classifier: NewPremiumClassifier(params),
		aggregator: NewCoverageAggregator(store, rates),
		now:        time.Now,
	}
}

// WithClock 替换服务的时钟，仅测试使用
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetCandidates 返回按适合度排序的候选替班人列表，只读且幂等
func (s *Service) GetCandidates(ctx context.Context, absence *domain.AbsenceReference) ([]domain.CandidateScore, error) {
	return s.ranker.Rank(ctx, absence)
}

// Assign 为缺勤记录创建一条替班安排。
// 冲突和容量的权威检查在存储层的原子创建中完成，
// 即使排序阶段刚检查过也要重做，因为两次调用之间可能有并发写入。
// 可能返回 *ValidationError、*ConflictError、*CapacityExceededError
func (s *Service) Assign(ctx context.Context, absence *domain.AbsenceReference, candidateID int64, estimatedHours int32, overrideCapacity bool, assignerID int64) (*domain.BackfillAssignment, error) {
	if estimatedHours <= 0 {
		return nil, &ValidationError{Message: "预计替班小时数必须为正数"}
	}
	if candidateID == absence.EmployeeID {
		return nil, &ValidationError{Message: "不能安排被替班者给自己替班"}
	}

	candidate, err := s.directory.GetEmployeeByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !candidate.IsActive {
		return nil, &ValidationError{Message: "候选员工已离职"}
	}

	now := s.now()

	// 安排先以 suggested 状态组装，通过门禁检查并持久化后提升为待确认
	assignment := &domain.BackfillAssignment{
		AbsenceID:          absence.ID,
		AbsentEmployeeName: absence.EmployeeName,
		AbsentEmployeeRole: absence.EmployeeRole,
		EmployeeID:         candidate.ID,
		EmployeeName:       candidate.FullName,
		EmployeeRole:       candidate.Role,
		Window:             absence.Window,
		EstimatedHours:     estimatedHours,
		Status:             domain.StatusSuggested,
		AssignerID:         assignerID,
	}

	// 津贴类别在创建时判定一次，之后冻结在安排上
	existing, err := s.store.ListAssignmentsByEmployee(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	weekHours := ActiveHoursInWeek(existing, WeekStart(absence.Window.Start))
	assignment.PremiumType = s.classifier.Classify(absence, absence.Window, estimatedHours, now, weekHours)

	assignment.Status = domain.StatusPendingConfirmation

	capHours := s.tracker.effectiveCap(candidate)
	if err := s.store.CreateAssignment(ctx, assignment, capHours, overrideCapacity); err != nil {
		return nil, err
	}

	return assignment, nil
}

// Confirm 由被安排的员工确认替班。
// 可能返回 *ConcurrencyError、*InvalidTransitionError
func (s *Service) Confirm(ctx context.Context, assignmentID int64, expectedVersion int32, operatorID int64) (*domain.BackfillAssignment, error) {
	return s.transition(ctx, assignmentID, expectedVersion, "confirm", domain.StatusConfirmed, func(a *domain.BackfillAssignment) error {
		a.ConfirmerID = &operatorID
		return nil
	})
}

// Reject 由被安排的员工拒绝替班，必须给出原因。
// 拒绝后不会自动生成替补安排，需要协调员重新推荐
func (s *Service) Reject(ctx context.Context, assignmentID int64, expectedVersion int32, reason string, operatorID int64) (*domain.BackfillAssignment, error) {
	if reason == "" {
		return nil, &ValidationError{Message: "拒绝替班必须填写原因"}
	}

	return s.transition(ctx, assignmentID, expectedVersion, "reject", domain.StatusRejected, func(a *domain.BackfillAssignment) error {
		a.RejectionReason = &reason
		a.ConfirmerID = &operatorID
		return nil
	})
}

// Cancel 由协调员取消安排，待确认和已确认的安排都可以取消
func (s *Service) Cancel(ctx context.Context, assignmentID int64, expectedVersion int32) (*domain.BackfillAssignment, error) {
	return s.transition(ctx, assignmentID, expectedVersion, "cancel", domain.StatusCancelled, nil)
}

// Complete 在缺勤期结束后把安排置为完成，实际小时数由薪酬系统上报，可以为空
func (s *Service) Complete(ctx context.Context, assignmentID int64, expectedVersion int32, actualHours *int32) (*domain.BackfillAssignment, error) {
	if actualHours != nil && *actualHours <= 0 {
		return nil, &ValidationError{Message: "实际替班小时数必须为正数"}
	}

	return s.transition(ctx, assignmentID, expectedVersion, "complete", domain.StatusCompleted, func(a *domain.BackfillAssignment) error {
		a.ActualHours = actualHours
		return nil
	})
}

// transition 统一处理状态迁移：
// 先校验调用方的期望版本，再校验状态机是否允许，最后用版本号做条件更新。
// 任何一步失败都不会改变安排的状态
func (s *Service) transition(ctx context.Context, assignmentID int64, expectedVersion int32, action string, target domain.AssignmentStatus, mutate func(*domain.BackfillAssignment) error) (*domain.BackfillAssignment, error) {
	assignment, err := s.store.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if assignment.Version != expectedVersion {
		return nil, &ConcurrencyError{
			AssignmentID:    assignmentID,
			ExpectedVersion: expectedVersion,
		}
	}

	if !assignment.Status.CanTransitionTo(target) {
		return nil, &InvalidTransitionError{
			From:   assignment.Status,
			Action: action,
		}
	}

	assignment.Status = target
	if mutate != nil {
		if err := mutate(assignment); err != nil {
			return nil, err
		}
	}

	// 条件更新失败说明版本检查和这里之间有并发修改，按并发错误返回
	if err := s.store.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	return assignment, nil
}

// CoverageSummary 返回缺勤记录的覆盖汇总，只读且幂等
func (s *Service) CoverageSummary(ctx context.Context, absence *domain.AbsenceReference) (*domain.CoverageSummary, error) {
	return s.aggregator.Summarize(ctx, absence)
}

// EmployeeWorkload 返回员工某月的工作量视图，只读且幂等
func (s *Service) EmployeeWorkload(ctx context.Context, employeeID int64, month time.Time) (*domain.WorkloadWindow, error) {
	return s.tracker.GetWorkload(ctx, employeeID, month)
}
