package backfill

import (
	"context"
	"slices"
	"sort"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

// 筛选原因按检查顺序报告第一条未通过的
const (
	ReasonConflict     = "该时间段已有其他替班安排"
	ReasonOverCapacity = "将超出月度替班小时数上限"
	ReasonRoleMismatch = "岗位不匹配"
)

// CandidateRanker 给缺勤记录生成候选替班人列表。
// 相同输入下输出顺序是确定的（分数相同时按员工 ID 升序），
// 这样重复点"重新推荐"不会得到不同的顺序
type CandidateRanker struct {
	detector  *ConflictDetector
	tracker   *WorkloadTracker
	directory EmployeeDirectory
	params    *Params
}

func NewCandidateRanker(detector *ConflictDetector, tracker *WorkloadTracker, directory EmployeeDirectory, params *Params) *CandidateRanker {
	return &CandidateRanker{
		detector:  detector,
		tracker:   tracker,
		directory: directory,
		params:    params,
	}
}

// roleScore 返回岗位匹配子分数，第二个返回值表示岗位是否可用
func (r *CandidateRanker) roleScore(absence *domain.AbsenceReference, candidate *domain.Employee) (float64, bool) {
	if candidate.Role == absence.EmployeeRole {
		return 1.0, true
	}
	if absence.AllowCrossRole && slices.Contains(r.params.CompatibleRoles[absence.EmployeeRole], candidate.Role) {
		return 0.6, true
	}
	return 0, false
}

// workloadScore 奖励最近替班较少的员工，取值范围 [0,1]
func (r *CandidateRanker) workloadScore(candidate *domain.Employee) float64 {
	if r.params.ReferenceMaxRecentHours <= 0 {
		return 1.0
	}
	score := 1.0 - float64(candidate.RecentBackfillHours)/float64(r.params.ReferenceMaxRecentHours)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func (r *CandidateRanker) skillScore(absence *domain.AbsenceReference, candidate *domain.Employee) float64 {
	if absence.RequiredSkillLevel <= 0 || candidate.SkillLevel >= absence.RequiredSkillLevel {
		return 1.0
	}
	return float64(candidate.SkillLevel) / float64(absence.RequiredSkillLevel)
}

// Rank 返回按适合度降序排列的候选人列表。
// 硬性筛选按 冲突、容量、岗位 的顺序执行，未通过的候选人不会被丢弃，
// 而是带着原因放在列表末尾。容量预检用缺勤要求的总小时数做保守估计
func (r *CandidateRanker) Rank(ctx context.Context, absence *domain.AbsenceReference) ([]domain.CandidateScore, error) {
	employees, err := r.directory.ListActiveEmployees(ctx)
	if err != nil {
		return nil, err
	}

	scores := make([]domain.CandidateScore, 0, len(employees))

	for _, candidate := range employees {
		if candidate.ID == absence.EmployeeID {
			// 被替班者自己不能作为候选人
			continue
		}

		score := domain.CandidateScore{
			EmployeeID: candidate.ID,
			FullName:   candidate.FullName,
		}

		if reason, err := r.checkEligibility(ctx, absence, candidate); err != nil {
			return nil, err
		} else if reason != "" {
			score.IneligibilityReason = reason
			scores = append(scores, score)
			continue
		}

		roleScore, _ := r.roleScore(absence, candidate)
		score.IsEligible = true
		score.Score = r.params.RoleWeight*roleScore +
			r.params.WorkloadWeight*r.workloadScore(candidate) +
			r.params.SkillWeight*r.skillScore(absence, candidate)

		scores = append(scores, score)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].IsEligible != scores[j].IsEligible {
			return scores[i].IsEligible
		}
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].EmployeeID < scores[j].EmployeeID
	})

	return scores, nil
}

// checkEligibility 返回第一条未通过的筛选原因，全部通过时返回空串
func (r *CandidateRanker) checkEligibility(ctx context.Context, absence *domain.AbsenceReference, candidate *domain.Employee) (string, error) {
	if _, conflict, err := r.detector.HasConflict(ctx, candidate.ID, absence.Window, 0); err != nil {
		return "", err
	} else if conflict {
		return ReasonConflict, nil
	}

	for _, month := range absence.Window.MonthsTouched() {
		exceeded, _, _, err := r.tracker.WouldExceedCap(ctx, candidate.ID, month, absence.RequiredHours)
		if err != nil {
			return "", err
		}
		if exceeded {
			return ReasonOverCapacity, nil
		}
	}

	if _, ok := r.roleScore(absence, candidate); !ok {
		return ReasonRoleMismatch, nil
	}

	return "", nil
}
