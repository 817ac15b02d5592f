package backfill

import (
	"context"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

// CoverageAggregator 把一条缺勤记录下的所有安排汇总成覆盖视图。
// 每次调用都从当前安排集合重新计算，缓存和失效由调用方负责
type CoverageAggregator struct {
	store AssignmentStore
	rates PayrollRates
}

func NewCoverageAggregator(store AssignmentStore, rates PayrollRates) *CoverageAggregator {
	return &CoverageAggregator{
		store: store,
		rates: rates,
	}
}

// Summarize 汇总一条缺勤记录的覆盖情况。
// 已确认小时数包含 confirmed 和 completed 两种状态；
// 预估成本覆盖所有可能产生费用的安排（待确认、已确认、已完成）；
// 实际成本只统计已完成且上报了实际小时数的安排
func (g *CoverageAggregator) Summarize(ctx context.Context, absence *domain.AbsenceReference) (*domain.CoverageSummary, error) {
	assignments, err := g.store.ListAssignmentsByAbsence(ctx, absence.ID)
	if err != nil {
		return nil, err
	}

	summary := &domain.CoverageSummary{
		AbsenceID:     absence.ID,
		RequiredHours: absence.RequiredHours,
	}

	for _, a := range assignments {
		rate := g.rates.HourlyRate(a.EmployeeRole) * g.rates.PremiumMultiplier(a.PremiumType)

		switch a.Status {
		case domain.StatusConfirmed, domain.StatusCompleted:
			summary.ConfirmedHours += a.EstimatedHours
			summary.EstimatedCost += float64(a.EstimatedHours) * rate
		case domain.StatusPendingConfirmation:
			summary.PendingHours += a.EstimatedHours
			summary.EstimatedCost += float64(a.EstimatedHours) * rate
		case domain.StatusRejected:
			summary.RejectedCount++
		}

		if a.Status == domain.StatusCompleted && a.ActualHours != nil {
			summary.ActualCost += float64(*a.ActualHours) * rate
		}
	}

	summary.IsFullyCovered = summary.ConfirmedHours >= absence.RequiredHours

	return summary, nil
}
