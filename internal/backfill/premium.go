package backfill

import (
	"time"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

// PremiumClassifier 在创建安排时判定一次津贴类别，结果随安排冻结。
// 规则按优先级从高到低依次匹配，命中即返回
type PremiumClassifier struct {
	params *Params
}

func NewPremiumClassifier(params *Params) *PremiumClassifier {
	return &PremiumClassifier{params: params}
}

// Classify 是纯函数，没有任何副作用。
// weekHours 是该员工在安排窗口起始周已有的待确认和已确认小时数，由调用方统计
func (c *PremiumClassifier) Classify(absence *domain.AbsenceReference, window domain.DateWindow, estimatedHours int32, createdAt time.Time, weekHours int32) domain.PremiumType {
	// 临期安排优先级最高，即使缺勤是培训类型也按紧急处理
	if window.Start.Sub(createdAt) < c.params.EmergencyLeadTime {
		return domain.PremiumEmergency
	}

	if absence.Kind == domain.AbsenceTraining {
		return domain.PremiumTrainingCoverage
	}

	if c.windowTouchesHoliday(window) {
		return domain.PremiumHoliday
	}

	if c.params.WeeklyOvertimeHours > 0 && weekHours+estimatedHours > c.params.WeeklyOvertimeHours {
		return domain.PremiumOvertime
	}

	return domain.PremiumNone
}

func (c *PremiumClassifier) windowTouchesHoliday(window domain.DateWindow) bool {
	for d := window.Start; !d.After(window.End); d = d.AddDate(0, 0, 1) {
		if c.params.Holidays[d.Format("2006-01-02")] {
			return true
		}
	}
	return false
}
