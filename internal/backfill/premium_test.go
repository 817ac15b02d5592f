package backfill

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

func TestClassifyPremium(t *testing.T) {
	t.Parallel()

	classifier := NewPremiumClassifier(testParams())
	createdAt := date(2025, 12, 1)

	pto := &domain.AbsenceReference{Kind: domain.AbsencePTO}
	training := &domain.AbsenceReference{Kind: domain.AbsenceTraining}

	tests := []struct {
		name      string
		absence   *domain.AbsenceReference
		window    domain.DateWindow
		estimated int32
		weekHours int32
		want      domain.PremiumType
	}{
		{
			// 提前量充足且没有命中任何规则
			name:      "none",
			absence:   pto,
			window:    window(date(2025, 12, 15), date(2025, 12, 20)),
			estimated: 20,
			want:      domain.PremiumNone,
		},
		{
			// 距离窗口开始不足 48 小时
			name:      "emergency",
			absence:   pto,
			window:    window(date(2025, 12, 2), date(2025, 12, 4)),
			estimated: 20,
			want:      domain.PremiumEmergency,
		},
		{
			name:      "training coverage",
			absence:   training,
			window:    window(date(2025, 12, 15), date(2025, 12, 20)),
			estimated: 20,
			want:      domain.PremiumTrainingCoverage,
		},
		{
			// 紧急优先于培训
			name:      "emergency beats training",
			absence:   training,
			window:    window(date(2025, 12, 2), date(2025, 12, 4)),
			estimated: 20,
			want:      domain.PremiumEmergency,
		},
		{
			// 窗口覆盖节假日（2025-12-25）
			name:      "holiday",
			absence:   pto,
			window:    window(date(2025, 12, 24), date(2025, 12, 26)),
			estimated: 20,
			want:      domain.PremiumHoliday,
		},
		{
			// 培训优先于节假日
			name:      "training beats holiday",
			absence:   training,
			window:    window(date(2025, 12, 24), date(2025, 12, 26)),
			estimated: 20,
			want:      domain.PremiumTrainingCoverage,
		},
		{
			// 周内已有小时数加上本次超过 40
			name:      "overtime",
			absence:   pto,
			window:    window(date(2025, 12, 15), date(2025, 12, 20)),
			estimated: 20,
			weekHours: 30,
			want:      domain.PremiumOvertime,
		},
		{
			// 节假日优先于加班
			name:      "holiday beats overtime",
			absence:   pto,
			window:    window(date(2025, 12, 24), date(2025, 12, 26)),
			estimated: 20,
			weekHours: 30,
			want:      domain.PremiumHoliday,
		},
		{
			// 刚好到 40 不算加班
			name:      "exactly at weekly limit",
			absence:   pto,
			window:    window(date(2025, 12, 15), date(2025, 12, 20)),
			estimated: 20,
			weekHours: 20,
			want:      domain.PremiumNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.absence, tt.window, tt.estimated, createdAt, tt.weekHours)
			require.Equal(t, tt.want, got)
		})
	}
}
