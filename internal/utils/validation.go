package utils

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

// ParseDateWindow 解析并校验一个按天计算的闭区间，
// 起止日期相同表示单日缺勤
func ParseDateWindow(start string, end string) (domain.DateWindow, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return domain.DateWindow{}, fmt.Errorf("开始日期格式错误，应为 YYYY-MM-DD")
	}

	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return domain.DateWindow{}, fmt.Errorf("结束日期格式错误，应为 YYYY-MM-DD")
	}

	if endDate.Before(startDate) {
		return domain.DateWindow{}, fmt.Errorf("结束日期不能早于开始日期")
	}

	return domain.DateWindow{Start: startDate, End: endDate}, nil
}
