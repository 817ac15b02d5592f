package domain

import "time"

type AbsenceKind string

const (
	AbsencePTO      AbsenceKind = "pto"
	AbsenceTraining AbsenceKind = "training"
	AbsenceOther    AbsenceKind = "other"
)

// DateWindow 表示一个按天计算的闭区间，Start 和 End 都是当天零点
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps 判断两个闭区间是否重叠，起止日期相同的单日区间也算重叠
func (w DateWindow) Overlaps(o DateWindow) bool {
	return !w.Start.After(o.End) && !o.Start.After(w.End)
}

// IntersectsMonth 判断区间是否覆盖了指定月份的任意一天
func (w DateWindow) IntersectsMonth(month time.Time) bool {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return w.Overlaps(DateWindow{Start: first, End: last})
}

// MonthsTouched 返回区间覆盖到的所有月份（每月第一天）
func (w DateWindow) MonthsTouched() []time.Time {
	months := []time.Time{}
	cur := time.Date(w.Start.Year(), w.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(w.End.Year(), w.End.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(end) {
		months = append(months, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// AbsenceReference 是缺勤管理系统创建的缺勤记录，对替班核心只读
type AbsenceReference struct {
	ID                 int64       `json:"id"`
	Kind               AbsenceKind `json:"kind"`
	EmployeeID         int64       `json:"employeeID"`
	EmployeeName       string      `json:"employeeName"`
	EmployeeRole       string      `json:"employeeRole"`
	Window             DateWindow  `json:"window"`
	RequiredHours      int32       `json:"requiredHours"`
	RequiredSkillLevel int32       `json:"requiredSkillLevel"`

	// 是否允许相容岗位跨岗替班
	AllowCrossRole bool `json:"allowCrossRole"`

	CreatedAt time.Time `json:"createdAt"`
}
