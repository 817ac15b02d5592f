package utils

import (
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var jobRoles = []string{"前台", "客服", "运维", "网管"}

func GenerateRandomJobRole() string {
	return jobRoles[rand.Intn(len(jobRoles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomEmployee(emailDomainName string) *domain.Employee {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)

	return &domain.Employee{
		Username:            username,
		FullName:            fullName,
		Email:               username + "@" + emailDomainName,
		Role:                GenerateRandomJobRole(),
		SkillLevel:          int32(rand.Intn(5) + 1),
		RecentBackfillHours: int32(rand.Intn(40)),
		IsActive:            true,
	}
}

var absenceKinds = []domain.AbsenceKind{
	domain.AbsencePTO,
	domain.AbsenceTraining,
	domain.AbsenceOther,
}

// GenerateRandomAbsence 以今天为基准随机生成前后一个月内的缺勤，
// 让候选人排序和容量检查在种子数据上就能观察到效果
func GenerateRandomAbsence(employee *domain.Employee) *domain.AbsenceReference {
	startOffset := rand.Intn(60) - 30
	length := rand.Intn(5)

	today := time.Now().UTC()
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, startOffset)
	end := start.AddDate(0, 0, length)

	return &domain.AbsenceReference{
		Kind:               absenceKinds[rand.Intn(len(absenceKinds))],
		EmployeeID:         employee.ID,
		EmployeeName:       employee.FullName,
		EmployeeRole:       employee.Role,
		Window:             domain.DateWindow{Start: start, End: end},
		RequiredHours:      int32((length + 1) * 8),
		RequiredSkillLevel: int32(rand.Intn(3) + 1),
		AllowCrossRole:     rand.Intn(2) == 0,
	}
}
