package seed

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/repository"
)

// ImportDirectory 从员工目录系统导出的 CSV 导入员工投影，
// 已存在的员工（按用户名）会更新最近替班小时数和月上限，不存在的会新建
func ImportDirectory(ctx context.Context, r *repository.Repository, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		slog.Error("读取表头失败", "error", err)
		return
	}

	required := []string{"用户名", "姓名", "邮箱", "岗位", "技能等级", "最近替班小时数", "月上限"}
	headerIndex := make(map[string]int)
	for i, header := range headers {
		headerIndex[header] = i
	}
	for _, header := range required {
		if _, ok := headerIndex[header]; !ok {
			slog.Error("缺少必需的列", "header", header)
			return
		}
	}

	created, updated := 0, 0
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("读取文件失败", "error", err)
			return
		}

		username := row[headerIndex["用户名"]]
		if username == "" {
			slog.Error("用户名为空", "row", row)
			continue
		}

		skillLevel, err := strconv.Atoi(row[headerIndex["技能等级"]])
		if err != nil {
			slog.Error("技能等级格式错误", "username", username, "value", row[headerIndex["技能等级"]])
			continue
		}
		recentHours, err := strconv.Atoi(row[headerIndex["最近替班小时数"]])
		if err != nil {
			slog.Error("最近替班小时数格式错误", "username", username, "value", row[headerIndex["最近替班小时数"]])
			continue
		}
		capHours, err := strconv.Atoi(row[headerIndex["月上限"]])
		if err != nil {
			slog.Error("月上限格式错误", "username", username, "value", row[headerIndex["月上限"]])
			continue
		}

		employee, err := r.GetEmployeeByUsername(ctx, username)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				employee = &domain.Employee{
					Username:            username,
					FullName:            row[headerIndex["姓名"]],
					Email:               row[headerIndex["邮箱"]],
					Role:                row[headerIndex["岗位"]],
					SkillLevel:          int32(skillLevel),
					RecentBackfillHours: int32(recentHours),
					MonthlyCapHours:     int32(capHours),
				}

				if err := r.CreateEmployee(ctx, employee); err != nil {
					slog.Error("插入员工失败", "username", username, "error", err)
					continue
				}
				created++
			default:
				slog.Error("获取员工失败", "username", username, "error", err)
			}
			continue
		}

		employee.FullName = row[headerIndex["姓名"]]
		employee.Email = row[headerIndex["邮箱"]]
		employee.Role = row[headerIndex["岗位"]]
		employee.SkillLevel = int32(skillLevel)
		employee.RecentBackfillHours = int32(recentHours)
		employee.MonthlyCapHours = int32(capHours)

		if err := r.UpdateEmployee(ctx, employee); err != nil {
			slog.Error("更新员工失败", "username", username, "error", err)
			continue
		}
		updated++
	}

	slog.Info("导入员工目录完成", "created", created, "updated", updated)
}
